package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// SetSeoMeta upserts the one-to-one SEO override row for a post,
// keeping the original created_at on conflict.
func (s *Store) SetSeoMeta(ctx context.Context, meta *pressroom.SeoMeta) error {
	if meta.PostID == uuid.Nil {
		return &pressroom.ValidationError{Field: "post_id", Reason: "required"}
	}

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`,
		meta.PostID).Scan(&exists)
	if err != nil {
		return wrapError("set seo meta", err)
	}
	if !exists {
		return pressroom.ErrNotFound
	}

	now := time.Now()
	query := `
		INSERT INTO seo_meta (post_id, meta_title, meta_description, meta_keywords, canonical_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (post_id) DO UPDATE SET
			meta_title = EXCLUDED.meta_title,
			meta_description = EXCLUDED.meta_description,
			meta_keywords = EXCLUDED.meta_keywords,
			canonical_url = EXCLUDED.canonical_url,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at`

	err = s.db.QueryRow(ctx, query,
		meta.PostID, meta.MetaTitle, meta.MetaDescription,
		meta.MetaKeywords, meta.CanonicalURL, now).
		Scan(&meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		return wrapError("set seo meta", err)
	}
	return nil
}

func (s *Store) GetSeoMeta(ctx context.Context, postID uuid.UUID) (*pressroom.SeoMeta, error) {
	query := `
		SELECT post_id, meta_title, meta_description, meta_keywords, canonical_url, created_at, updated_at
		FROM seo_meta WHERE post_id = $1`

	var m pressroom.SeoMeta
	err := s.db.QueryRow(ctx, query, postID).Scan(
		&m.PostID, &m.MetaTitle, &m.MetaDescription, &m.MetaKeywords,
		&m.CanonicalURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, wrapError("get seo meta", err)
	}
	return &m, nil
}
