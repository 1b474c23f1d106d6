package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// SetSeoMeta upserts the one-to-one SEO override row for a post.
func (s *Store) SetSeoMeta(ctx context.Context, meta *pressroom.SeoMeta) error {
	if meta.PostID == uuid.Nil {
		return &pressroom.ValidationError{Field: "post_id", Reason: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[meta.PostID]
	if !ok || post.DeletedAt != nil {
		return pressroom.ErrNotFound
	}

	now := time.Now()
	stored := *meta
	if existing, ok := s.seoMeta[meta.PostID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.seoMeta[meta.PostID] = &stored

	meta.CreatedAt = stored.CreatedAt
	meta.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) GetSeoMeta(ctx context.Context, postID uuid.UUID) (*pressroom.SeoMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.seoMeta[postID]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	out := *meta
	return &out, nil
}
