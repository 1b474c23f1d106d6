package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

const assetColumns = `id, title, description, file_key, file_size, platform, download_count, rating_avg, rating_count, created_at, updated_at`

var assetSortColumns = map[string]string{
	"created_at":     "created_at",
	"title":          `title COLLATE "C"`,
	"download_count": "download_count",
	"rating":         "rating_avg",
}

func (s *Store) CreateAsset(ctx context.Context, asset *pressroom.Asset) error {
	if err := pressroom.ValidateNewAsset(asset); err != nil {
		return err
	}

	now := time.Now()
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.CreatedAt = now
	asset.UpdatedAt = now
	asset.DownloadCount = 0
	asset.RatingAvg = 0
	asset.RatingCount = 0

	query := `
		INSERT INTO assets (id, title, description, file_key, file_size, platform, download_count, rating_avg, rating_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.Exec(ctx, query,
		asset.ID, asset.Title, asset.Description, asset.FileKey, asset.FileSize,
		asset.Platform, asset.DownloadCount, asset.RatingAvg, asset.RatingCount,
		asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		return wrapError("create asset", err)
	}
	return nil
}

func (s *Store) GetAsset(ctx context.Context, id uuid.UUID) (*pressroom.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND deleted_at IS NULL`
	return scanAsset(s.db.QueryRow(ctx, query, id), "get asset")
}

func (s *Store) UpdateAsset(ctx context.Context, id uuid.UUID, upd pressroom.AssetUpdate) (*pressroom.Asset, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, wrapError("update asset", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	asset, err := scanAsset(tx.QueryRow(ctx, query, id), "update asset")
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return nil, &pressroom.ValidationError{Field: "title", Reason: "required"}
		}
		asset.Title = *upd.Title
	}
	if upd.FileSize != nil {
		if *upd.FileSize < 0 {
			return nil, &pressroom.ValidationError{Field: "file_size", Reason: "must not be negative"}
		}
		asset.FileSize = *upd.FileSize
	}
	if upd.Description != nil {
		asset.Description = *upd.Description
	}
	if upd.FileKey != nil {
		asset.FileKey = *upd.FileKey
	}
	if upd.Platform != nil {
		asset.Platform = *upd.Platform
	}
	asset.UpdatedAt = time.Now()

	update := `
		UPDATE assets SET title = $2, description = $3, file_key = $4,
			file_size = $5, platform = $6, updated_at = $7
		WHERE id = $1`
	if _, err := tx.Exec(ctx, update,
		asset.ID, asset.Title, asset.Description, asset.FileKey,
		asset.FileSize, asset.Platform, asset.UpdatedAt); err != nil {
		return nil, wrapError("update asset", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError("update asset", err)
	}
	return asset, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE assets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, wrapError("delete asset", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListAssets(ctx context.Context, filter pressroom.AssetFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Asset], error) {
	page = page.Normalize()

	where := "deleted_at IS NULL"
	var args []any
	if filter.Platform != nil {
		args = append(args, *filter.Platform)
		where += " AND platform = $" + strconv.Itoa(len(args))
	}
	return s.pageAssets(ctx, where, args, page, "list assets")
}

func (s *Store) SearchAssets(ctx context.Context, query string, page pressroom.PageRequest) (*pressroom.Page[pressroom.Asset], error) {
	page = page.Normalize()
	where := `deleted_at IS NULL AND (LOWER(title) LIKE $1 OR LOWER(description) LIKE $1)`
	return s.pageAssets(ctx, where, []any{likePattern(query)}, page, "search assets")
}

func (s *Store) pageAssets(ctx context.Context, where string, args []any, page pressroom.PageRequest, op string) (*pressroom.Page[pressroom.Asset], error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM assets WHERE `+where, args...).Scan(&total); err != nil {
		return nil, wrapError(op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM assets WHERE %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d`,
		assetColumns, where,
		sortColumn(page.SortBy, assetSortColumns), direction(page.SortOrder),
		page.Limit, page.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(op, err)
	}
	defer rows.Close()

	var assets []pressroom.Asset
	for rows.Next() {
		var a pressroom.Asset
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.FileKey, &a.FileSize,
			&a.Platform, &a.DownloadCount, &a.RatingAvg, &a.RatingCount,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, wrapError(op, err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(op, err)
	}
	return pressroom.NewPage(assets, total, page), nil
}

// IncrementAssetDownloads relies on the database's atomic increment so
// the counter stays monotonic under concurrent downloads.
func (s *Store) IncrementAssetDownloads(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE assets SET download_count = download_count + 1 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return wrapError("increment asset downloads", err)
	}
	if tag.RowsAffected() == 0 {
		return pressroom.ErrNotFound
	}
	return nil
}

// AddReview inserts the review and recomputes the asset's aggregate
// from the reviews table in the same transaction, so the stored mean
// always reflects every review.
func (s *Store) AddReview(ctx context.Context, review *pressroom.Review) error {
	if err := pressroom.ValidateNewReview(review); err != nil {
		return err
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return wrapError("add review", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM assets WHERE id = $1 AND deleted_at IS NULL)`,
		review.AssetID).Scan(&exists)
	if err != nil {
		return wrapError("add review", err)
	}
	if !exists {
		return pressroom.ErrNotFound
	}

	insert := `
		INSERT INTO reviews (id, asset_id, user_id, score, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, insert,
		review.ID, review.AssetID, review.UserID, review.Score, review.Body, review.CreatedAt); err != nil {
		return wrapError("add review", err)
	}

	aggregate := `
		UPDATE assets SET
			rating_avg = agg.avg_score,
			rating_count = agg.review_count,
			updated_at = $2
		FROM (
			SELECT AVG(score)::float8 AS avg_score, COUNT(*) AS review_count
			FROM reviews WHERE asset_id = $1
		) agg
		WHERE id = $1`
	if _, err := tx.Exec(ctx, aggregate, review.AssetID, review.CreatedAt); err != nil {
		return wrapError("add review", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapError("add review", err)
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context, assetID uuid.UUID, page pressroom.PageRequest) (*pressroom.Page[pressroom.Review], error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE asset_id = $1`, assetID).Scan(&total); err != nil {
		return nil, wrapError("list reviews", err)
	}

	query := fmt.Sprintf(`
		SELECT id, asset_id, user_id, score, body, created_at
		FROM reviews WHERE asset_id = $1
		ORDER BY created_at %s, id ASC LIMIT %d OFFSET %d`,
		direction(page.SortOrder), page.Limit, page.Offset())

	rows, err := s.db.Query(ctx, query, assetID)
	if err != nil {
		return nil, wrapError("list reviews", err)
	}
	defer rows.Close()

	var reviews []pressroom.Review
	for rows.Next() {
		var r pressroom.Review
		if err := rows.Scan(&r.ID, &r.AssetID, &r.UserID, &r.Score, &r.Body, &r.CreatedAt); err != nil {
			return nil, wrapError("list reviews", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list reviews", err)
	}
	return pressroom.NewPage(reviews, total, page), nil
}

func scanAsset(row pgx.Row, op string) (*pressroom.Asset, error) {
	var a pressroom.Asset
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.FileKey, &a.FileSize,
		&a.Platform, &a.DownloadCount, &a.RatingAvg, &a.RatingCount,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return &a, nil
}
