package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

const categoryColumns = `id, name, slug, parent_id, created_at, updated_at`

func (s *Store) CreateCategory(ctx context.Context, category *pressroom.Category) error {
	if err := pressroom.ValidateNewCategory(category); err != nil {
		return err
	}

	now := time.Now()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `
		INSERT INTO categories (id, name, slug, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, query,
		category.ID, category.Name, category.Slug, category.ParentID,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return wrapError("create category", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*pressroom.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(s.db.QueryRow(ctx, query, id), "get category")
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*pressroom.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	return scanCategory(s.db.QueryRow(ctx, query, slug), "get category by slug")
}

func (s *Store) UpdateCategory(ctx context.Context, id uuid.UUID, upd pressroom.CategoryUpdate) (*pressroom.Category, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, wrapError("update category", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 FOR UPDATE`
	category, err := scanCategory(tx.QueryRow(ctx, query, id), "update category")
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, &pressroom.ValidationError{Field: "name", Reason: "required"}
	}
	if upd.Slug != nil && *upd.Slug != category.Slug && !pressroom.ValidSlug(*upd.Slug) {
		return nil, &pressroom.ValidationError{Field: "slug", Reason: "must be a URL-safe slug"}
	}
	if upd.ParentID != nil && *upd.ParentID != uuid.Nil {
		cyclic, err := s.parentChainContains(ctx, tx, *upd.ParentID, id)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, &pressroom.ValidationError{Field: "parent_id", Reason: "would create a cycle"}
		}
	}

	if upd.Name != nil {
		category.Name = *upd.Name
	}
	if upd.Slug != nil {
		category.Slug = *upd.Slug
	}
	if upd.ParentID != nil {
		if *upd.ParentID == uuid.Nil {
			category.ParentID = nil
		} else {
			pid := *upd.ParentID
			category.ParentID = &pid
		}
	}
	category.UpdatedAt = time.Now()

	update := `UPDATE categories SET name = $2, slug = $3, parent_id = $4, updated_at = $5 WHERE id = $1`
	if _, err := tx.Exec(ctx, update,
		category.ID, category.Name, category.Slug, category.ParentID, category.UpdatedAt); err != nil {
		return nil, wrapError("update category", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError("update category", err)
	}
	return category, nil
}

// parentChainContains walks the parent chain upward from start using a
// recursive CTE and reports whether target appears in it.
func (s *Store) parentChainContains(ctx context.Context, tx pgx.Tx, start, target uuid.UUID) (bool, error) {
	query := `
		WITH RECURSIVE chain AS (
			SELECT id, parent_id FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, c.parent_id FROM categories c
			JOIN chain ON c.id = chain.parent_id
		)
		SELECT EXISTS(SELECT 1 FROM chain WHERE id = $2)`

	var found bool
	if err := tx.QueryRow(ctx, query, start, target).Scan(&found); err != nil {
		return false, wrapError("check category cycle", err)
	}
	return found, nil
}

// DeleteCategory rejects deletion while posts or child categories
// still reference the category; callers must reassign them first.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, wrapError("delete category", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, wrapError("delete category", err)
	}
	if !exists {
		return false, nil
	}

	var attached bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE category_id = $1 AND deleted_at IS NULL)`,
		id).Scan(&attached); err != nil {
		return false, wrapError("delete category", err)
	}
	if attached {
		return false, &pressroom.ValidationError{Field: "id", Reason: "category has attached posts"}
	}

	var hasChildren bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = $1)`,
		id).Scan(&hasChildren); err != nil {
		return false, wrapError("delete category", err)
	}
	if hasChildren {
		return false, &pressroom.ValidationError{Field: "id", Reason: "category has child categories"}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return false, wrapError("delete category", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, wrapError("delete category", err)
	}
	return true, nil
}

func (s *Store) ListCategories(ctx context.Context, page pressroom.PageRequest) (*pressroom.Page[pressroom.Category], error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, wrapError("list categories", err)
	}

	col := "created_at"
	if page.SortBy == "name" {
		col = `name COLLATE "C"`
	}
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY %s %s, id ASC LIMIT %d OFFSET %d`,
		categoryColumns, col, direction(page.SortOrder), page.Limit, page.Offset())

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, wrapError("list categories", err)
	}
	defer rows.Close()

	var categories []pressroom.Category
	for rows.Next() {
		var c pressroom.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrapError("list categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list categories", err)
	}
	return pressroom.NewPage(categories, total, page), nil
}

func scanCategory(row pgx.Row, op string) (*pressroom.Category, error) {
	var c pressroom.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return &c, nil
}
