package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

const postColumns = `id, title, slug, body, status, category_id, author_id, tags, view_count, created_at, updated_at`

var postSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      `title COLLATE "C"`,
	"view_count": "view_count",
}

func (s *Store) CreatePost(ctx context.Context, post *pressroom.Post) error {
	if err := pressroom.ValidateNewPost(post); err != nil {
		return err
	}

	now := time.Now()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Status == "" {
		post.Status = pressroom.PostStatusDraft
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	post.ViewCount = 0

	query := `
		INSERT INTO posts (id, title, slug, body, status, category_id, author_id, tags, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.Body, post.Status,
		post.CategoryID, post.AuthorID, post.Tags, post.ViewCount,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return wrapError("create post", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (*pressroom.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL`
	return scanPost(s.db.QueryRow(ctx, query, id), "get post")
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*pressroom.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1 AND deleted_at IS NULL`
	return scanPost(s.db.QueryRow(ctx, query, slug), "get post by slug")
}

func (s *Store) UpdatePost(ctx context.Context, id uuid.UUID, upd pressroom.PostUpdate) (*pressroom.Post, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, wrapError("update post", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	post, err := scanPost(tx.QueryRow(ctx, query, id), "update post")
	if err != nil {
		return nil, err
	}

	if upd.Slug != nil && *upd.Slug != post.Slug && !pressroom.ValidSlug(*upd.Slug) {
		return nil, &pressroom.ValidationError{Field: "slug", Reason: "must be a URL-safe slug"}
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, &pressroom.ValidationError{Field: "status", Reason: "unknown status"}
		}
		if !post.Status.CanTransition(*upd.Status) {
			return nil, &pressroom.ValidationError{
				Field:  "status",
				Reason: string(post.Status) + " cannot transition to " + string(*upd.Status),
			}
		}
	}

	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Slug != nil {
		post.Slug = *upd.Slug
	}
	if upd.Body != nil {
		post.Body = *upd.Body
	}
	if upd.Status != nil {
		post.Status = *upd.Status
	}
	if upd.CategoryID != nil {
		if *upd.CategoryID == uuid.Nil {
			post.CategoryID = nil
		} else {
			cid := *upd.CategoryID
			post.CategoryID = &cid
		}
	}
	if upd.Tags != nil {
		post.Tags = *upd.Tags
	}
	post.UpdatedAt = time.Now()

	update := `
		UPDATE posts SET title = $2, slug = $3, body = $4, status = $5,
			category_id = $6, tags = $7, updated_at = $8
		WHERE id = $1`
	if _, err := tx.Exec(ctx, update,
		post.ID, post.Title, post.Slug, post.Body, post.Status,
		post.CategoryID, post.Tags, post.UpdatedAt); err != nil {
		return nil, wrapError("update post", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError("update post", err)
	}
	return post, nil
}

func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE posts SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, wrapError("delete post", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListPosts(ctx context.Context, filter pressroom.PostFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Post], error) {
	page = page.Normalize()

	where := "deleted_at IS NULL"
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where += " AND category_id = $" + strconv.Itoa(len(args))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		where += " AND author_id = $" + strconv.Itoa(len(args))
	}
	if filter.Tag != nil {
		args = append(args, *filter.Tag)
		where += " AND $" + strconv.Itoa(len(args)) + " = ANY(tags)"
	}

	return s.pagePosts(ctx, where, args, page, "list posts")
}

func (s *Store) SearchPosts(ctx context.Context, query string, filter pressroom.PostFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Post], error) {
	page = page.Normalize()

	where := `deleted_at IS NULL AND (LOWER(title) LIKE $1 OR LOWER(body) LIKE $1)`
	args := []any{likePattern(query)}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where += " AND category_id = $" + strconv.Itoa(len(args))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		where += " AND author_id = $" + strconv.Itoa(len(args))
	}
	if filter.Tag != nil {
		args = append(args, *filter.Tag)
		where += " AND $" + strconv.Itoa(len(args)) + " = ANY(tags)"
	}

	return s.pagePosts(ctx, where, args, page, "search posts")
}

func (s *Store) pagePosts(ctx context.Context, where string, args []any, page pressroom.PageRequest, op string) (*pressroom.Page[pressroom.Post], error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, wrapError(op, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d`,
		postColumns, where,
		sortColumn(page.SortBy, postSortColumns), direction(page.SortOrder),
		page.Limit, page.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(op, err)
	}
	defer rows.Close()

	var posts []pressroom.Post
	for rows.Next() {
		var p pressroom.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Status, &p.CategoryID,
			&p.AuthorID, &p.Tags, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrapError(op, err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(op, err)
	}
	return pressroom.NewPage(posts, total, page), nil
}

// IncrementPostViews relies on the database's atomic increment; no
// read-modify-write on the client.
func (s *Store) IncrementPostViews(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE posts SET view_count = view_count + 1 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return wrapError("increment post views", err)
	}
	if tag.RowsAffected() == 0 {
		return pressroom.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row, op string) (*pressroom.Post, error) {
	var p pressroom.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Status, &p.CategoryID,
		&p.AuthorID, &p.Tags, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return &p, nil
}
