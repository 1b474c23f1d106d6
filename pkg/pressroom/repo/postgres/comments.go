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

const commentColumns = `id, post_id, user_id, author_name, author_email, body, status, created_at, updated_at`

func (s *Store) CreateComment(ctx context.Context, comment *pressroom.Comment) error {
	if err := pressroom.ValidateNewComment(comment); err != nil {
		return err
	}

	now := time.Now()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.Status == "" {
		comment.Status = pressroom.CommentStatusPending
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO comments (id, post_id, user_id, author_name, author_email, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.UserID, comment.AuthorName,
		comment.AuthorEmail, comment.Body, comment.Status,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return wrapError("create comment", err)
	}
	return nil
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*pressroom.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	return scanComment(s.db.QueryRow(ctx, query, id), "get comment")
}

func (s *Store) UpdateCommentStatus(ctx context.Context, id uuid.UUID, status pressroom.CommentStatus) (*pressroom.Comment, error) {
	if !status.Valid() {
		return nil, &pressroom.ValidationError{Field: "status", Reason: "unknown status"}
	}

	query := `
		UPDATE comments SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + commentColumns

	return scanComment(s.db.QueryRow(ctx, query, id, status, time.Now()), "update comment status")
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, wrapError("delete comment", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListComments(ctx context.Context, filter pressroom.CommentFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Comment], error) {
	page = page.Normalize()

	where := "TRUE"
	var args []any
	if filter.PostID != nil {
		args = append(args, *filter.PostID)
		where += " AND post_id = $" + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, wrapError("list comments", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM comments WHERE %s ORDER BY created_at %s, id ASC LIMIT %d OFFSET %d`,
		commentColumns, where, direction(page.SortOrder), page.Limit, page.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError("list comments", err)
	}
	defer rows.Close()

	var comments []pressroom.Comment
	for rows.Next() {
		var c pressroom.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.AuthorEmail,
			&c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrapError("list comments", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list comments", err)
	}
	return pressroom.NewPage(comments, total, page), nil
}

func scanComment(row pgx.Row, op string) (*pressroom.Comment, error) {
	var c pressroom.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.AuthorEmail,
		&c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return &c, nil
}
