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

const userColumns = `id, email, password_hash, role, newsletter, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *pressroom.User) error {
	if err := pressroom.ValidateNewUser(user); err != nil {
		return err
	}

	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = pressroom.RoleViewer
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	// The unique index covers LOWER(email) across every role, so an
	// admin and a regular user can never share an address.
	query := `
		INSERT INTO users (id, email, password_hash, role, newsletter, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role, user.Newsletter,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return wrapError("create user", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*pressroom.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return scanUser(s.db.QueryRow(ctx, query, id), "get user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*pressroom.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`
	return scanUser(s.db.QueryRow(ctx, query, email), "get user by email")
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, upd pressroom.UserUpdate) (*pressroom.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, wrapError("update user", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	user, err := scanUser(tx.QueryRow(ctx, query, id), "update user")
	if err != nil {
		return nil, err
	}

	if upd.Email != nil && !strings.EqualFold(*upd.Email, user.Email) {
		if !pressroom.ValidEmail(*upd.Email) {
			return nil, &pressroom.ValidationError{Field: "email", Reason: "invalid email format"}
		}
		user.Email = *upd.Email
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, &pressroom.ValidationError{Field: "role", Reason: "unknown role"}
		}
		user.Role = *upd.Role
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	if upd.Newsletter != nil {
		user.Newsletter = *upd.Newsletter
	}
	user.UpdatedAt = time.Now()

	update := `
		UPDATE users SET email = $2, password_hash = $3, role = $4,
			newsletter = $5, updated_at = $6
		WHERE id = $1`
	if _, err := tx.Exec(ctx, update,
		user.ID, user.Email, user.PasswordHash, user.Role,
		user.Newsletter, user.UpdatedAt); err != nil {
		return nil, wrapError("update user", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrapError("update user", err)
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, wrapError("delete user", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListUsers(ctx context.Context, filter pressroom.UserFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.User], error) {
	page = page.Normalize()

	where := "deleted_at IS NULL"
	var args []any
	if filter.Role != nil {
		args = append(args, *filter.Role)
		where += " AND role = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, wrapError("list users", err)
	}

	col := "created_at"
	if page.SortBy == "email" {
		col = `email COLLATE "C"`
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d`,
		userColumns, where, col, direction(page.SortOrder), page.Limit, page.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError("list users", err)
	}
	defer rows.Close()

	var users []pressroom.User
	for rows.Next() {
		var u pressroom.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Newsletter,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, wrapError("list users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list users", err)
	}
	return pressroom.NewPage(users, total, page), nil
}

func scanUser(row pgx.Row, op string) (*pressroom.User, error) {
	var u pressroom.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Newsletter,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return &u, nil
}
