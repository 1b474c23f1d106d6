package postgres

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func TestWrapError(t *testing.T) {
	t.Run("NilPassesThrough", func(t *testing.T) {
		assert.NoError(t, wrapError("op", nil))
	})

	t.Run("NoRowsBecomesNotFound", func(t *testing.T) {
		err := wrapError("get post", pgx.ErrNoRows)
		assert.ErrorIs(t, err, pressroom.ErrNotFound)
	})

	t.Run("UniqueViolationBecomesValidation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"}
		err := wrapError("create post", pgErr)

		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "slug", ve.Field)
		assert.Equal(t, "already exists", ve.Reason)
	})

	t.Run("EmailConstraintMapsToEmailField", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		err := wrapError("create user", pgErr)

		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email", ve.Field)
	})

	t.Run("ForeignKeyViolationBecomesValidation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "comments_post_id_fkey"}
		err := wrapError("create comment", pgErr)

		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "post_id", ve.Field)
		assert.Equal(t, "referenced record not found", ve.Reason)
	})

	t.Run("NotNullViolationNamesColumn", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23502", ColumnName: "title"}
		err := wrapError("create post", pgErr)

		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "title", ve.Field)
	})

	t.Run("DeadlineBecomesStoreUnavailable", func(t *testing.T) {
		err := wrapError("list posts", context.DeadlineExceeded)
		assert.ErrorIs(t, err, pressroom.ErrStoreUnavailable)
	})

	t.Run("NetErrorBecomesStoreUnavailable", func(t *testing.T) {
		netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		err := wrapError("get post", netErr)
		assert.ErrorIs(t, err, pressroom.ErrStoreUnavailable)
	})

	t.Run("ClosedPoolBecomesStoreUnavailable", func(t *testing.T) {
		err := wrapError("get post", errors.New("closed pool"))
		assert.ErrorIs(t, err, pressroom.ErrStoreUnavailable)
	})

	t.Run("OtherPgErrorStaysOpaque", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42703", Message: "column does not exist"}
		err := wrapError("list posts", pgErr)
		assert.NotErrorIs(t, err, pressroom.ErrStoreUnavailable)
		assert.False(t, pressroom.IsValidation(err))
		assert.Contains(t, err.Error(), "list posts")
	})
}

func TestSortColumn(t *testing.T) {
	assert.Equal(t, `title COLLATE "C"`, sortColumn("title", postSortColumns))
	assert.Equal(t, "view_count", sortColumn("view_count", postSortColumns))
	assert.Equal(t, "created_at", sortColumn("", postSortColumns))
	assert.Equal(t, "created_at", sortColumn("password_hash; DROP TABLE posts", postSortColumns))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "ASC", direction(pressroom.SortAsc))
	assert.Equal(t, "DESC", direction(pressroom.SortDesc))
	assert.Equal(t, "DESC", direction(pressroom.SortOrder("weird")))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%gold%", likePattern("  GoLd "))
	assert.Equal(t, `%100\%\_done%`, likePattern("100%_done"))
	assert.Equal(t, `%back\\slash%`, likePattern(`back\slash`))
	assert.Equal(t, "%%", likePattern(""))
}

func TestFieldFromConstraint(t *testing.T) {
	assert.Equal(t, "slug", fieldFromConstraint("categories_slug_key"))
	assert.Equal(t, "name", fieldFromConstraint("categories_name_key"))
	assert.Equal(t, "asset_id", fieldFromConstraint("reviews_asset_idx"))
	assert.Equal(t, "mystery_constraint", fieldFromConstraint("mystery_constraint"))
}

var _ pressroom.Prober = (*Prober)(nil)
