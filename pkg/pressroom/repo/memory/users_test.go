package memory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/pkg/pressroom"
	"github.com/pressroom/pressroom/pkg/pressroom/repo/memory"
)

func TestMemoryStore_UserOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDefaultsToViewer", func(t *testing.T) {
		store := memory.New()
		user := &pressroom.User{Email: "new@example.com", PasswordHash: "hash"}
		require.NoError(t, store.CreateUser(ctx, user))
		assert.Equal(t, pressroom.RoleViewer, user.Role)

		got, err := store.GetUserByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("EmailUniqueAcrossRoles", func(t *testing.T) {
		store := memory.New()
		admin := &pressroom.User{Email: "shared@example.com", PasswordHash: "h", Role: pressroom.RoleAdmin}
		require.NoError(t, store.CreateUser(ctx, admin))

		// Same address, different case, different role: still a
		// collision.
		err := store.CreateUser(ctx, &pressroom.User{Email: "Shared@Example.com", PasswordHash: "h", Role: pressroom.RoleViewer})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email", ve.Field)
	})

	t.Run("EmailLookupIsCaseInsensitive", func(t *testing.T) {
		store := memory.New()
		user := &pressroom.User{Email: "Mixed.Case@Example.com", PasswordHash: "h"}
		require.NoError(t, store.CreateUser(ctx, user))

		got, err := store.GetUserByEmail(ctx, "mixed.case@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("InvalidEmailRejected", func(t *testing.T) {
		store := memory.New()
		err := store.CreateUser(ctx, &pressroom.User{Email: "not-an-email", PasswordHash: "h"})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "email", ve.Field)
	})

	t.Run("UpdateEmailReindexes", func(t *testing.T) {
		store := memory.New()
		user := &pressroom.User{Email: "old@example.com", PasswordHash: "h"}
		require.NoError(t, store.CreateUser(ctx, user))

		newEmail := "fresh@example.com"
		_, err := store.UpdateUser(ctx, user.ID, pressroom.UserUpdate{Email: &newEmail})
		require.NoError(t, err)

		_, err = store.GetUserByEmail(ctx, "old@example.com")
		assert.ErrorIs(t, err, pressroom.ErrNotFound)

		got, err := store.GetUserByEmail(ctx, "fresh@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		// The freed address is available again.
		assert.NoError(t, store.CreateUser(ctx, &pressroom.User{Email: "old@example.com", PasswordHash: "h"}))
	})

	t.Run("DeleteFreesEmail", func(t *testing.T) {
		store := memory.New()
		user := &pressroom.User{Email: "gone@example.com", PasswordHash: "h"}
		require.NoError(t, store.CreateUser(ctx, user))

		deleted, err := store.DeleteUser(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = store.GetUser(ctx, user.ID)
		assert.ErrorIs(t, err, pressroom.ErrNotFound)

		assert.NoError(t, store.CreateUser(ctx, &pressroom.User{Email: "gone@example.com", PasswordHash: "h"}))
	})

	t.Run("ListByRole", func(t *testing.T) {
		store := memory.New()
		require.NoError(t, store.CreateUser(ctx, &pressroom.User{Email: "a@example.com", PasswordHash: "h", Role: pressroom.RoleAdmin}))
		require.NoError(t, store.CreateUser(ctx, &pressroom.User{Email: "b@example.com", PasswordHash: "h"}))
		require.NoError(t, store.CreateUser(ctx, &pressroom.User{Email: "c@example.com", PasswordHash: "h"}))

		role := pressroom.RoleViewer
		page, err := store.ListUsers(ctx, pressroom.UserFilter{Role: &role}, pressroom.PageRequest{SortBy: "email", SortOrder: pressroom.SortAsc})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "b@example.com", page.Data[0].Email)
	})

	t.Run("PasswordHashNeverSerialized", func(t *testing.T) {
		store := memory.New()
		user := &pressroom.User{Email: "secret@example.com", PasswordHash: "super-secret"}
		require.NoError(t, store.CreateUser(ctx, user))

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)

		raw, err := json.Marshal(got)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "super-secret")
	})
}
