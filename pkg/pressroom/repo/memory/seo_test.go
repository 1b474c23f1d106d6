package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/pkg/pressroom"
	"github.com/pressroom/pressroom/pkg/pressroom/repo/memory"
)

func TestMemoryStore_SeoMeta(t *testing.T) {
	ctx := context.Background()

	t.Run("UpsertPreservesCreatedAt", func(t *testing.T) {
		store, post := newStoreWithPost(t)

		meta := &pressroom.SeoMeta{PostID: post.ID, MetaTitle: "First title"}
		require.NoError(t, store.SetSeoMeta(ctx, meta))
		created := meta.CreatedAt

		meta2 := &pressroom.SeoMeta{PostID: post.ID, MetaTitle: "Second title", MetaDescription: "desc"}
		require.NoError(t, store.SetSeoMeta(ctx, meta2))
		assert.Equal(t, created, meta2.CreatedAt)

		got, err := store.GetSeoMeta(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second title", got.MetaTitle)
		assert.Equal(t, "desc", got.MetaDescription)
		assert.Equal(t, created, got.CreatedAt)
	})

	t.Run("UnknownPostRejected", func(t *testing.T) {
		store := memory.New()
		err := store.SetSeoMeta(ctx, &pressroom.SeoMeta{PostID: uuid.New(), MetaTitle: "x"})
		assert.ErrorIs(t, err, pressroom.ErrNotFound)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store, post := newStoreWithPost(t)
		_, err := store.GetSeoMeta(ctx, post.ID)
		assert.ErrorIs(t, err, pressroom.ErrNotFound)
	})
}
