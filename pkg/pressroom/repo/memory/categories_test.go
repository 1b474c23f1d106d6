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

func TestMemoryStore_CategoryOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndLookup", func(t *testing.T) {
		store := memory.New()
		cat := &pressroom.Category{Name: "Strategies", Slug: "strategies"}
		require.NoError(t, store.CreateCategory(ctx, cat))

		got, err := store.GetCategory(ctx, cat.ID)
		require.NoError(t, err)
		assert.Equal(t, "Strategies", got.Name)

		bySlug, err := store.GetCategoryBySlug(ctx, "strategies")
		require.NoError(t, err)
		assert.Equal(t, cat.ID, bySlug.ID)
	})

	t.Run("DuplicateNameAndSlugRejected", func(t *testing.T) {
		store := memory.New()
		require.NoError(t, store.CreateCategory(ctx, &pressroom.Category{Name: "News", Slug: "news"}))

		err := store.CreateCategory(ctx, &pressroom.Category{Name: "News", Slug: "news-2"})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "name", ve.Field)

		err = store.CreateCategory(ctx, &pressroom.Category{Name: "Other", Slug: "news"})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "slug", ve.Field)
	})

	t.Run("CycleRejected", func(t *testing.T) {
		store := memory.New()
		root := &pressroom.Category{Name: "Root", Slug: "root"}
		require.NoError(t, store.CreateCategory(ctx, root))

		child := &pressroom.Category{Name: "Child", Slug: "child", ParentID: &root.ID}
		require.NoError(t, store.CreateCategory(ctx, child))

		grandchild := &pressroom.Category{Name: "Grandchild", Slug: "grandchild", ParentID: &child.ID}
		require.NoError(t, store.CreateCategory(ctx, grandchild))

		// Reparenting the root under its grandchild closes a loop.
		_, err := store.UpdateCategory(ctx, root.ID, pressroom.CategoryUpdate{ParentID: &grandchild.ID})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "parent_id", ve.Field)

		// A category as its own parent is the degenerate cycle.
		_, err = store.UpdateCategory(ctx, root.ID, pressroom.CategoryUpdate{ParentID: &root.ID})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "parent_id", ve.Field)
	})

	t.Run("DetachParent", func(t *testing.T) {
		store := memory.New()
		root := &pressroom.Category{Name: "Top", Slug: "top"}
		require.NoError(t, store.CreateCategory(ctx, root))
		child := &pressroom.Category{Name: "Nested", Slug: "nested", ParentID: &root.ID}
		require.NoError(t, store.CreateCategory(ctx, child))

		nilParent := uuid.Nil
		updated, err := store.UpdateCategory(ctx, child.ID, pressroom.CategoryUpdate{ParentID: &nilParent})
		require.NoError(t, err)
		assert.Nil(t, updated.ParentID)
	})

	t.Run("DeleteWithAttachedPostsRejected", func(t *testing.T) {
		store := memory.New()
		cat := &pressroom.Category{Name: "Busy", Slug: "busy"}
		require.NoError(t, store.CreateCategory(ctx, cat))

		post := &pressroom.Post{Title: "In category", Slug: "in-category", AuthorID: uuid.New(), CategoryID: &cat.ID}
		require.NoError(t, store.CreatePost(ctx, post))

		deleted, err := store.DeleteCategory(ctx, cat.ID)
		assert.False(t, deleted)
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)

		// Soft-deleting the post releases the category.
		_, err = store.DeletePost(ctx, post.ID)
		require.NoError(t, err)
		deleted, err = store.DeleteCategory(ctx, cat.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("DeleteWithChildrenRejected", func(t *testing.T) {
		store := memory.New()
		parent := &pressroom.Category{Name: "Parent", Slug: "parent"}
		require.NoError(t, store.CreateCategory(ctx, parent))
		require.NoError(t, store.CreateCategory(ctx, &pressroom.Category{Name: "Kid", Slug: "kid", ParentID: &parent.ID}))

		deleted, err := store.DeleteCategory(ctx, parent.ID)
		assert.False(t, deleted)
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("DeleteUnknownReportsFalse", func(t *testing.T) {
		store := memory.New()
		deleted, err := store.DeleteCategory(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("ListSortedByName", func(t *testing.T) {
		store := memory.New()
		for _, name := range []string{"Zeta", "Alpha", "Mid"} {
			require.NoError(t, store.CreateCategory(ctx, &pressroom.Category{Name: name, Slug: pressroom.FoldForSearch(name)}))
		}

		page, err := store.ListCategories(ctx, pressroom.PageRequest{SortBy: "name", SortOrder: pressroom.SortAsc})
		require.NoError(t, err)
		require.Len(t, page.Data, 3)
		assert.Equal(t, "Alpha", page.Data[0].Name)
		assert.Equal(t, "Zeta", page.Data[2].Name)
	})
}
