package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/pkg/pressroom"
	"github.com/pressroom/pressroom/pkg/pressroom/repo/memory"
)

func TestMemoryStore_PostOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGetRoundTrip", func(t *testing.T) {
		store := memory.New()
		post := &pressroom.Post{
			Title:    "Hello World",
			Slug:     "hello-world",
			Body:     "First post body",
			Status:   pressroom.PostStatusPublished,
			AuthorID: uuid.New(),
			Tags:     []string{"intro", "news"},
		}
		require.NoError(t, store.CreatePost(ctx, post))
		require.NotEqual(t, uuid.Nil, post.ID)

		got, err := store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
		assert.Equal(t, post.Title, got.Title)
		assert.Equal(t, post.Slug, got.Slug)
		assert.Equal(t, post.Body, got.Body)
		assert.Equal(t, post.Status, got.Status)
		assert.Equal(t, post.Tags, got.Tags)
		assert.Equal(t, int64(0), got.ViewCount)

		bySlug, err := store.GetPostBySlug(ctx, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, post.ID, bySlug.ID)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		store := memory.New()
		_, err := store.GetPost(ctx, uuid.New())
		assert.ErrorIs(t, err, pressroom.ErrNotFound)

		_, err = store.GetPostBySlug(ctx, "nope")
		assert.ErrorIs(t, err, pressroom.ErrNotFound)
	})

	t.Run("MissingTitleRejected", func(t *testing.T) {
		store := memory.New()
		err := store.CreatePost(ctx, &pressroom.Post{Slug: "no-title", AuthorID: uuid.New()})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "title", ve.Field)
	})

	t.Run("InvalidSlugRejected", func(t *testing.T) {
		store := memory.New()
		err := store.CreatePost(ctx, &pressroom.Post{Title: "t", Slug: "Not A Slug!", AuthorID: uuid.New()})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "slug", ve.Field)
	})

	t.Run("DuplicateSlugRejected", func(t *testing.T) {
		store := memory.New()
		first := &pressroom.Post{Title: "First", Slug: "taken", AuthorID: uuid.New()}
		require.NoError(t, store.CreatePost(ctx, first))

		err := store.CreatePost(ctx, &pressroom.Post{Title: "Second", Slug: "taken", AuthorID: uuid.New()})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "slug", ve.Field)
	})

	t.Run("SoftDeleteFreesSlug", func(t *testing.T) {
		store := memory.New()
		post := &pressroom.Post{Title: "Original", Slug: "reusable", AuthorID: uuid.New()}
		require.NoError(t, store.CreatePost(ctx, post))

		deleted, err := store.DeletePost(ctx, post.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = store.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, pressroom.ErrNotFound)

		// Deleting again reports false without error.
		deleted, err = store.DeletePost(ctx, post.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		// The slug is free for a new post.
		replacement := &pressroom.Post{Title: "Replacement", Slug: "reusable", AuthorID: uuid.New()}
		assert.NoError(t, store.CreatePost(ctx, replacement))
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		store := memory.New()
		post := &pressroom.Post{Title: "Before", Slug: "update-me", Body: "body", AuthorID: uuid.New()}
		require.NoError(t, store.CreatePost(ctx, post))

		newTitle := "After"
		updated, err := store.UpdatePost(ctx, post.ID, pressroom.PostUpdate{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, "update-me", updated.Slug)
		assert.Equal(t, "body", updated.Body)
	})

	t.Run("StatusMachine", func(t *testing.T) {
		store := memory.New()
		post := &pressroom.Post{Title: "Lifecycle", Slug: "lifecycle", AuthorID: uuid.New()}
		require.NoError(t, store.CreatePost(ctx, post))
		assert.Equal(t, pressroom.PostStatusDraft, post.Status)

		published := pressroom.PostStatusPublished
		_, err := store.UpdatePost(ctx, post.ID, pressroom.PostUpdate{Status: &published})
		require.NoError(t, err)

		// Published may return to draft.
		draft := pressroom.PostStatusDraft
		_, err = store.UpdatePost(ctx, post.ID, pressroom.PostUpdate{Status: &draft})
		require.NoError(t, err)

		archived := pressroom.PostStatusArchived
		_, err = store.UpdatePost(ctx, post.ID, pressroom.PostUpdate{Status: &archived})
		require.NoError(t, err)

		// Archived is terminal.
		_, err = store.UpdatePost(ctx, post.ID, pressroom.PostUpdate{Status: &published})
		var ve *pressroom.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "status", ve.Field)
	})
}

func TestMemoryStore_PostListing(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	author := uuid.New()

	for i := 1; i <= 25; i++ {
		post := &pressroom.Post{
			Title:    fmt.Sprintf("Post %02d", i),
			Slug:     fmt.Sprintf("post-%02d", i),
			Body:     fmt.Sprintf("body of post %02d", i),
			Status:   pressroom.PostStatusPublished,
			AuthorID: author,
		}
		require.NoError(t, store.CreatePost(ctx, post))
	}

	t.Run("PageWindowAndTotals", func(t *testing.T) {
		published := pressroom.PostStatusPublished
		page, err := store.ListPosts(ctx, pressroom.PostFilter{Status: &published}, pressroom.PageRequest{
			Page: 2, Limit: 10, SortBy: "title", SortOrder: pressroom.SortAsc,
		})
		require.NoError(t, err)
		assert.Equal(t, 25, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Data, 10)
		assert.Equal(t, "Post 11", page.Data[0].Title)
		assert.Equal(t, "Post 20", page.Data[9].Title)
	})

	t.Run("StableAcrossRepeatedCalls", func(t *testing.T) {
		req := pressroom.PageRequest{Page: 2, Limit: 10}
		first, err := store.ListPosts(ctx, pressroom.PostFilter{}, req)
		require.NoError(t, err)
		second, err := store.ListPosts(ctx, pressroom.PostFilter{}, req)
		require.NoError(t, err)
		require.Equal(t, len(first.Data), len(second.Data))
		for i := range first.Data {
			assert.Equal(t, first.Data[i].ID, second.Data[i].ID)
		}
	})

	t.Run("WalkWithoutOverlapOrGaps", func(t *testing.T) {
		seen := make(map[uuid.UUID]bool)
		for p := 1; p <= 3; p++ {
			page, err := store.ListPosts(ctx, pressroom.PostFilter{}, pressroom.PageRequest{Page: p, Limit: 10})
			require.NoError(t, err)
			for _, post := range page.Data {
				assert.False(t, seen[post.ID], "post %s appeared twice", post.ID)
				seen[post.ID] = true
			}
		}
		assert.Len(t, seen, 25)
	})

	t.Run("MixedCaseTitlesSortByteWise", func(t *testing.T) {
		cased := memory.New()
		for _, title := range []string{"apple", "Banana", "cherry", "Apricot"} {
			require.NoError(t, cased.CreatePost(ctx, &pressroom.Post{
				Title: title, Slug: pressroom.FoldForSearch(title), AuthorID: author,
			}))
		}

		page, err := cased.ListPosts(ctx, pressroom.PostFilter{}, pressroom.PageRequest{
			SortBy: "title", SortOrder: pressroom.SortAsc,
		})
		require.NoError(t, err)
		require.Len(t, page.Data, 4)

		// Uppercase sorts before lowercase: byte order, not locale order.
		titles := make([]string, len(page.Data))
		for i, p := range page.Data {
			titles[i] = p.Title
		}
		assert.Equal(t, []string{"Apricot", "Banana", "apple", "cherry"}, titles)
	})

	t.Run("PastEndIsEmpty", func(t *testing.T) {
		page, err := store.ListPosts(ctx, pressroom.PostFilter{}, pressroom.PageRequest{Page: 9, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, 25, page.Total)
	})

	t.Run("FilterByTag", func(t *testing.T) {
		tagged := &pressroom.Post{
			Title: "Tagged", Slug: "tagged-post", AuthorID: author,
			Status: pressroom.PostStatusPublished, Tags: []string{"special"},
		}
		require.NoError(t, store.CreatePost(ctx, tagged))

		tag := "special"
		page, err := store.ListPosts(ctx, pressroom.PostFilter{Tag: &tag}, pressroom.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, tagged.ID, page.Data[0].ID)
	})
}

func TestMemoryStore_PostSearch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	author := uuid.New()

	posts := []*pressroom.Post{
		{Title: "Gold Market Outlook", Slug: "gold-outlook", Body: "yearly analysis", AuthorID: author},
		{Title: "Silver lining", Slug: "silver-lining", Body: "the GOLD standard", AuthorID: author},
		{Title: "Copper basics", Slug: "copper-basics", Body: "nothing shiny here", AuthorID: author},
	}
	for _, p := range posts {
		require.NoError(t, store.CreatePost(ctx, p))
	}

	t.Run("CaseInsensitiveAcrossTitleAndBody", func(t *testing.T) {
		page, err := store.SearchPosts(ctx, "gOLd", pressroom.PostFilter{}, pressroom.PageRequest{SortBy: "title", SortOrder: pressroom.SortAsc})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "Gold Market Outlook", page.Data[0].Title)
		assert.Equal(t, "Silver lining", page.Data[1].Title)
	})

	t.Run("NoMatches", func(t *testing.T) {
		page, err := store.SearchPosts(ctx, "platinum", pressroom.PostFilter{}, pressroom.PageRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, 0, page.Total)
	})

	t.Run("StatusFilterExcludesDrafts", func(t *testing.T) {
		published := pressroom.PostStatusPublished
		_, err := store.UpdatePost(ctx, posts[0].ID, pressroom.PostUpdate{Status: &published})
		require.NoError(t, err)
		page, err := store.SearchPosts(ctx, "gold", pressroom.PostFilter{Status: &published}, pressroom.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Gold Market Outlook", page.Data[0].Title)
		assert.Equal(t, 1, page.Total)
	})
}

func TestMemoryStore_ViewCounterConcurrency(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	post := &pressroom.Post{Title: "Busy", Slug: "busy-post", AuthorID: uuid.New()}
	require.NoError(t, store.CreatePost(ctx, post))

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.IncrementPostViews(ctx, post.ID))
		}()
	}
	wg.Wait()

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.ViewCount)

	assert.ErrorIs(t, store.IncrementPostViews(ctx, uuid.New()), pressroom.ErrNotFound)
}
