package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/pressroom/pkg/pressroom"
	memorystorage "github.com/pressroom/pressroom/pkg/pressroom/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "assets/abc/sprites.zip"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testKey, strings.NewReader(testData), "application/zip")
		assert.NoError(t, err)
	})

	t.Run("Meta", func(t *testing.T) {
		meta, err := backend.Meta(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "application/zip", meta.ContentType)
		assert.NotEmpty(t, meta.ETag)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(data))
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "plain", strings.NewReader("x"), ""))
		meta, err := backend.Meta(ctx, "plain")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("OverwriteChangesETag", func(t *testing.T) {
		first, err := backend.Meta(ctx, testKey)
		require.NoError(t, err)

		require.NoError(t, backend.Upload(ctx, testKey, strings.NewReader("different bytes"), "application/zip"))
		second, err := backend.Meta(ctx, testKey)
		require.NoError(t, err)
		assert.NotEqual(t, first.ETag, second.ETag)
	})

	t.Run("PresignUnsupported", func(t *testing.T) {
		_, err := backend.PresignDownload(ctx, testKey, "sprites.zip")
		assert.Error(t, err)
	})

	t.Run("DownloadMissing", func(t *testing.T) {
		_, err := backend.Download(ctx, "nope")
		assert.ErrorIs(t, err, pressroom.ErrNotFound)

		_, err = backend.Meta(ctx, "nope")
		assert.ErrorIs(t, err, pressroom.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, pressroom.ErrNotFound)

		assert.ErrorIs(t, backend.Delete(ctx, testKey), pressroom.ErrNotFound)
	})
}
