// Package memory provides an in-memory blob backend, suitable for
// tests and for running the server without any external storage.
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

type blob struct {
	data        []byte
	contentType string
	etag        string
	updatedAt   time.Time
}

// Backend keeps every blob in process memory.
type Backend struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

var _ pressroom.BlobStore = (*Backend)(nil)

// New creates an empty in-memory blob backend.
func New() *Backend {
	return &Backend{blobs: make(map[string]blob)}
}

func (b *Backend) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sum := md5.Sum(data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = blob{
		data:        data,
		contentType: contentType,
		etag:        hex.EncodeToString(sum[:]),
		updatedAt:   time.Now().UTC(),
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored, ok := b.blobs[key]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(stored.data)), nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[key]; !ok {
		return pressroom.ErrNotFound
	}
	delete(b.blobs, key)
	return nil
}

// PresignDownload is unsupported; callers stream via Download instead.
func (b *Backend) PresignDownload(ctx context.Context, key, filename string) (string, error) {
	return "", fmt.Errorf("memory backend does not support presigned URLs")
}

func (b *Backend) Meta(ctx context.Context, key string) (*pressroom.BlobMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored, ok := b.blobs[key]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	return &pressroom.BlobMeta{
		Key:         key,
		Size:        int64(len(stored.data)),
		ContentType: stored.contentType,
		ETag:        stored.etag,
		UpdatedAt:   stored.updatedAt,
	}, nil
}
