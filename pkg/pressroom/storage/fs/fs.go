// Package fs provides a local-filesystem blob backend.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// Config options for the filesystem backend.
type Config struct {
	BaseDir string
}

// Backend stores blobs as files under a base directory. Keys map to
// relative paths, so "assets/ab/cd" nests directories as expected.
type Backend struct {
	baseDir string
}

var _ pressroom.BlobStore = (*Backend)(nil)

// New creates the base directory if needed and returns a backend
// rooted there.
func New(cfg Config) (*Backend, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &Backend{baseDir: cfg.BaseDir}, nil
}

// path resolves a key inside the base directory, rejecting keys that
// would escape it.
func (b *Backend) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.baseDir, clean), nil
}

func (b *Backend) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	filePath, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := b.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, pressroom.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath, err := b.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return pressroom.ErrNotFound
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// PresignDownload is unsupported; callers stream via Download instead.
func (b *Backend) PresignDownload(ctx context.Context, key, filename string) (string, error) {
	return "", fmt.Errorf("filesystem backend does not support presigned URLs")
}

func (b *Backend) Meta(ctx context.Context, key string) (*pressroom.BlobMeta, error) {
	filePath, err := b.path(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pressroom.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	// Content type is not stored; sniff it from the first bytes.
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &pressroom.BlobMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
	}, nil
}

// cleanupEmptyDirectories removes empty directories left behind by
// Delete, walking up toward (but never removing) the base directory.
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
