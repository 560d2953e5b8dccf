// Package local stores offline copies on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fruitsalade/drive/internal/metrics"
)

// Config holds local filesystem backend settings.
type Config struct {
	RootPath   string
	CreateDirs bool
}

// Backend implements storage.Backend on a directory.
type Backend struct {
	rootPath string
}

// New creates a local backend rooted at cfg.RootPath.
func New(cfg Config) (*Backend, error) {
	if cfg.RootPath == "" {
		return nil, fmt.Errorf("root path is required")
	}

	info, err := os.Stat(cfg.RootPath)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("root path %s is not a directory", cfg.RootPath)
	case os.IsNotExist(err) && cfg.CreateDirs:
		if err := os.MkdirAll(cfg.RootPath, 0700); err != nil {
			return nil, fmt.Errorf("create root path %s: %w", cfg.RootPath, err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat root path %s: %w", cfg.RootPath, err)
	}

	return &Backend{rootPath: cfg.RootPath}, nil
}

// LocalPath returns the file holding key. File ids never contain path
// separators; any that do are flattened so a key cannot escape the root.
func (b *Backend) LocalPath(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(b.rootPath, safe)
}

// GetObject opens the file stored at key.
func (b *Backend) GetObject(_ context.Context, key string) (io.ReadCloser, int64, error) {
	start := time.Now()
	f, err := os.Open(b.LocalPath(key))
	if err != nil {
		metrics.RecordStorageOperation("local", "get", time.Since(start), false)
		return nil, 0, fmt.Errorf("open %s: %w", key, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		metrics.RecordStorageOperation("local", "get", time.Since(start), false)
		return nil, 0, fmt.Errorf("stat %s: %w", key, err)
	}
	metrics.RecordStorageOperation("local", "get", time.Since(start), true)
	return f, info.Size(), nil
}

// PutObject writes content atomically (temp file + rename).
func (b *Backend) PutObject(_ context.Context, key string, body io.Reader, _ int64) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation("local", "put", time.Since(start), err == nil)
	}()

	path := b.LocalPath(key)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".drive-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", key, err)
	}
	return nil
}

// DeleteObject removes the file stored at key.
func (b *Backend) DeleteObject(_ context.Context, key string) error {
	start := time.Now()
	err := os.Remove(b.LocalPath(key))
	if err != nil && !os.IsNotExist(err) {
		metrics.RecordStorageOperation("local", "delete", time.Since(start), false)
		return fmt.Errorf("delete %s: %w", key, err)
	}
	metrics.RecordStorageOperation("local", "delete", time.Since(start), true)
	return nil
}

// ObjectExists checks if a file exists for key.
func (b *Backend) ObjectExists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(b.LocalPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

// Type returns "local".
func (b *Backend) Type() string { return "local" }

// Close is a no-op for local backends.
func (b *Backend) Close() error { return nil }
