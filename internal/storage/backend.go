// Package storage defines the Backend interface for offline copies of files.
package storage

import (
	"context"
	"io"
	"io/fs"
)

// ErrNotFound is wrapped by GetObject errors when the key does not exist.
var ErrNotFound = fs.ErrNotExist

// Backend stores file content keyed by file id.
type Backend interface {
	// GetObject returns the content stored at key and its size.
	GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// PutObject stores body at key. size is -1 when unknown.
	PutObject(ctx context.Context, key string, body io.Reader, size int64) error

	// DeleteObject removes key. Removing a missing key is not an error.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks if an object exists at the given key.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// Type returns the backend type identifier ("local", "s3").
	Type() string

	// Close releases any resources held by the backend.
	Close() error
}

// Pather is implemented by backends whose objects live on the local
// filesystem and can be handed to other programs directly.
type Pather interface {
	LocalPath(key string) string
}
