// Package registry records which files are available offline.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fruitsalade/drive/internal/config"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown registry backend")

// Entry is a file marked available offline.
type Entry struct {
	FileID  string
	AddedAt time.Time
}

// Registry is the set of files available offline. Add and Remove are
// idempotent.
type Registry interface {
	Has(ctx context.Context, fileID string) (bool, error)
	Add(ctx context.Context, fileID string) error
	Remove(ctx context.Context, fileID string) error
	// List returns the entries ordered by AddedAt.
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Open opens the registry selected by cfg.RegistryBackend.
func Open(ctx context.Context, cfg *config.Config) (Registry, error) {
	switch cfg.RegistryBackend {
	case "bolt":
		return OpenBolt(cfg.RegistryPath)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.RegistryBackend)
	}
}
