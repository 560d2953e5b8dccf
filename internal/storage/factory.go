package storage

import (
	"context"
	"fmt"

	"github.com/fruitsalade/drive/internal/config"
	"github.com/fruitsalade/drive/internal/storage/local"
	s3backend "github.com/fruitsalade/drive/internal/storage/s3"
)

// NewBackend creates the offline backend selected by cfg.OfflineBackend.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.OfflineBackend {
	case "local":
		return local.New(local.Config{RootPath: cfg.OfflineDir, CreateDirs: true})
	case "s3":
		return s3backend.New(ctx, s3backend.Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
		})
	default:
		return nil, fmt.Errorf("unknown offline backend: %s", cfg.OfflineBackend)
	}
}
