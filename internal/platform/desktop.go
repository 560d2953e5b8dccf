package platform

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/logging"
)

// Desktop saves downloads to a directory and has no offline storage and no
// open-with support.
type Desktop struct {
	downloadDir string
}

// NewDesktop creates a desktop platform saving into downloadDir.
func NewDesktop(downloadDir string) *Desktop {
	return &Desktop{downloadDir: downloadDir}
}

func (d *Desktop) Name() string { return "desktop" }

// SaveFile writes content into the download directory without overwriting.
func (d *Desktop) SaveFile(_ context.Context, name string, content io.Reader) (string, error) {
	path, err := saveUnique(d.downloadDir, name, content)
	if err != nil {
		return "", err
	}
	logging.Debug("file saved", zap.String("path", path))
	return path, nil
}

func (d *Desktop) SupportsOffline() bool { return false }

func (d *Desktop) SaveOffline(context.Context, string, io.Reader, int64) error {
	return ErrOfflineUnsupported
}

func (d *Desktop) DeleteOffline(context.Context, string) error {
	return ErrOfflineUnsupported
}

func (d *Desktop) OpenOffline(context.Context, string, string) error {
	return ErrNoApp
}

func (d *Desktop) CanOpenWith() bool { return false }

func (d *Desktop) SaveAndOpen(context.Context, string, io.Reader) error {
	return ErrNoApp
}
