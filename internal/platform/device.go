package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/logging"
	"github.com/fruitsalade/drive/internal/storage"
)

// Device keeps offline copies in a storage backend and opens files with an
// external application.
type Device struct {
	downloadDir string
	openDir     string
	store       storage.Backend
	opener      Opener
}

// DeviceConfig configures a Device.
type DeviceConfig struct {
	DownloadDir string
	// OpenDir receives files saved only to be opened. Defaults to a
	// directory under the system temp dir.
	OpenDir string
	Store   storage.Backend
	// Opener defaults to SystemOpener.
	Opener Opener
}

// NewDevice creates a device platform.
func NewDevice(cfg DeviceConfig) *Device {
	if cfg.OpenDir == "" {
		cfg.OpenDir = filepath.Join(os.TempDir(), "drive-open")
	}
	if cfg.Opener == nil {
		cfg.Opener = SystemOpener
	}
	return &Device{
		downloadDir: cfg.DownloadDir,
		openDir:     cfg.OpenDir,
		store:       cfg.Store,
		opener:      cfg.Opener,
	}
}

func (d *Device) Name() string { return "device" }

// SaveFile writes content into the download directory without overwriting.
func (d *Device) SaveFile(_ context.Context, name string, content io.Reader) (string, error) {
	return saveUnique(d.downloadDir, name, content)
}

func (d *Device) SupportsOffline() bool { return d.store != nil }

// SaveOffline stores the offline copy of fileID.
func (d *Device) SaveOffline(ctx context.Context, fileID string, content io.Reader, size int64) error {
	if d.store == nil {
		return ErrOfflineUnsupported
	}
	if err := d.store.PutObject(ctx, fileID, content, size); err != nil {
		return fmt.Errorf("save offline copy of %s: %w", fileID, err)
	}
	return nil
}

// DeleteOffline removes the offline copy of fileID.
func (d *Device) DeleteOffline(ctx context.Context, fileID string) error {
	if d.store == nil {
		return ErrOfflineUnsupported
	}
	return d.store.DeleteObject(ctx, fileID)
}

// OpenOffline opens the offline copy of fileID. Copies held outside the
// local filesystem are first written to the open directory under name.
func (d *Device) OpenOffline(ctx context.Context, fileID, name string) error {
	if d.store == nil {
		return ErrNoApp
	}
	if p, ok := d.store.(storage.Pather); ok {
		if _, err := os.Stat(p.LocalPath(fileID)); err != nil {
			return fmt.Errorf("offline copy of %s: %w", fileID, err)
		}
		return d.open(p.LocalPath(fileID))
	}

	rc, _, err := d.store.GetObject(ctx, fileID)
	if err != nil {
		return fmt.Errorf("offline copy of %s: %w", fileID, err)
	}
	defer rc.Close()
	return d.SaveAndOpen(ctx, name, rc)
}

func (d *Device) CanOpenWith() bool { return d.opener != nil }

// SaveAndOpen writes content to the open directory and opens it.
func (d *Device) SaveAndOpen(_ context.Context, name string, content io.Reader) error {
	path, err := saveUnique(d.openDir, name, content)
	if err != nil {
		return err
	}
	return d.open(path)
}

func (d *Device) open(path string) error {
	if err := d.opener.Open(path); err != nil {
		logging.Warn("open failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNoApp, err)
	}
	return nil
}
