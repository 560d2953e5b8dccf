// Package platform abstracts what the host can do with files: save them
// where the user finds them, keep offline copies and open them with another
// application.
package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
)

var (
	// ErrNoApp is returned when no application can open a file.
	ErrNoApp = errors.New("no application can open this file")
	// ErrOfflineUnsupported is returned by platforms without offline storage.
	ErrOfflineUnsupported = errors.New("offline copies are not supported on this platform")
)

// Platform is the set of host capabilities the drive operations rely on.
type Platform interface {
	Name() string

	// SaveFile stores content under name in the user's download location and
	// returns the path written.
	SaveFile(ctx context.Context, name string, content io.Reader) (string, error)

	SupportsOffline() bool
	SaveOffline(ctx context.Context, fileID string, content io.Reader, size int64) error
	DeleteOffline(ctx context.Context, fileID string) error
	// OpenOffline opens the offline copy of fileID; name gives the extension.
	OpenOffline(ctx context.Context, fileID, name string) error

	CanOpenWith() bool
	// SaveAndOpen stores content under name and opens it with the default
	// application.
	SaveAndOpen(ctx context.Context, name string, content io.Reader) error
}

// Opener opens a local file with the default application.
type Opener interface {
	Open(path string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) error

// Open calls f(path).
func (f OpenerFunc) Open(path string) error { return f(path) }

// SystemOpener opens files with the desktop's default handler
// (xdg-open, open or start).
var SystemOpener Opener = OpenerFunc(browser.OpenFile)

// saveUnique writes content to dir/name, adding " (n)" before the extension
// when the name is taken. The file is written to a temp name and renamed.
func saveUnique(dir, name string, content io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		name = "download"
	}

	tmp, err := os.CreateTemp(dir, ".drive-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		target := filepath.Join(dir, candidate)
		// Link fails on an existing target where rename would replace it.
		err := os.Link(tmpName, target)
		switch {
		case err == nil:
			os.Remove(tmpName)
			return target, nil
		case os.IsExist(err):
			continue
		}

		// No hard links on this filesystem.
		if _, statErr := os.Stat(target); statErr == nil {
			continue
		}
		if err := os.Rename(tmpName, target); err != nil {
			os.Remove(tmpName)
			return "", fmt.Errorf("save %s: %w", candidate, err)
		}
		return target, nil
	}
}
