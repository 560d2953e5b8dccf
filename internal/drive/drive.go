// Package drive implements the drive operations. Every operation announces
// itself, performs its remote calls, and reports exactly one terminal
// notification through the configured dispatcher.
package drive

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/logging"
	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/platform"
	"github.com/fruitsalade/drive/internal/registry"
	"github.com/fruitsalade/drive/internal/remote"
)

// Remote is the subset of the server API used by the operations.
// *remote.Client implements it.
type Remote interface {
	StatByID(ctx context.Context, id string) (*models.FileEntry, error)
	ListFolder(ctx context.Context, id string, skip, limit int) (*remote.FolderContents, error)
	FindFiles(ctx context.Context, q remote.FindQuery) ([]models.FileEntry, error)
	RecentFiles(ctx context.Context, limit int) ([]models.FileEntry, error)
	FilesByIDs(ctx context.Context, ids []string) (map[string]models.FileEntry, error)

	CreateDirectory(ctx context.Context, dirID, name string) (*models.FileEntry, error)
	UploadFile(ctx context.Context, dirID, name string, content io.Reader, opts remote.UploadOptions) (*models.FileEntry, error)

	TrashByID(ctx context.Context, id string) (*models.FileEntry, error)
	RemoveReferencedFiles(ctx context.Context, ref models.Reference, ids ...string) error
	RevokeSharingLink(ctx context.Context, fileID string) error

	DownloadByID(ctx context.Context, id string) (io.ReadCloser, int64, error)
	GetArchiveLinkByPaths(ctx context.Context, name string, paths []string) (string, error)
	GetDownloadLinkByID(ctx context.Context, id string) (string, error)
	FetchLink(ctx context.Context, href string) (io.ReadCloser, int64, error)
	FullURL(href string) string
}

var _ Remote = (*remote.Client)(nil)

const (
	DefaultPageSize    = 30
	DefaultRecentLimit = 50

	archiveName = "files.zip"
)

// Drive runs the drive operations against a remote.
type Drive struct {
	remote      Remote
	platform    platform.Platform
	registry    registry.Registry
	dispatcher  notify.Dispatcher
	logger      *zap.Logger
	pageSize    int
	recentLimit int
}

// Option configures a Drive.
type Option func(*Drive)

// WithPlatform sets the host capabilities. Defaults to a desktop platform
// saving into the system temp directory.
func WithPlatform(p platform.Platform) Option {
	return func(d *Drive) { d.platform = p }
}

// WithRegistry sets the offline registry. Defaults to an in-memory registry.
func WithRegistry(r registry.Registry) Option {
	return func(d *Drive) { d.registry = r }
}

// WithDispatcher sets where notifications go. Defaults to notify.Discard.
func WithDispatcher(n notify.Dispatcher) Option {
	return func(d *Drive) { d.dispatcher = n }
}

// WithPageSize sets the folder page size.
func WithPageSize(n int) Option {
	return func(d *Drive) {
		if n > 0 {
			d.pageSize = n
		}
	}
}

// WithRecentLimit sets the number of recent files fetched.
func WithRecentLimit(n int) Option {
	return func(d *Drive) {
		if n > 0 {
			d.recentLimit = n
		}
	}
}

// WithLogger sets the base logger. Operations add op and op_id fields.
func WithLogger(l *zap.Logger) Option {
	return func(d *Drive) { d.logger = l }
}

// New creates a Drive.
func New(r Remote, opts ...Option) *Drive {
	d := &Drive{
		remote:      r,
		dispatcher:  notify.Discard,
		pageSize:    DefaultPageSize,
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.platform == nil {
		d.platform = platform.NewDesktop(filepath.Join(os.TempDir(), "drive-downloads"))
	}
	if d.registry == nil {
		d.registry = registry.NewMemory()
	}
	return d
}

// PageSize returns the folder page size.
func (d *Drive) PageSize() int { return d.pageSize }

// Platform returns the host capabilities in use.
func (d *Drive) Platform() platform.Platform { return d.platform }

// Registry returns the offline registry in use.
func (d *Drive) Registry() registry.Registry { return d.registry }

// begin tags ctx with the operation name for logging.
func (d *Drive) begin(ctx context.Context, op string) (context.Context, *zap.Logger) {
	if d.logger != nil && logging.OperationID(ctx) == "" {
		ctx = logging.NewContext(ctx, d.logger)
	}
	ctx = logging.WithOperation(ctx, op)
	return ctx, logging.WithContext(ctx)
}

// emit delivers n and returns it.
func (d *Drive) emit(n notify.Notification) notify.Notification {
	d.dispatcher.Dispatch(n)
	return n
}

func (d *Drive) fail(log *zap.Logger, n notify.Notification) notify.Notification {
	log.Warn("operation failed", zap.String("type", string(n.Type)), zap.Error(n.Err))
	return d.emit(n)
}
