package drive

import (
	"context"
	"fmt"
	"io"
	"path"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/metrics"
	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/remote"
)

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// DownloadFiles saves a single file as is; any other selection, or a
// directory, is saved as a zip archive built by the server.
func (d *Drive) DownloadFiles(ctx context.Context, files []models.FileEntry) notify.Notification {
	if len(files) == 1 && !files[0].IsDir() {
		return d.DownloadFile(ctx, files[0], notify.MetaDefaults)
	}

	ctx, log := d.begin(ctx, "download_selection")
	if len(files) == 0 {
		return d.fail(log, downloadFailure(ErrEmptySelection, notify.MetaDefaults))
	}

	paths, err := d.archivePaths(ctx, files)
	if err != nil {
		return d.fail(log, downloadFailure(err, notify.MetaDefaults))
	}
	href, err := d.remote.GetArchiveLinkByPaths(ctx, archiveName, paths)
	if err != nil {
		return d.fail(log, downloadFailure(err, notify.MetaDefaults))
	}
	saved, err := d.fetchAndSave(ctx, href, archiveName)
	if err != nil {
		return d.fail(log, downloadFailure(err, notify.MetaDefaults))
	}

	log.Info("archive saved", zap.String("path", saved), zap.Int("files", len(files)))
	return d.emit(notify.Notification{
		Type:  notify.DownloadSelection,
		Files: files,
		Name:  saved,
		Meta:  notify.MetaDefaults,
	})
}

// archivePaths returns the absolute path of each file. Directories carry
// their path; files are located through their parent directory.
func (d *Drive) archivePaths(ctx context.Context, files []models.FileEntry) ([]string, error) {
	parents := make(map[string]string)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if f.Path != "" {
			paths = append(paths, f.Path)
			continue
		}
		dir, ok := parents[f.DirID]
		if !ok {
			parent, err := d.remote.StatByID(ctx, f.DirID)
			if err != nil {
				return nil, fmt.Errorf("locate %s: %w", f.Name, err)
			}
			dir = parent.Path
			parents[f.DirID] = dir
		}
		paths = append(paths, path.Join("/", dir, f.Name))
	}
	return paths, nil
}

func (d *Drive) fetchAndSave(ctx context.Context, href, name string) (string, error) {
	rc, _, err := d.remote.FetchLink(ctx, href)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	cr := &countingReader{r: rc}
	saved, err := d.platform.SaveFile(ctx, name, cr)
	metrics.RecordDownload(cr.n)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return saved, nil
}

// DownloadFile saves the content of one file in the download location.
func (d *Drive) DownloadFile(ctx context.Context, file models.FileEntry, meta notify.Meta) notify.Notification {
	ctx, log := d.begin(ctx, "download_file")

	rc, _, err := d.remote.DownloadByID(ctx, file.ID)
	if err != nil {
		return d.fail(log, downloadFailure(err, meta))
	}
	defer rc.Close()

	cr := &countingReader{r: rc}
	saved, err := d.platform.SaveFile(ctx, file.Name, cr)
	metrics.RecordDownload(cr.n)
	if err != nil {
		return d.fail(log, downloadFailure(fmt.Errorf("save %s: %w", file.Name, err), meta))
	}

	log.Info("file saved", zap.String("id", file.ID), zap.String("path", saved), zap.Int64("bytes", cr.n))
	return d.emit(notify.Notification{
		Type: notify.DownloadFile,
		File: &file,
		Name: saved,
		Meta: meta,
	})
}

// OpenFileWith downloads a file and opens it with the default application.
func (d *Drive) OpenFileWith(ctx context.Context, file models.FileEntry) notify.Notification {
	ctx, log := d.begin(ctx, "open_file_with")
	if !d.platform.CanOpenWith() {
		return d.fail(log, noAppFailure(fmt.Errorf("%s: no opener on %s", file.Name, d.platform.Name())))
	}

	started := d.emit(notify.Notification{
		Type: notify.OpenFileWith,
		File: &file,
		IDs:  []string{file.ID},
	})

	rc, _, err := d.remote.DownloadByID(ctx, file.ID)
	if err != nil {
		if remote.IsOffline(err) {
			return d.fail(log, notify.Notification{
				Type:  notify.OpenFileEOffline,
				File:  &file,
				Err:   err,
				Meta:  notify.MetaDefaults,
				Alert: notify.NewAlert(notify.AlertDownloadOffline, notify.LevelError),
			})
		}
		return d.fail(log, downloadFailure(err, notify.MetaDefaults))
	}
	defer rc.Close()

	cr := &countingReader{r: rc}
	err = d.platform.SaveAndOpen(ctx, file.Name, cr)
	metrics.RecordDownload(cr.n)
	if err != nil {
		return d.fail(log, noAppFailure(err))
	}
	return started
}

// OpenLocalFile opens the offline copy of a file.
func (d *Drive) OpenLocalFile(ctx context.Context, file models.FileEntry) notify.Notification {
	ctx, log := d.begin(ctx, "open_local_file")
	if err := d.platform.OpenOffline(ctx, file.ID, file.Name); err != nil {
		return d.fail(log, noAppFailure(err))
	}
	return d.emit(notify.Notification{
		Type: notify.OpenFileWith,
		File: &file,
		IDs:  []string{file.ID},
	})
}

// FileDownloadURL returns an absolute link that downloads the file without
// authentication.
func (d *Drive) FileDownloadURL(ctx context.Context, fileID string) (string, error) {
	href, err := d.remote.GetDownloadLinkByID(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download link for %s: %w", fileID, err)
	}
	return d.remote.FullURL(href), nil
}
