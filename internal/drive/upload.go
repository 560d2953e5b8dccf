package drive

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/media"
	"github.com/fruitsalade/drive/internal/metrics"
	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/remote"
)

// UploadFiles uploads files into dirID one after the other, then reports
// one UPLOAD_BATCH_SUMMARY. A conflicting name marks the task conflicted;
// any other error marks it failed. view may be nil.
func (d *Drive) UploadFiles(ctx context.Context, files []models.LocalFile, dirID string, view *models.FolderView) notify.Notification {
	ctx, log := d.begin(ctx, "upload_files")

	tasks := make([]*models.UploadTask, len(files))
	for i, f := range files {
		tasks[i] = models.NewUploadTask(f, dirID)
	}

	for _, task := range tasks {
		d.uploadOne(ctx, log, task)
		metrics.RecordUpload(task.Status.String(), uploadedBytes(task))
		if task.Status == models.UploadSucceeded {
			d.emitUploaded(task.Result, task, view)
		}
	}

	summary := summarizeUploads(tasks)
	log.Info("upload batch done",
		zap.Int("files", len(tasks)),
		zap.String("alert", summary.Alert.Message))
	return d.emit(summary)
}

func (d *Drive) uploadOne(ctx context.Context, log *zap.Logger, task *models.UploadTask) {
	opts := remote.UploadOptions{
		Size:        task.File.Size,
		ContentType: media.ContentType(task.Name),
		CreatedAt:   task.File.ModTime,
	}
	if media.IsPhoto(task.Name) {
		if t, ok := captureTime(task.File); ok {
			opts.CreatedAt = t
		}
	}

	rc, err := task.File.Content()
	if err != nil {
		task.Status, task.Err = models.UploadFailed, fmt.Errorf("open %s: %w", task.Name, err)
		log.Warn("upload", zap.String("name", task.Name), zap.Error(task.Err))
		return
	}
	defer rc.Close()

	entry, err := d.remote.UploadFile(ctx, task.DirID, task.Name, rc, opts)
	switch {
	case err == nil:
		task.Status, task.Result = models.UploadSucceeded, entry
	case remote.IsConflict(err):
		task.Status, task.Err = models.UploadConflicted, err
		log.Info("upload conflict", zap.String("name", task.Name))
	default:
		task.Status, task.Err = models.UploadFailed, err
		log.Warn("upload", zap.String("name", task.Name), zap.Error(err))
	}
}

func captureTime(f models.LocalFile) (time.Time, bool) {
	rc, err := f.Content()
	if err != nil {
		return time.Time{}, false
	}
	defer rc.Close()
	return media.CaptureTime(io.LimitReader(rc, 1<<20))
}

func uploadedBytes(task *models.UploadTask) int64 {
	if task.Status != models.UploadSucceeded {
		return 0
	}
	if task.Result != nil && task.Result.Size > 0 {
		return task.Result.Size
	}
	return task.File.Size
}

// summarizeUploads picks the batch alert: conflicts first, then errors,
// then plain success. The count is always the number of uploaded files.
func summarizeUploads(tasks []*models.UploadTask) notify.Notification {
	var loaded, conflicts, failed int
	for _, t := range tasks {
		switch t.Status {
		case models.UploadSucceeded:
			loaded++
		case models.UploadConflicted:
			conflicts++
		case models.UploadFailed:
			failed++
		}
	}

	var alert *notify.Alert
	switch {
	case conflicts > 0:
		alert = notify.NewAlert(notify.AlertUploadConflicts, notify.LevelInfo,
			notify.AlertDataSmartCount, loaded,
			notify.AlertDataConflictNumber, conflicts)
	case failed > 0:
		alert = notify.NewAlert(notify.AlertUploadErrors, notify.LevelError,
			notify.AlertDataSmartCount, loaded)
	default:
		alert = notify.NewAlert(notify.AlertUploadSuccess, notify.LevelSuccess,
			notify.AlertDataSmartCount, loaded)
	}

	return notify.Notification{
		Type:      notify.UploadBatchSummary,
		Tasks:     tasks,
		FileCount: loaded,
		Alert:     alert,
	}
}

// UploadedFile reports a file uploaded outside UploadFiles.
func (d *Drive) UploadedFile(entry models.FileEntry, view *models.FolderView) notify.Notification {
	return d.emitUploaded(&entry, nil, view)
}

func (d *Drive) emitUploaded(entry *models.FileEntry, task *models.UploadTask, view *models.FolderView) notify.Notification {
	n := notify.Notification{
		Type:     notify.UploadFileSuccess,
		FolderID: entry.DirID,
		File:     entry,
		Task:     task,
	}
	if n.FolderID == "" && task != nil {
		n.FolderID = task.DirID
	}
	if view != nil {
		n.CurrentFileCount = view.Count
		n.Sort = view.Sort
	}
	return d.emit(n)
}
