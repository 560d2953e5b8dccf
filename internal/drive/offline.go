package drive

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/metrics"
	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
)

// ToggleAvailableOffline makes a file available offline, or undoes it when
// it already is.
func (d *Drive) ToggleAvailableOffline(ctx context.Context, file models.FileEntry) notify.Notification {
	has, err := d.registry.Has(ctx, file.ID)
	if err != nil {
		_, log := d.begin(ctx, "toggle_offline")
		return d.fail(log, downloadFailure(fmt.Errorf("offline registry: %w", err), notify.Meta{}))
	}
	if has {
		return d.UndoMakeAvailableOffline(ctx, file)
	}
	return d.MakeAvailableOffline(ctx, file)
}

// MakeAvailableOffline downloads a file and records it as available
// offline. Platforms with offline storage keep the content. Calling it for a
// file already available offline changes nothing.
func (d *Drive) MakeAvailableOffline(ctx context.Context, file models.FileEntry) notify.Notification {
	ctx, log := d.begin(ctx, "make_available_offline")
	done := notify.Notification{
		Type: notify.MakeAvailableOffline,
		File: &file,
		IDs:  []string{file.ID},
	}

	has, err := d.registry.Has(ctx, file.ID)
	if err != nil {
		return d.fail(log, downloadFailure(fmt.Errorf("offline registry: %w", err), notify.Meta{}))
	}
	if has {
		return d.emit(done)
	}

	rc, size, err := d.remote.DownloadByID(ctx, file.ID)
	if err != nil {
		return d.fail(log, downloadFailure(err, notify.Meta{}))
	}
	defer rc.Close()

	cr := &countingReader{r: rc}
	if d.platform.SupportsOffline() {
		err = d.platform.SaveOffline(ctx, file.ID, cr, size)
	} else {
		_, err = io.Copy(io.Discard, cr)
	}
	metrics.RecordDownload(cr.n)
	if err != nil {
		return d.fail(log, downloadFailure(err, notify.Meta{}))
	}

	if err := d.registry.Add(ctx, file.ID); err != nil {
		return d.fail(log, downloadFailure(fmt.Errorf("offline registry: %w", err), notify.Meta{}))
	}
	d.updateOfflineGauge(ctx, log)
	log.Info("available offline", zap.String("id", file.ID), zap.Int64("bytes", cr.n))
	return d.emit(done)
}

// UndoMakeAvailableOffline forgets the offline copy of a file. Calling it
// for a file not available offline changes nothing.
func (d *Drive) UndoMakeAvailableOffline(ctx context.Context, file models.FileEntry) notify.Notification {
	ctx, log := d.begin(ctx, "undo_make_available_offline")
	done := notify.Notification{
		Type: notify.UndoMakeAvailableOffline,
		File: &file,
		IDs:  []string{file.ID},
	}

	has, err := d.registry.Has(ctx, file.ID)
	if err != nil {
		return d.fail(log, downloadFailure(fmt.Errorf("offline registry: %w", err), notify.Meta{}))
	}
	if !has {
		return d.emit(done)
	}

	if d.platform.SupportsOffline() {
		if err := d.platform.DeleteOffline(ctx, file.ID); err != nil {
			log.Warn("delete offline copy", zap.String("id", file.ID), zap.Error(err))
		}
	}
	if err := d.registry.Remove(ctx, file.ID); err != nil {
		return d.fail(log, downloadFailure(fmt.Errorf("offline registry: %w", err), notify.Meta{}))
	}
	d.updateOfflineGauge(ctx, log)
	return d.emit(done)
}

// AvailableOffline returns the ids of the files available offline, oldest
// first.
func (d *Drive) AvailableOffline(ctx context.Context) ([]string, error) {
	entries, err := d.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.FileID
	}
	return ids, nil
}

func (d *Drive) updateOfflineGauge(ctx context.Context, log *zap.Logger) {
	entries, err := d.registry.List(ctx)
	if err != nil {
		log.Debug("list offline registry", zap.Error(err))
		return
	}
	metrics.SetOfflineFiles(len(entries))
}
