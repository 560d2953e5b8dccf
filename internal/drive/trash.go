package drive

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/remote"
)

// TrashFiles moves files to the trash one at a time, in order. A file
// already in the trash counts as removed. The first other failure stops
// the batch; files trashed before it stay trashed.
func (d *Drive) TrashFiles(ctx context.Context, files []models.FileEntry) notify.Notification {
	ctx, log := d.begin(ctx, "trash_files")
	d.emit(notify.Notification{
		Type:  notify.TrashFiles,
		Files: files,
		Meta:  notify.MetaDefaults,
	})

	ids := make([]string, 0, len(files))
	for i := range files {
		f := &files[i]
		if err := d.trashOne(ctx, log, f); err != nil {
			return d.fail(log, notify.Notification{
				Type:  notify.TrashFilesFailure,
				Files: files,
				Err:   fmt.Errorf("trash %s: %w", f.Name, err),
				Meta:  notify.MetaDefaults,
				Alert: notify.NewAlert(notify.AlertTryAgain, notify.LevelError),
			})
		}
		ids = append(ids, f.ID)
	}

	log.Info("files trashed", zap.Int("count", len(ids)))
	return d.emit(notify.Notification{
		Type:  notify.TrashFilesSuccess,
		IDs:   ids,
		Meta:  notify.MetaDefaults,
		Alert: notify.NewAlert(notify.AlertTrashFileSuccess, notify.LevelSuccess),
	})
}

func (d *Drive) trashOne(ctx context.Context, log *zap.Logger, f *models.FileEntry) error {
	if _, err := d.remote.TrashByID(ctx, f.ID); err != nil {
		if remote.IsAlreadyInTrash(err) {
			log.Debug("already in trash", zap.String("id", f.ID))
			return nil
		}
		return err
	}

	for _, ref := range f.AlbumReferences() {
		if err := d.remote.RemoveReferencedFiles(ctx, ref, f.ID); err != nil {
			return fmt.Errorf("remove from album %s: %w", ref.ID, err)
		}
	}

	if err := d.remote.RevokeSharingLink(ctx, f.ID); err != nil {
		log.Warn("revoke sharing link", zap.String("id", f.ID), zap.Error(err))
	}
	return nil
}
