package drive

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
)

// OpenRoot opens the root directory.
func (d *Drive) OpenRoot(ctx context.Context) notify.Notification {
	return d.OpenFolder(ctx, models.RootDirID)
}

// OpenTrash opens the trash directory.
func (d *Drive) OpenTrash(ctx context.Context) notify.Notification {
	return d.OpenFolder(ctx, models.TrashDirID)
}

// OpenFolder loads a folder, its parent and the first page of its children.
// Any remote failure ends the operation with OPEN_FOLDER_FAILURE.
func (d *Drive) OpenFolder(ctx context.Context, folderID string) notify.Notification {
	ctx, log := d.begin(ctx, "open_folder")
	d.emit(notify.Notification{
		Type:     notify.OpenFolder,
		FolderID: folderID,
		Meta:     notify.Meta{CancelSelection: true},
	})

	failure := func(err error) notify.Notification {
		return d.fail(log, notify.Notification{
			Type:     notify.OpenFolderFailure,
			FolderID: folderID,
			Err:      err,
		})
	}

	folder, err := d.remote.StatByID(ctx, folderID)
	if err != nil {
		return failure(fmt.Errorf("stat folder %s: %w", folderID, err))
	}

	var parent *models.FileEntry
	if folder.DirID != "" {
		parent, err = d.remote.StatByID(ctx, folder.DirID)
		if err != nil {
			return failure(fmt.Errorf("stat parent %s: %w", folder.DirID, err))
		}
	}

	contents, err := d.remote.ListFolder(ctx, folderID, 0, d.pageSize)
	if err != nil {
		return failure(fmt.Errorf("list folder %s: %w", folderID, err))
	}

	count := contents.Count
	if count < 0 {
		count = len(contents.Files)
	}
	log.Debug("folder opened",
		zap.String("folder_id", folderID),
		zap.Int("loaded", len(contents.Files)),
		zap.Int("count", count))

	return d.emit(notify.Notification{
		Type:      notify.OpenFolderSuccess,
		FolderID:  folderID,
		Folder:    folder,
		Parent:    parent,
		Files:     contents.Files,
		FileCount: count,
	})
}

// FetchRecent loads the most recently updated files and resolves the path
// of their parent directories.
func (d *Drive) FetchRecent(ctx context.Context) notify.Notification {
	ctx, log := d.begin(ctx, "fetch_recent")
	d.emit(notify.Notification{
		Type: notify.FetchRecent,
		Meta: notify.Meta{CancelSelection: true},
	})

	files, err := d.remote.RecentFiles(ctx, d.recentLimit)
	if err != nil {
		return d.fail(log, notify.Notification{Type: notify.FetchRecentFailure, Err: err})
	}

	parentIDs := uniqueParents(files)
	var parents map[string]models.FileEntry
	if len(parentIDs) > 0 {
		parents, err = d.remote.FilesByIDs(ctx, parentIDs)
		if err != nil {
			return d.fail(log, notify.Notification{
				Type: notify.FetchRecentFailure,
				Err:  fmt.Errorf("resolve parent folders: %w", err),
			})
		}
	}

	for i := range files {
		files[i].Path = ""
		if p, ok := parents[files[i].DirID]; ok {
			files[i].Path = p.Path
		}
	}

	return d.emit(notify.Notification{
		Type:      notify.FetchRecentSuccess,
		Files:     files,
		FileCount: len(files),
	})
}

func uniqueParents(files []models.FileEntry) []string {
	seen := make(map[string]struct{}, len(files))
	var ids []string
	for _, f := range files {
		if f.DirID == "" {
			continue
		}
		if _, ok := seen[f.DirID]; ok {
			continue
		}
		seen[f.DirID] = struct{}{}
		ids = append(ids, f.DirID)
	}
	return ids
}
