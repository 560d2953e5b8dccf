package drive

import (
	"context"
	"fmt"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/remote"
)

// PageRequest asks for the next page of a folder listing.
type PageRequest struct {
	FolderID string
	Skip     int
	Limit    int
	// Sort is nil for the server's default order.
	Sort *models.Sort
	// LoadedFolders and LoadedFiles are the directory and file children
	// already loaded; sorted pages skip each kind separately.
	LoadedFolders int
	LoadedFiles   int
}

// NextPage returns the request for the page following what view shows.
func (d *Drive) NextPage(view *models.FolderView) PageRequest {
	folders, files := view.LoadedFolders(), view.LoadedFiles()
	return PageRequest{
		FolderID:      view.Folder.ID,
		Skip:          folders + files,
		Limit:         d.pageSize,
		Sort:          view.Sort,
		LoadedFolders: folders,
		LoadedFiles:   files,
	}
}

// SortFolder reloads the first page of a folder in the given order.
// Directories always come before files.
func (d *Drive) SortFolder(ctx context.Context, folderID, attribute, order string) notify.Notification {
	ctx, log := d.begin(ctx, "sort_folder")
	if order == "" {
		order = models.SortAsc
	}
	sort := models.Sort{Attribute: attribute, Order: order}
	d.emit(notify.Notification{
		Type:     notify.SortFolder,
		FolderID: folderID,
		Sort:     &sort,
		Meta:     notify.Meta{CancelSelection: true},
	})

	if !models.ValidSortAttribute(attribute) || (order != models.SortAsc && order != models.SortDesc) {
		return d.fail(log, notify.Notification{
			Type:     notify.SortFolderFailure,
			FolderID: folderID,
			Sort:     &sort,
			Err:      fmt.Errorf("%w: %s %s", ErrInvalidSort, attribute, order),
		})
	}

	files, err := d.sortedPage(ctx, folderID, sort, d.pageSize, 0, 0)
	if err != nil {
		return d.fail(log, notify.Notification{
			Type:     notify.SortFolderFailure,
			FolderID: folderID,
			Sort:     &sort,
			Err:      err,
		})
	}

	return d.emit(notify.Notification{
		Type:     notify.SortFolderSuccess,
		FolderID: folderID,
		Files:    files,
		Sort:     &sort,
	})
}

// FetchMoreFiles loads the next page of a folder. Unsorted folders are
// paged by offset; sorted folders page directories first, then files.
func (d *Drive) FetchMoreFiles(ctx context.Context, req PageRequest) notify.Notification {
	ctx, log := d.begin(ctx, "fetch_more_files")
	if req.Limit <= 0 {
		req.Limit = d.pageSize
	}
	d.emit(notify.Notification{
		Type:     notify.FetchMoreFiles,
		FolderID: req.FolderID,
		Skip:     req.Skip,
		Limit:    req.Limit,
	})

	var (
		files []models.FileEntry
		err   error
	)
	if req.Sort == nil {
		var contents *remote.FolderContents
		contents, err = d.remote.ListFolder(ctx, req.FolderID, req.Skip, req.Limit)
		if err == nil {
			files = contents.Files
		}
	} else {
		files, err = d.sortedPage(ctx, req.FolderID, *req.Sort, req.Limit, req.LoadedFolders, req.LoadedFiles)
	}
	if err != nil {
		return d.fail(log, notify.Notification{
			Type:     notify.FetchMoreFilesFailure,
			FolderID: req.FolderID,
			Skip:     req.Skip,
			Limit:    req.Limit,
			Err:      err,
		})
	}

	return d.emit(notify.Notification{
		Type:     notify.FetchMoreFilesSuccess,
		FolderID: req.FolderID,
		Files:    files,
		Skip:     req.Skip,
		Limit:    req.Limit,
	})
}

// sortedPage returns up to limit children: the directories following the
// loaded ones, then, if room is left, the files following the loaded ones.
func (d *Drive) sortedPage(ctx context.Context, folderID string, sort models.Sort, limit, loadedFolders, loadedFiles int) ([]models.FileEntry, error) {
	dirs, err := d.remote.FindFiles(ctx, remote.FindQuery{
		DirID: folderID,
		Type:  models.TypeDirectory,
		Sort:  sort,
		Skip:  loadedFolders,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find directories: %w", err)
	}
	if len(dirs) >= limit {
		return dirs[:limit], nil
	}

	files, err := d.remote.FindFiles(ctx, remote.FindQuery{
		DirID: folderID,
		Type:  models.TypeFile,
		Sort:  sort,
		Skip:  loadedFiles,
		Limit: limit - len(dirs),
	})
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	return append(dirs, files...), nil
}
