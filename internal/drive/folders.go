package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/remote"
)

// AddFolder inserts a local placeholder directory the user can name.
// The placeholder id is passed back to CreateFolder or AbortAddFolder.
func (d *Drive) AddFolder(dirID string) notify.Notification {
	placeholder := models.FileEntry{
		ID:        uuid.New().String(),
		Type:      models.TypeDirectory,
		DirID:     dirID,
		CreatedAt: time.Now(),
		IsNew:     true,
	}
	return d.emit(notify.Notification{
		Type:   notify.AddFolder,
		TempID: placeholder.ID,
		File:   &placeholder,
	})
}

// AbortAddFolder drops the placeholder. An accidental abort, such as the
// name field losing focus, is reported with an alert.
func (d *Drive) AbortAddFolder(tempID string, accidental bool) notify.Notification {
	n := notify.Notification{
		Type:       notify.AbortAddFolder,
		TempID:     tempID,
		Accidental: accidental,
	}
	if accidental {
		n.Alert = notify.NewAlert(notify.AlertFolderAbort, notify.LevelInfo)
	}
	return d.emit(n)
}

// CreateFolder creates a directory named name in the folder shown by view.
// A name matching a loaded directory is rejected without contacting the
// server; a conflict reported by the server is treated the same way.
func (d *Drive) CreateFolder(ctx context.Context, view *models.FolderView, name, tempID string) (notify.Notification, error) {
	ctx, log := d.begin(ctx, "create_folder")
	name = strings.TrimSpace(name)

	if name == "" || strings.Contains(name, "/") {
		err := fmt.Errorf("%w: %q", ErrInvalidName, name)
		return d.fail(log, notify.Notification{
			Type:   notify.CreateFolderFailureGeneric,
			Name:   name,
			TempID: tempID,
			Err:    err,
			Alert:  notify.NewAlert(notify.AlertFolderGeneric, notify.LevelError),
		}), err
	}

	if view.FindDirectory(name, tempID) != nil {
		err := fmt.Errorf("%w: %s", ErrDuplicateName, name)
		return d.fail(log, duplicateFolder(name, tempID, err)), err
	}

	d.emit(notify.Notification{
		Type:     notify.CreateFolder,
		FolderID: view.Folder.ID,
		Name:     name,
		TempID:   tempID,
	})

	folder, err := d.remote.CreateDirectory(ctx, view.Folder.ID, name)
	if err != nil {
		if remote.IsConflict(err) {
			err = fmt.Errorf("%w: %w", ErrDuplicateName, err)
			return d.fail(log, duplicateFolder(name, tempID, err)), err
		}
		return d.fail(log, notify.Notification{
			Type:   notify.CreateFolderFailureGeneric,
			Name:   name,
			TempID: tempID,
			Err:    err,
			Alert:  notify.NewAlert(notify.AlertFolderGeneric, notify.LevelError),
		}), err
	}

	log.Info("folder created", zap.String("id", folder.ID), zap.String("name", folder.Name))
	return d.emit(notify.Notification{
		Type:             notify.CreateFolderSuccess,
		FolderID:         view.Folder.ID,
		Folder:           folder,
		TempID:           tempID,
		CurrentFileCount: view.Count,
		Sort:             view.Sort,
	}), nil
}

func duplicateFolder(name, tempID string, err error) notify.Notification {
	return notify.Notification{
		Type:   notify.CreateFolderFailureDuplicate,
		Name:   name,
		TempID: tempID,
		Err:    err,
		Alert:  notify.NewAlert(notify.AlertFolderName, notify.LevelError, notify.AlertDataFolderName, name),
	}
}
