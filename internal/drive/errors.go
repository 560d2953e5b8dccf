package drive

import (
	"errors"

	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/remote"
)

var (
	// ErrDuplicateName is returned when a folder with the requested name
	// already exists, locally or on the server.
	ErrDuplicateName = errors.New("a folder with this name already exists")
	// ErrInvalidName is returned for empty names or names containing a slash.
	ErrInvalidName = errors.New("invalid folder name")
	// ErrInvalidSort is returned for an unknown sort attribute or order.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrEmptySelection is returned when an operation gets no files.
	ErrEmptySelection = errors.New("no file selected")
)

// downloadFailure classifies a download error: a missing file is reported
// as such, anything else as the server being unreachable.
func downloadFailure(err error, meta notify.Meta) notify.Notification {
	if remote.IsNotFound(err) || errors.Is(err, ErrEmptySelection) {
		return notify.Notification{
			Type:  notify.DownloadFileEMissing,
			Err:   err,
			Meta:  meta,
			Alert: notify.NewAlert(notify.AlertDownloadMissing, notify.LevelError),
		}
	}
	return notify.Notification{
		Type:  notify.DownloadFileEOffline,
		Err:   err,
		Meta:  meta,
		Alert: notify.NewAlert(notify.AlertDownloadOffline, notify.LevelError),
	}
}

func noAppFailure(err error) notify.Notification {
	return notify.Notification{
		Type:  notify.OpenFileENoApp,
		Err:   err,
		Meta:  notify.MetaDefaults,
		Alert: notify.NewAlert(notify.AlertOpenNoApp, notify.LevelError),
	}
}
