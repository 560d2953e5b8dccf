package drive

import "github.com/fruitsalade/drive/internal/notify"

// SelectFile adds a file to the selection.
func (d *Drive) SelectFile(id string) notify.Notification {
	return d.emit(notify.Notification{Type: notify.SelectFile, IDs: []string{id}})
}

// UnselectFile removes a file from the selection.
func (d *Drive) UnselectFile(id string) notify.Notification {
	return d.emit(notify.Notification{Type: notify.UnselectFile, IDs: []string{id}})
}

// ClearSelection empties the selection.
func (d *Drive) ClearSelection() notify.Notification {
	return d.emit(notify.Notification{
		Type: notify.ClearSelection,
		Meta: notify.Meta{CancelSelection: true},
	})
}
