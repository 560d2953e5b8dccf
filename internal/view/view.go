// Package view keeps the client-side state built from drive notifications.
package view

import (
	"strings"
	"sync"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
)

const maxAlerts = 20

// State is a snapshot of what the user sees.
type State struct {
	// OpenedFolderID is empty while recent files are shown.
	OpenedFolderID string
	Folder         *models.FileEntry
	Parent         *models.FileEntry
	Files          []models.FileEntry
	FileCount      int
	Sort           *models.Sort
	Recent         bool

	Selected         models.SelectionSet
	AvailableOffline map[string]struct{}

	Fetching  bool
	LastError error
	Alerts    []notify.Alert
}

// Reducer applies notifications to a State. It is safe for concurrent use.
type Reducer struct {
	mu    sync.RWMutex
	state State
}

var _ notify.Handler = (*Reducer)(nil)

// NewReducer creates a reducer with an empty state. availableOffline seeds
// the set of files known to be available offline.
func NewReducer(availableOffline ...string) *Reducer {
	r := &Reducer{}
	r.state.Selected = models.NewSelectionSet()
	r.state.AvailableOffline = make(map[string]struct{}, len(availableOffline))
	for _, id := range availableOffline {
		r.state.AvailableOffline[id] = struct{}{}
	}
	return r
}

// State returns a copy of the current state.
func (r *Reducer) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := r.state
	s.Files = append([]models.FileEntry(nil), r.state.Files...)
	s.Selected = r.state.Selected.Clone()
	s.AvailableOffline = make(map[string]struct{}, len(r.state.AvailableOffline))
	for id := range r.state.AvailableOffline {
		s.AvailableOffline[id] = struct{}{}
	}
	s.Alerts = append([]notify.Alert(nil), r.state.Alerts...)
	return s
}

// FolderView returns the opened folder, or nil when none is open.
func (r *Reducer) FolderView() *models.FolderView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state.Folder == nil || r.state.Recent {
		return nil
	}
	v := &models.FolderView{
		Folder:   *r.state.Folder,
		Parent:   r.state.Parent,
		Children: append([]models.FileEntry(nil), r.state.Files...),
		Count:    r.state.FileCount,
	}
	if r.state.Sort != nil {
		sort := *r.state.Sort
		v.Sort = &sort
	}
	return v
}

// Selection returns the selected entries, in listing order.
func (r *Reducer) Selection() []models.FileEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.FileEntry
	for _, f := range r.state.Files {
		if r.state.Selected.Has(f.ID) {
			out = append(out, f)
		}
	}
	return out
}

// IsAvailableOffline reports whether fileID is available offline.
func (r *Reducer) IsAvailableOffline(fileID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.state.AvailableOffline[fileID]
	return ok
}

// DrainAlerts returns the pending alerts and forgets them.
func (r *Reducer) DrainAlerts() []notify.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	alerts := r.state.Alerts
	r.state.Alerts = nil
	return alerts
}

// Handle implements notify.Handler.
func (r *Reducer) Handle(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &r.state
	if n.Meta.CancelSelection {
		s.Selected.Clear()
	}
	if n.Alert != nil {
		s.Alerts = append(s.Alerts, *n.Alert)
		if len(s.Alerts) > maxAlerts {
			s.Alerts = s.Alerts[len(s.Alerts)-maxAlerts:]
		}
	}
	if n.Failed() {
		s.Fetching = false
		s.LastError = n.Err
		return
	}

	switch n.Type {
	case notify.OpenFolder, notify.FetchRecent, notify.SortFolder, notify.FetchMoreFiles:
		s.Fetching = true

	case notify.OpenFolderSuccess:
		s.OpenedFolderID = n.FolderID
		s.Folder, s.Parent = n.Folder, n.Parent
		s.Files = append([]models.FileEntry(nil), n.Files...)
		s.FileCount = n.FileCount
		s.Sort = nil
		s.Recent = false
		r.settled()

	case notify.FetchRecentSuccess:
		s.OpenedFolderID = ""
		s.Folder, s.Parent = nil, nil
		s.Files = append([]models.FileEntry(nil), n.Files...)
		s.FileCount = n.FileCount
		s.Sort = nil
		s.Recent = true
		r.settled()

	case notify.SortFolderSuccess:
		if n.FolderID != s.OpenedFolderID {
			break
		}
		s.Files = append([]models.FileEntry(nil), n.Files...)
		s.Sort = n.Sort
		r.settled()

	case notify.FetchMoreFilesSuccess:
		if n.FolderID != s.OpenedFolderID {
			break
		}
		cut := pageCut(s.Files, n.Skip)
		s.Files = append(s.Files[:cut:cut], n.Files...)
		r.settled()

	case notify.AddFolder:
		if n.File != nil {
			s.Files = append([]models.FileEntry{*n.File}, s.Files...)
		}

	case notify.AbortAddFolder:
		s.Files = removeIDs(s.Files, n.TempID)

	case notify.CreateFolderSuccess:
		if n.Folder == nil {
			break
		}
		if i := indexOf(s.Files, n.TempID); i >= 0 {
			s.Files[i] = *n.Folder
			s.FileCount++
		} else if n.FolderID == s.OpenedFolderID && !s.Recent && indexOf(s.Files, n.Folder.ID) < 0 {
			s.Files = insertEntry(s.Files, *n.Folder, s.Sort)
			s.FileCount++
		}

	case notify.TrashFilesSuccess:
		before := len(s.Files)
		s.Files = removeIDs(s.Files, n.IDs...)
		s.FileCount -= before - len(s.Files)
		if s.FileCount < 0 {
			s.FileCount = 0
		}
		for _, id := range n.IDs {
			s.Selected.Remove(id)
		}

	case notify.UploadFileSuccess:
		if n.File == nil || s.Recent || n.FolderID != s.OpenedFolderID || indexOf(s.Files, n.File.ID) >= 0 {
			break
		}
		s.Files = insertEntry(s.Files, *n.File, s.Sort)
		s.FileCount++

	case notify.SelectFile:
		for _, id := range n.IDs {
			s.Selected.Add(id)
		}
	case notify.UnselectFile:
		for _, id := range n.IDs {
			s.Selected.Remove(id)
		}
	case notify.ClearSelection:
		s.Selected.Clear()

	case notify.MakeAvailableOffline:
		for _, id := range n.IDs {
			s.AvailableOffline[id] = struct{}{}
		}
	case notify.UndoMakeAvailableOffline:
		for _, id := range n.IDs {
			delete(s.AvailableOffline, id)
		}
	}
}

func (r *Reducer) settled() {
	r.state.Fetching = false
	r.state.LastError = nil
}

func indexOf(files []models.FileEntry, id string) int {
	if id == "" {
		return -1
	}
	for i := range files {
		if files[i].ID == id {
			return i
		}
	}
	return -1
}

// pageCut returns the index just past the first skip loaded entries.
// Placeholders are not counted, matching how pages are requested.
func pageCut(files []models.FileEntry, skip int) int {
	i, loaded := 0, 0
	for i < len(files) && loaded < skip {
		if !files[i].IsNew {
			loaded++
		}
		i++
	}
	return i
}

func removeIDs(files []models.FileEntry, ids ...string) []models.FileEntry {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := files[:0]
	for _, f := range files {
		if _, ok := drop[f.ID]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// insertEntry places e before the first entry it sorts before. Directories
// come first; within a kind, entries follow sort, or name order when sort
// is nil.
func insertEntry(files []models.FileEntry, e models.FileEntry, sort *models.Sort) []models.FileEntry {
	i := 0
	for ; i < len(files); i++ {
		if files[i].IsNew {
			continue
		}
		if before(&e, &files[i], sort) {
			break
		}
	}
	files = append(files, models.FileEntry{})
	copy(files[i+1:], files[i:])
	files[i] = e
	return files
}

func before(a, b *models.FileEntry, sort *models.Sort) bool {
	if a.IsDir() != b.IsDir() {
		return a.IsDir()
	}
	attr, desc := models.SortByName, false
	if sort != nil {
		attr, desc = sort.Attribute, sort.Desc()
	}

	var less, greater bool
	switch attr {
	case models.SortBySize:
		less, greater = a.Size < b.Size, a.Size > b.Size
	case models.SortByUpdatedAt:
		less, greater = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.After(b.UpdatedAt)
	default:
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		less, greater = an < bn, an > bn
	}
	if desc {
		return greater
	}
	return less
}
