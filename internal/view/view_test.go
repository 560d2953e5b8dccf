package view

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
)

func dir(id, name string) models.FileEntry {
	return models.FileEntry{ID: id, Name: name, Type: models.TypeDirectory, DirID: "f1"}
}

func file(id, name string) models.FileEntry {
	return models.FileEntry{ID: id, Name: name, Type: models.TypeFile, DirID: "f1"}
}

func opened(t *testing.T) *Reducer {
	t.Helper()
	r := NewReducer()
	folder := models.FileEntry{ID: "f1", Name: "Docs", Type: models.TypeDirectory}
	r.Handle(notify.Notification{Type: notify.OpenFolder, FolderID: "f1", Meta: notify.Meta{CancelSelection: true}})
	r.Handle(notify.Notification{
		Type:      notify.OpenFolderSuccess,
		FolderID:  "f1",
		Folder:    &folder,
		Files:     []models.FileEntry{dir("d1", "Bills"), file("a", "alpha.txt"), file("c", "gamma.txt")},
		FileCount: 5,
	})
	return r
}

func ids(files []models.FileEntry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.ID
	}
	return out
}

func TestOpenFolderReplacesState(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	s := r.State()
	is.Equal(s.OpenedFolderID, "f1")
	is.Equal(ids(s.Files), []string{"d1", "a", "c"})
	is.Equal(s.FileCount, 5)
	is.True(!s.Fetching)

	v := r.FolderView()
	is.Equal(v.Folder.ID, "f1")
	is.Equal(v.Count, 5)
	is.Equal(v.LoadedFolders(), 1)
	is.Equal(v.LoadedFiles(), 2)
}

func TestFailureKeepsPreviousState(t *testing.T) {
	is := is.New(t)
	r := opened(t)
	before := r.State()

	r.Handle(notify.Notification{Type: notify.OpenFolder, FolderID: "f2"})
	r.Handle(notify.Notification{Type: notify.OpenFolderFailure, FolderID: "f2", Err: errors.New("offline")})

	s := r.State()
	is.Equal(s.OpenedFolderID, before.OpenedFolderID)
	is.Equal(ids(s.Files), ids(before.Files))
	is.True(s.LastError != nil)
	is.True(!s.Fetching)
}

func TestFetchMoreConcatenatesAtSkip(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	r.Handle(notify.Notification{Type: notify.FetchMoreFilesSuccess, FolderID: "f1", Skip: 3, Files: []models.FileEntry{file("e", "e")}})
	is.Equal(ids(r.State().Files), []string{"d1", "a", "c", "e"})

	// A replayed page overwrites instead of duplicating.
	r.Handle(notify.Notification{Type: notify.FetchMoreFilesSuccess, FolderID: "f1", Skip: 3, Files: []models.FileEntry{file("e", "e")}})
	is.Equal(ids(r.State().Files), []string{"d1", "a", "c", "e"})

	// Pages of another folder are ignored.
	r.Handle(notify.Notification{Type: notify.FetchMoreFilesSuccess, FolderID: "other", Skip: 0, Files: []models.FileEntry{file("z", "z")}})
	is.Equal(len(r.State().Files), 4)
}

func TestSortReplacesFiles(t *testing.T) {
	is := is.New(t)
	r := opened(t)
	sort := models.Sort{Attribute: models.SortByName, Order: models.SortDesc}

	r.Handle(notify.Notification{Type: notify.SortFolderSuccess, FolderID: "f1", Sort: &sort,
		Files: []models.FileEntry{dir("d1", "Bills"), file("c", "gamma.txt"), file("a", "alpha.txt")}})

	s := r.State()
	is.Equal(ids(s.Files), []string{"d1", "c", "a"})
	is.Equal(*s.Sort, sort)
	is.Equal(*r.FolderView().Sort, sort)
}

func TestCreateFolderReplacesPlaceholder(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	placeholder := models.FileEntry{ID: "tmp", Type: models.TypeDirectory, IsNew: true}
	r.Handle(notify.Notification{Type: notify.AddFolder, TempID: "tmp", File: &placeholder})
	is.Equal(ids(r.State().Files)[0], "tmp")

	created := dir("d2", "Taxes")
	r.Handle(notify.Notification{Type: notify.CreateFolderSuccess, FolderID: "f1", TempID: "tmp", Folder: &created})

	s := r.State()
	is.Equal(ids(s.Files), []string{"d2", "d1", "a", "c"})
	is.Equal(s.FileCount, 6)
}

func TestAbortAddFolder(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	placeholder := models.FileEntry{ID: "tmp", Type: models.TypeDirectory, IsNew: true}
	r.Handle(notify.Notification{Type: notify.AddFolder, TempID: "tmp", File: &placeholder})
	r.Handle(notify.Notification{Type: notify.AbortAddFolder, TempID: "tmp", Accidental: true,
		Alert: notify.NewAlert(notify.AlertFolderAbort, notify.LevelInfo)})

	is.Equal(ids(r.State().Files), []string{"d1", "a", "c"})
	alerts := r.DrainAlerts()
	is.Equal(len(alerts), 1)
	is.Equal(alerts[0].Message, notify.AlertFolderAbort)
	is.Equal(len(r.DrainAlerts()), 0)
}

func TestTrashRemovesIDsAndSelection(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	r.Handle(notify.Notification{Type: notify.SelectFile, IDs: []string{"a"}})
	r.Handle(notify.Notification{Type: notify.SelectFile, IDs: []string{"c"}})
	is.Equal(len(r.Selection()), 2)

	r.Handle(notify.Notification{Type: notify.TrashFilesSuccess, IDs: []string{"a"}})

	s := r.State()
	is.Equal(ids(s.Files), []string{"d1", "c"})
	is.Equal(s.FileCount, 4)
	is.True(!s.Selected.Has("a"))
	is.True(s.Selected.Has("c"))
}

func TestCancelSelectionMeta(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	r.Handle(notify.Notification{Type: notify.SelectFile, IDs: []string{"a"}})
	r.Handle(notify.Notification{Type: notify.TrashFiles, Meta: notify.MetaDefaults})

	is.Equal(r.State().Selected.Len(), 0)
}

func TestUploadInsertsInOrder(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	up := file("b", "beta.txt")
	r.Handle(notify.Notification{Type: notify.UploadFileSuccess, FolderID: "f1", File: &up})
	is.Equal(ids(r.State().Files), []string{"d1", "a", "b", "c"})
	is.Equal(r.State().FileCount, 6)

	// Uploads into another folder do not show up.
	other := models.FileEntry{ID: "x", Name: "x", Type: models.TypeFile, DirID: "f9"}
	r.Handle(notify.Notification{Type: notify.UploadFileSuccess, FolderID: "f9", File: &other})
	is.Equal(len(r.State().Files), 4)

	// Duplicates are ignored.
	r.Handle(notify.Notification{Type: notify.UploadFileSuccess, FolderID: "f1", File: &up})
	is.Equal(r.State().FileCount, 6)
}

func TestUploadInsertsDescending(t *testing.T) {
	is := is.New(t)
	r := opened(t)
	sort := models.Sort{Attribute: models.SortByName, Order: models.SortDesc}
	r.Handle(notify.Notification{Type: notify.SortFolderSuccess, FolderID: "f1", Sort: &sort,
		Files: []models.FileEntry{dir("d1", "Bills"), file("c", "gamma.txt"), file("a", "alpha.txt")}})

	up := file("b", "beta.txt")
	r.Handle(notify.Notification{Type: notify.UploadFileSuccess, FolderID: "f1", File: &up})
	is.Equal(ids(r.State().Files), []string{"d1", "c", "b", "a"})
}

func TestRecentFiles(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	r.Handle(notify.Notification{Type: notify.FetchRecentSuccess, Files: []models.FileEntry{file("a", "alpha.txt")}, FileCount: 1})

	s := r.State()
	is.True(s.Recent)
	is.Equal(s.OpenedFolderID, "")
	is.True(r.FolderView() == nil)
}

func TestAvailableOffline(t *testing.T) {
	is := is.New(t)
	r := NewReducer("seed")
	is.True(r.IsAvailableOffline("seed"))

	r.Handle(notify.Notification{Type: notify.MakeAvailableOffline, IDs: []string{"a"}})
	r.Handle(notify.Notification{Type: notify.MakeAvailableOffline, IDs: []string{"a"}})
	is.True(r.IsAvailableOffline("a"))

	r.Handle(notify.Notification{Type: notify.UndoMakeAvailableOffline, IDs: []string{"a"}})
	is.True(!r.IsAvailableOffline("a"))
}

func TestStateIsACopy(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	s := r.State()
	s.Files[0].Name = "changed"
	s.Selected.Add("a")

	is.Equal(r.State().Files[0].Name, "Bills")
	is.True(!r.State().Selected.Has("a"))
}

func TestFetchMoreKeepsEntriesAfterPlaceholder(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	placeholder := models.FileEntry{ID: "tmp", Type: models.TypeDirectory, IsNew: true}
	r.Handle(notify.Notification{Type: notify.AddFolder, TempID: "tmp", File: &placeholder})

	v := r.FolderView()
	skip := v.LoadedFolders() + v.LoadedFiles()
	is.Equal(skip, 3)

	r.Handle(notify.Notification{Type: notify.FetchMoreFilesSuccess, FolderID: "f1", Skip: skip, Files: []models.FileEntry{file("e", "e")}})
	is.Equal(ids(r.State().Files), []string{"tmp", "d1", "a", "c", "e"})
}

func TestCreateFolderElsewhereKeepsCount(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	created := models.FileEntry{ID: "d9", Name: "Elsewhere", Type: models.TypeDirectory, DirID: "other"}
	r.Handle(notify.Notification{Type: notify.CreateFolderSuccess, FolderID: "other", Folder: &created})

	s := r.State()
	is.Equal(ids(s.Files), []string{"d1", "a", "c"})
	is.Equal(s.FileCount, 5)
}

func TestCreateFolderWithoutPlaceholderInserts(t *testing.T) {
	is := is.New(t)
	r := opened(t)

	created := dir("d2", "Archive")
	r.Handle(notify.Notification{Type: notify.CreateFolderSuccess, FolderID: "f1", Folder: &created})
	r.Handle(notify.Notification{Type: notify.CreateFolderSuccess, FolderID: "f1", Folder: &created})

	s := r.State()
	is.Equal(ids(s.Files), []string{"d2", "d1", "a", "c"})
	is.Equal(s.FileCount, 6)
}
