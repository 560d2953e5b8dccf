package models

import (
	"reflect"
	"testing"
)

func testView() FolderView {
	return FolderView{
		Folder: FileEntry{ID: "parent", Type: TypeDirectory},
		Children: []FileEntry{
			{ID: "d1", Name: "Photos", Type: TypeDirectory, DirID: "parent"},
			{ID: "d2", Name: "Docs", Type: TypeDirectory, DirID: "parent"},
			{ID: "tmp", Name: "", Type: TypeDirectory, DirID: "parent", IsNew: true},
			{ID: "f1", Name: "photos", Type: TypeFile, DirID: "parent"},
		},
	}
}

func TestFolderView_LoadedCounts(t *testing.T) {
	v := testView()
	if got := v.LoadedFolders(); got != 2 {
		t.Errorf("LoadedFolders = %d, want 2", got)
	}
	if got := v.LoadedFiles(); got != 1 {
		t.Errorf("LoadedFiles = %d, want 1", got)
	}
}

func TestFolderView_FindDirectory(t *testing.T) {
	v := testView()

	if d := v.FindDirectory("Photos", ""); d == nil || d.ID != "d1" {
		t.Fatalf("expected d1, got %+v", d)
	}
	// Case-sensitive: "photos" is a file, "Photos" the directory.
	if d := v.FindDirectory("photos", ""); d != nil {
		t.Errorf("expected no directory named photos, got %s", d.ID)
	}
	if d := v.FindDirectory("Photos", "d1"); d != nil {
		t.Errorf("excluded id should not match, got %s", d.ID)
	}
}

func TestSelectionSet(t *testing.T) {
	s := NewSelectionSet("b", "a")
	if !s.Has("a") || !s.Has("b") {
		t.Fatal("expected a and b selected")
	}
	if on := s.Toggle("a"); on {
		t.Error("toggle of selected id should unselect")
	}
	if on := s.Toggle("c"); !on {
		t.Error("toggle of unselected id should select")
	}
	if got, want := s.IDs(), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}

	c := s.Clone()
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty selection, got %d", s.Len())
	}
	if c.Len() != 2 {
		t.Errorf("clone should be independent, got %d", c.Len())
	}
}

func TestFileEntry_AlbumReferences(t *testing.T) {
	f := FileEntry{
		ID: "f",
		ReferencedBy: []Reference{
			{Type: AlbumsDoctype, ID: "album1"},
			{Type: "io.cozy.contacts", ID: "c1"},
			{Type: AlbumsDoctype, ID: "album2"},
		},
	}
	refs := f.AlbumReferences()
	if len(refs) != 2 || refs[0].ID != "album1" || refs[1].ID != "album2" {
		t.Errorf("unexpected album refs: %+v", refs)
	}
	if !f.IsReferencedByAlbum() {
		t.Error("expected file to be referenced by an album")
	}
	if (&FileEntry{}).IsReferencedByAlbum() {
		t.Error("empty entry should not be referenced")
	}
}
