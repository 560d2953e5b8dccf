package models

import "sort"

// Sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Sort attributes supported by the file listing.
const (
	SortByName      = "name"
	SortByUpdatedAt = "updated_at"
	SortBySize      = "size"
)

// Sort describes the active sort of a folder listing.
type Sort struct {
	Attribute string `json:"attribute"`
	Order     string `json:"order"`
}

// Desc returns true for descending orders.
func (s Sort) Desc() bool {
	return s.Order == SortDesc
}

// ValidSortAttribute reports whether attr can be used to sort a listing.
func ValidSortAttribute(attr string) bool {
	switch attr {
	case SortByName, SortByUpdatedAt, SortBySize:
		return true
	}
	return false
}

// FolderView is the currently displayed folder.
type FolderView struct {
	Folder   FileEntry   `json:"folder"`
	Parent   *FileEntry  `json:"parent,omitempty"`
	Children []FileEntry `json:"children"`
	// Count is the total number of children when the server reports it.
	Count int   `json:"count"`
	Sort  *Sort `json:"sort,omitempty"`
}

// LoadedFolders counts the loaded directory children, placeholders excluded.
func (v *FolderView) LoadedFolders() int {
	n := 0
	for i := range v.Children {
		if v.Children[i].IsDir() && !v.Children[i].IsNew {
			n++
		}
	}
	return n
}

// LoadedFiles counts the loaded non-directory children.
func (v *FolderView) LoadedFiles() int {
	n := 0
	for i := range v.Children {
		if !v.Children[i].IsDir() {
			n++
		}
	}
	return n
}

// FindDirectory returns the loaded directory named name, ignoring the entry
// with id exceptID. The comparison is case-sensitive.
func (v *FolderView) FindDirectory(name, exceptID string) *FileEntry {
	for i := range v.Children {
		c := &v.Children[i]
		if c.ID == exceptID || !c.IsDir() {
			continue
		}
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindByID returns the loaded child with the given id.
func (v *FolderView) FindByID(id string) *FileEntry {
	for i := range v.Children {
		if v.Children[i].ID == id {
			return &v.Children[i]
		}
	}
	return nil
}

// SelectionSet is the set of selected file ids.
type SelectionSet map[string]struct{}

// NewSelectionSet creates a selection holding ids.
func NewSelectionSet(ids ...string) SelectionSet {
	s := make(SelectionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add selects id.
func (s SelectionSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove unselects id.
func (s SelectionSet) Remove(id string) {
	delete(s, id)
}

// Toggle flips the selection of id and returns the new state.
func (s SelectionSet) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// Has reports whether id is selected.
func (s SelectionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clear empties the selection.
func (s SelectionSet) Clear() {
	for id := range s {
		delete(s, id)
	}
}

// Len returns the number of selected ids.
func (s SelectionSet) Len() int {
	return len(s)
}

// IDs returns the selected ids in lexical order.
func (s SelectionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (s SelectionSet) Clone() SelectionSet {
	c := make(SelectionSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
