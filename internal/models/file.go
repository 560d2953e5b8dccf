// Package models contains the client-side data types shared by the drive packages.
package models

import (
	"time"
)

// Well-known directory identifiers.
const (
	RootDirID  = "io.cozy.files.root-dir"
	TrashDirID = "io.cozy.files.trash-dir"
)

// Doctypes referenced by files.
const (
	FilesDoctype  = "io.cozy.files"
	AlbumsDoctype = "io.cozy.photos.albums"
)

// Entry types.
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
)

// Reference points at a document referencing a file (an album, for instance).
type Reference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// FileEntry represents a file or directory as known by the client.
type FileEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	DirID     string    `json:"dir_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Path      string    `json:"path,omitempty"`
	Size      int64     `json:"size,omitempty"`
	Mime      string    `json:"mime,omitempty"`
	MD5Sum    string    `json:"md5sum,omitempty"`
	Trashed   bool      `json:"trashed,omitempty"`

	// IsNew marks a placeholder folder that has not been created remotely yet.
	IsNew bool `json:"is_new,omitempty"`

	ReferencedBy []Reference `json:"referenced_by,omitempty"`
}

// IsDir returns true for directories.
func (f *FileEntry) IsDir() bool {
	return f.Type == TypeDirectory
}

// AlbumReferences returns the references pointing at albums.
func (f *FileEntry) AlbumReferences() []Reference {
	var refs []Reference
	for _, ref := range f.ReferencedBy {
		if ref.Type == AlbumsDoctype {
			refs = append(refs, ref)
		}
	}
	return refs
}

// IsReferencedByAlbum returns true if at least one album references the file.
func (f *FileEntry) IsReferencedByAlbum() bool {
	return len(f.AlbumReferences()) > 0
}
