package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// UploadStatus is the lifecycle status of an upload task.
type UploadStatus int

const (
	UploadPending UploadStatus = iota
	UploadSucceeded
	UploadConflicted
	UploadFailed
)

// String returns the status name.
func (s UploadStatus) String() string {
	switch s {
	case UploadPending:
		return "pending"
	case UploadSucceeded:
		return "succeeded"
	case UploadConflicted:
		return "conflicted"
	case UploadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final.
func (s UploadStatus) Terminal() bool {
	return s != UploadPending
}

// LocalFile is a local file handle queued for upload.
type LocalFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Open    func() (io.ReadCloser, error)
}

// ErrNoContent is returned when a LocalFile has no way to read its content.
var ErrNoContent = errors.New("local file has no content")

// Content opens the file for reading.
func (f LocalFile) Content() (io.ReadCloser, error) {
	if f.Open == nil {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrNoContent)
	}
	return f.Open()
}

// LocalFileFromPath builds a LocalFile for a file on disk.
func LocalFileFromPath(path string) (LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, err
	}
	if info.IsDir() {
		return LocalFile{}, fmt.Errorf("%s is a directory", path)
	}
	return LocalFile{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// UploadTask tracks one local file sent to a destination folder.
type UploadTask struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	DirID  string       `json:"dir_id"`
	Status UploadStatus `json:"status"`
	Err    error        `json:"-"`
	Result *FileEntry   `json:"result,omitempty"`

	File LocalFile `json:"-"`
}

// NewUploadTask creates a pending task for file.
func NewUploadTask(file LocalFile, dirID string) *UploadTask {
	return &UploadTask{
		ID:     uuid.New().String(),
		Name:   file.Name,
		DirID:  dirID,
		Status: UploadPending,
		File:   file,
	}
}
