// Package notify defines the notifications emitted by drive operations and
// the bus that delivers them to the view state and other listeners.
package notify

import (
	"encoding/json"
	"time"

	"github.com/fruitsalade/drive/internal/models"
)

// Type identifies a notification.
type Type string

// Folder navigation.
const (
	OpenFolder        Type = "OPEN_FOLDER"
	OpenFolderSuccess Type = "OPEN_FOLDER_SUCCESS"
	OpenFolderFailure Type = "OPEN_FOLDER_FAILURE"

	SortFolder        Type = "SORT_FOLDER"
	SortFolderSuccess Type = "SORT_FOLDER_SUCCESS"
	SortFolderFailure Type = "SORT_FOLDER_FAILURE"

	FetchMoreFiles        Type = "FETCH_MORE_FILES"
	FetchMoreFilesSuccess Type = "FETCH_MORE_FILES_SUCCESS"
	FetchMoreFilesFailure Type = "FETCH_MORE_FILES_FAILURE"

	FetchRecent        Type = "FETCH_RECENT"
	FetchRecentSuccess Type = "FETCH_RECENT_SUCCESS"
	FetchRecentFailure Type = "FETCH_RECENT_FAILURE"
)

// Folder creation.
const (
	AddFolder                    Type = "ADD_FOLDER"
	AbortAddFolder               Type = "ABORT_ADD_FOLDER"
	CreateFolder                 Type = "CREATE_FOLDER"
	CreateFolderSuccess          Type = "CREATE_FOLDER_SUCCESS"
	CreateFolderFailureDuplicate Type = "CREATE_FOLDER_FAILURE_DUPLICATE"
	CreateFolderFailureGeneric   Type = "CREATE_FOLDER_FAILURE_GENERIC"
)

// Uploads, trash, downloads and offline availability.
const (
	UploadFileSuccess  Type = "UPLOAD_FILE_SUCCESS"
	UploadBatchSummary Type = "UPLOAD_BATCH_SUMMARY"

	TrashFiles        Type = "TRASH_FILES"
	TrashFilesSuccess Type = "TRASH_FILES_SUCCESS"
	TrashFilesFailure Type = "TRASH_FILES_FAILURE"

	DownloadSelection    Type = "DOWNLOAD_SELECTION"
	DownloadFile         Type = "DOWNLOAD_FILE"
	DownloadFileEMissing Type = "DOWNLOAD_FILE_E_MISSING"
	DownloadFileEOffline Type = "DOWNLOAD_FILE_E_OFFLINE"

	OpenFileWith     Type = "OPEN_FILE_WITH"
	OpenFileEOffline Type = "OPEN_FILE_E_OFFLINE"
	OpenFileENoApp   Type = "OPEN_FILE_E_NO_APP"

	MakeAvailableOffline     Type = "MAKE_AVAILABLE_OFFLINE"
	UndoMakeAvailableOffline Type = "UNDO_MAKE_AVAILABLE_OFFLINE"
)

// Local selection changes.
const (
	SelectFile     Type = "SELECT_FILE"
	UnselectFile   Type = "UNSELECT_FILE"
	ClearSelection Type = "CLEAR_SELECTION"
)

// Alert message keys. Alerts carry keys only; rendering is up to the UI.
const (
	AlertFolderName         = "alert.folder_name"
	AlertFolderGeneric      = "alert.folder_generic"
	AlertFolderAbort        = "alert.folder_abort"
	AlertTryAgain           = "alert.try_again"
	AlertTrashFileSuccess   = "alert.trash_file_success"
	AlertDownloadMissing    = "error.download_file.missing"
	AlertDownloadOffline    = "error.download_file.offline"
	AlertOpenNoApp          = "error.open_file.no_app"
	AlertUploadConflicts    = "upload.alert.success_conflicts"
	AlertUploadErrors       = "upload.alert.errors"
	AlertUploadSuccess      = "upload.alert.success"
	AlertDataFolderName     = "folderName"
	AlertDataSmartCount     = "smart_count"
	AlertDataConflictNumber = "conflictNumber"
)

// Level is the severity of an alert.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Alert is a user-facing message attached to a notification.
type Alert struct {
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"messageData,omitempty"`
	Level   Level                  `json:"level,omitempty"`
}

// Meta carries view side effects requested by an operation.
type Meta struct {
	CancelSelection bool `json:"cancelSelection,omitempty"`
	HideActionMenu  bool `json:"hideActionMenu,omitempty"`
}

// MetaDefaults is attached to actions on a selection: the selection is
// cleared and the action menu closed.
var MetaDefaults = Meta{CancelSelection: true, HideActionMenu: true}

// Notification describes a step of a drive operation.
type Notification struct {
	Type Type      `json:"type"`
	At   time.Time `json:"at"`

	FolderID string            `json:"folderId,omitempty"`
	Folder   *models.FileEntry `json:"folder,omitempty"`
	Parent   *models.FileEntry `json:"parent,omitempty"`

	Files     []models.FileEntry `json:"files,omitempty"`
	FileCount int                `json:"fileCount,omitempty"`
	Skip      int                `json:"skip,omitempty"`
	Limit     int                `json:"limit,omitempty"`
	Sort      *models.Sort       `json:"sort,omitempty"`

	Name             string `json:"name,omitempty"`
	TempID           string `json:"tempId,omitempty"`
	CurrentFileCount int    `json:"currentFileCount,omitempty"`
	Accidental       bool   `json:"accidental,omitempty"`

	IDs   []string             `json:"ids,omitempty"`
	File  *models.FileEntry    `json:"file,omitempty"`
	Task  *models.UploadTask   `json:"task,omitempty"`
	Tasks []*models.UploadTask `json:"tasks,omitempty"`

	Err   error  `json:"-"`
	Meta  Meta   `json:"meta"`
	Alert *Alert `json:"alert,omitempty"`
}

// Failed reports whether the notification ends an operation in failure.
func (n Notification) Failed() bool {
	switch n.Type {
	case OpenFolderFailure, SortFolderFailure, FetchMoreFilesFailure, FetchRecentFailure,
		CreateFolderFailureDuplicate, CreateFolderFailureGeneric, TrashFilesFailure,
		DownloadFileEMissing, DownloadFileEOffline, OpenFileEOffline, OpenFileENoApp:
		return true
	}
	return false
}

// MarshalJSON adds the error message, which error values do not serialize.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(n)}
	if n.Err != nil {
		out.Error = n.Err.Error()
	}
	return json.Marshal(out)
}

// NewAlert builds an alert with optional key/value data.
func NewAlert(message string, level Level, kv ...interface{}) *Alert {
	a := &Alert{Message: message, Level: level}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if a.Data == nil {
			a.Data = make(map[string]interface{})
		}
		a.Data[key] = kv[i+1]
	}
	return a
}
