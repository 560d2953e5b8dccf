// Package protocol defines the JSON request/response types of the file API.
package protocol

import (
	"time"
)

// ErrorObject is a single entry of a JSON:API error response.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Source struct {
		Parameter string `json:"parameter,omitempty"`
	} `json:"source,omitempty"`
}

// ErrorResponse is returned on API errors.
type ErrorResponse struct {
	Errors []ErrorObject `json:"errors"`
}

// ResourceIdentifier is a {type, id} pair used in relationships.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship holds the identifiers of a to-many relationship.
type Relationship struct {
	Data []ResourceIdentifier `json:"data"`
	Meta *struct {
		Count int `json:"count"`
	} `json:"meta,omitempty"`
}

// FileAttributes are the attributes of an io.cozy.files document.
type FileAttributes struct {
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	DirID     string    `json:"dir_id"`
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Size      string    `json:"size,omitempty"`
	MD5Sum    string    `json:"md5sum,omitempty"`
	Mime      string    `json:"mime,omitempty"`
	Trashed   bool      `json:"trashed,omitempty"`
}

// FileRelationships are the relationships of an io.cozy.files document.
type FileRelationships struct {
	Contents     *Relationship `json:"contents,omitempty"`
	ReferencedBy *Relationship `json:"referenced_by,omitempty"`
}

// FileDocument is an io.cozy.files resource object.
type FileDocument struct {
	Type          string            `json:"type"`
	ID            string            `json:"id"`
	Attributes    FileAttributes    `json:"attributes"`
	Relationships FileRelationships `json:"relationships"`
}

// Links holds pagination and related links.
type Links struct {
	Self    string `json:"self,omitempty"`
	Next    string `json:"next,omitempty"`
	Related string `json:"related,omitempty"`
}

// CountMeta carries the total number of items when known.
type CountMeta struct {
	Count *int `json:"count,omitempty"`
}

// FileResponse is returned by GET /files/{id}, POST /files/{dirID} and
// DELETE /files/{id}. For directories, the children of the requested page are
// in Included and the total child count in Meta.
type FileResponse struct {
	Data     FileDocument   `json:"data"`
	Included []FileDocument `json:"included,omitempty"`
	Meta     CountMeta      `json:"meta"`
	Links    Links          `json:"links"`
}

// FileListResponse is returned by POST /files/_find.
type FileListResponse struct {
	Data  []FileDocument `json:"data"`
	Meta  CountMeta      `json:"meta"`
	Links Links          `json:"links"`
}

// FindRequest is the body for POST /files/_find (mango query).
type FindRequest struct {
	Selector map[string]interface{} `json:"selector"`
	Sort     []map[string]string    `json:"sort,omitempty"`
	Skip     int                    `json:"skip,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
}

// AllDocsRequest is the body for POST /data/{doctype}/_all_docs.
type AllDocsRequest struct {
	Keys []string `json:"keys"`
}

// AllDocsRow is one row of an _all_docs response. Doc is absent for unknown keys.
type AllDocsRow struct {
	ID    string          `json:"id"`
	Key   string          `json:"key"`
	Error string          `json:"error,omitempty"`
	Doc   *AllDocsFileDoc `json:"doc,omitempty"`
}

// AllDocsFileDoc is the raw CouchDB representation of a file document.
type AllDocsFileDoc struct {
	ID        string    `json:"_id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	DirID     string    `json:"dir_id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// AllDocsResponse is returned by POST /data/{doctype}/_all_docs.
type AllDocsResponse struct {
	TotalRows int          `json:"total_rows"`
	Rows      []AllDocsRow `json:"rows"`
}

// ReferencesRequest is the body for DELETE /data/{doctype}/{id}/relationships/references.
type ReferencesRequest struct {
	Data []ResourceIdentifier `json:"data"`
}

// ArchiveAttributes names the archive and the paths it bundles.
type ArchiveAttributes struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// ArchiveRequest is the body for POST /files/archive.
type ArchiveRequest struct {
	Data struct {
		Type       string            `json:"type"`
		Attributes ArchiveAttributes `json:"attributes"`
	} `json:"data"`
}

// LinkResponse is returned by POST /files/archive and POST /files/downloads.
type LinkResponse struct {
	Links Links `json:"links"`
}

// PermissionDocument is an io.cozy.permissions resource (a sharing link).
type PermissionDocument struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Type        string                    `json:"type"`
		SourceID    string                    `json:"source_id,omitempty"`
		Permissions map[string]PermissionRule `json:"permissions"`
	} `json:"attributes"`
}

// PermissionRule is one rule of a permission set.
type PermissionRule struct {
	Type   string   `json:"type"`
	Verbs  []string `json:"verbs,omitempty"`
	Values []string `json:"values,omitempty"`
}

// PermissionListResponse is returned by GET /permissions/doctype/{doctype}/shared-by-link.
type PermissionListResponse struct {
	Data []PermissionDocument `json:"data"`
}

// LoginRequest is the body for POST /auth/token.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// TokenResponse is returned by POST /auth/token and POST /auth/token/refresh.
// ExpiresAt may be omitted by servers that only encode it in the JWT.
type TokenResponse struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
