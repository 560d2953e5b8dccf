package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/protocol"
)

// FolderContents is one page of a directory listing.
type FolderContents struct {
	Folder models.FileEntry
	Files  []models.FileEntry
	// Count is the total number of children reported by the server, or -1.
	Count int
}

// FindQuery selects the children of a directory of one type, sorted.
type FindQuery struct {
	DirID string
	Type  string
	Sort  models.Sort
	Skip  int
	Limit int
}

// UploadOptions carries optional metadata of an uploaded file.
type UploadOptions struct {
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

func filePath(id string) string {
	return "/files/" + url.PathEscape(id)
}

// StatByID returns the metadata of a file or directory. Concurrent calls for
// the same id share one request.
func (c *Client) StatByID(ctx context.Context, id string) (*models.FileEntry, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.stats.DoChan(id, func() (interface{}, error) {
		var resp protocol.FileResponse
		q := url.Values{"page[limit]": {"0"}}
		if err := c.sendJSON(shared, request{op: "stat", method: http.MethodGet, path: filePath(id), query: q}, nil, &resp); err != nil {
			return nil, err
		}
		entry := toEntry(resp.Data)
		return &entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		entry := *res.Val.(*models.FileEntry)
		return &entry, nil
	}
}

// ListFolder returns the directory and one page of its children.
func (c *Client) ListFolder(ctx context.Context, id string, skip, limit int) (*FolderContents, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("page[skip]", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("page[limit]", strconv.Itoa(limit))
	}
	var resp protocol.FileResponse
	if err := c.sendJSON(ctx, request{op: "list", method: http.MethodGet, path: filePath(id), query: q}, nil, &resp); err != nil {
		return nil, err
	}

	contents := &FolderContents{
		Folder: toEntry(resp.Data),
		Files:  toEntries(resp.Included),
		Count:  -1,
	}
	if resp.Meta.Count != nil {
		contents.Count = *resp.Meta.Count
	} else if rel := resp.Data.Relationships.Contents; rel != nil && rel.Meta != nil {
		contents.Count = rel.Meta.Count
	}
	return contents, nil
}

// FindFiles runs a sorted query over the children of a directory.
func (c *Client) FindFiles(ctx context.Context, q FindQuery) ([]models.FileEntry, error) {
	order := q.Sort.Order
	if order == "" {
		order = models.SortAsc
	}
	attr := q.Sort.Attribute
	if attr == "" {
		attr = models.SortByName
	}

	selector := map[string]interface{}{"dir_id": q.DirID}
	if q.Type != "" {
		selector["type"] = q.Type
	}
	selector[attr] = map[string]interface{}{"$gt": nil}

	body := protocol.FindRequest{
		Selector: selector,
		Sort: []map[string]string{
			{"dir_id": order},
			{"type": order},
			{attr: order},
		},
		Skip:  q.Skip,
		Limit: q.Limit,
	}
	var resp protocol.FileListResponse
	if err := c.sendJSON(ctx, request{op: "find", method: http.MethodPost, path: "/files/_find"}, body, &resp); err != nil {
		return nil, err
	}
	return toEntries(resp.Data), nil
}

// RecentFiles returns the most recently updated files, trashed ones excluded.
func (c *Client) RecentFiles(ctx context.Context, limit int) ([]models.FileEntry, error) {
	body := protocol.FindRequest{
		Selector: map[string]interface{}{
			"type":       models.TypeFile,
			"trashed":    false,
			"updated_at": map[string]interface{}{"$gt": nil},
		},
		Sort:  []map[string]string{{"updated_at": models.SortDesc}},
		Limit: limit,
	}
	var resp protocol.FileListResponse
	if err := c.sendJSON(ctx, request{op: "recent", method: http.MethodPost, path: "/files/_find"}, body, &resp); err != nil {
		return nil, err
	}
	return toEntries(resp.Data), nil
}

// FilesByIDs fetches several documents at once. Unknown ids are absent from
// the result.
func (c *Client) FilesByIDs(ctx context.Context, ids []string) (map[string]models.FileEntry, error) {
	out := make(map[string]models.FileEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var resp protocol.AllDocsResponse
	r := request{
		op:     "all_docs",
		method: http.MethodPost,
		path:   "/data/" + models.FilesDoctype + "/_all_docs",
		query:  url.Values{"include_docs": {"true"}},
	}
	if err := c.sendJSON(ctx, r, protocol.AllDocsRequest{Keys: ids}, &resp); err != nil {
		return nil, err
	}
	for _, row := range resp.Rows {
		if row.Doc == nil || row.Error != "" {
			continue
		}
		out[row.ID] = models.FileEntry{
			ID:        row.Doc.ID,
			Name:      row.Doc.Name,
			Type:      row.Doc.Type,
			DirID:     row.Doc.DirID,
			Path:      row.Doc.Path,
			CreatedAt: row.Doc.CreatedAt,
		}
	}
	return out, nil
}

// CreateDirectory creates name inside dirID. A 409 means the name is taken.
func (c *Client) CreateDirectory(ctx context.Context, dirID, name string) (*models.FileEntry, error) {
	q := url.Values{"Type": {models.TypeDirectory}, "Name": {name}}
	var resp protocol.FileResponse
	r := request{op: "mkdir", method: http.MethodPost, path: filePath(dirID), query: q, expect: []int{http.StatusCreated, http.StatusOK}}
	if err := c.sendJSON(ctx, r, nil, &resp); err != nil {
		return nil, err
	}
	entry := toEntry(resp.Data)
	return &entry, nil
}

// UploadFile streams content as a new file named name inside dirID.
// The body is only retried when content implements io.Seeker.
func (c *Client) UploadFile(ctx context.Context, dirID, name string, content io.Reader, opts UploadOptions) (*models.FileEntry, error) {
	q := url.Values{"Type": {models.TypeFile}, "Name": {name}}
	if !opts.CreatedAt.IsZero() {
		q.Set("CreatedAt", opts.CreatedAt.UTC().Format(time.RFC3339))
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.send(ctx, request{
		op:          "upload",
		method:      http.MethodPost,
		path:        filePath(dirID),
		query:       q,
		body:        content,
		contentType: contentType,
		length:      opts.Size,
		expect:      []int{http.StatusCreated, http.StatusOK},
		stream:      true,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc protocol.FileResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	entry := toEntry(doc.Data)
	return &entry, nil
}

// TrashByID moves a file or directory to the trash.
func (c *Client) TrashByID(ctx context.Context, id string) (*models.FileEntry, error) {
	var resp protocol.FileResponse
	if err := c.sendJSON(ctx, request{op: "trash", method: http.MethodDelete, path: filePath(id)}, nil, &resp); err != nil {
		return nil, err
	}
	entry := toEntry(resp.Data)
	return &entry, nil
}

// RemoveReferencedFiles drops the references from ref (an album) to the files.
func (c *Client) RemoveReferencedFiles(ctx context.Context, ref models.Reference, ids ...string) error {
	body := protocol.ReferencesRequest{}
	for _, id := range ids {
		body.Data = append(body.Data, protocol.ResourceIdentifier{Type: models.FilesDoctype, ID: id})
	}
	r := request{
		op:     "remove_references",
		method: http.MethodDelete,
		path:   "/data/" + url.PathEscape(ref.Type) + "/" + url.PathEscape(ref.ID) + "/relationships/references",
		expect: []int{http.StatusOK, http.StatusNoContent},
	}
	return c.sendJSON(ctx, r, body, nil)
}

// RevokeSharingLink deletes every share-by-link permission covering fileID.
func (c *Client) RevokeSharingLink(ctx context.Context, fileID string) error {
	var list protocol.PermissionListResponse
	r := request{op: "list_links", method: http.MethodGet, path: "/permissions/doctype/" + models.FilesDoctype + "/shared-by-link"}
	if err := c.sendJSON(ctx, r, nil, &list); err != nil {
		return err
	}
	for _, perm := range list.Data {
		if !coversFile(perm, fileID) {
			continue
		}
		del := request{
			op:     "revoke_link",
			method: http.MethodDelete,
			path:   "/permissions/" + url.PathEscape(perm.ID),
			expect: []int{http.StatusOK, http.StatusNoContent},
		}
		if err := c.sendJSON(ctx, del, nil, nil); err != nil {
			return fmt.Errorf("revoke link %s: %w", perm.ID, err)
		}
	}
	return nil
}

func coversFile(perm protocol.PermissionDocument, fileID string) bool {
	for _, rule := range perm.Attributes.Permissions {
		if rule.Type != models.FilesDoctype {
			continue
		}
		for _, v := range rule.Values {
			if v == fileID {
				return true
			}
		}
	}
	return false
}

// DownloadByID streams the content of a file. The caller closes the reader.
func (c *Client) DownloadByID(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	resp, err := c.send(ctx, request{op: "download", method: http.MethodGet, path: "/files/download/" + url.PathEscape(id), stream: true})
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// GetArchiveLinkByPaths asks the server for a zip of paths and returns its href.
func (c *Client) GetArchiveLinkByPaths(ctx context.Context, name string, paths []string) (string, error) {
	var body protocol.ArchiveRequest
	body.Data.Type = "io.cozy.archives"
	body.Data.Attributes = protocol.ArchiveAttributes{Name: name, Files: paths}

	var resp protocol.LinkResponse
	r := request{op: "archive", method: http.MethodPost, path: "/files/archive", expect: []int{http.StatusOK, http.StatusCreated}}
	if err := c.sendJSON(ctx, r, body, &resp); err != nil {
		return "", err
	}
	if resp.Links.Related == "" {
		return "", fmt.Errorf("archive response has no link")
	}
	return resp.Links.Related, nil
}

// GetDownloadLinkByID returns a short-lived href that downloads the file
// without authentication.
func (c *Client) GetDownloadLinkByID(ctx context.Context, id string) (string, error) {
	var resp protocol.LinkResponse
	r := request{
		op:     "download_link",
		method: http.MethodPost,
		path:   "/files/downloads",
		query:  url.Values{"Id": {id}},
		expect: []int{http.StatusOK, http.StatusCreated},
	}
	if err := c.sendJSON(ctx, r, nil, &resp); err != nil {
		return "", err
	}
	if resp.Links.Related == "" {
		return "", fmt.Errorf("download link response has no link")
	}
	return resp.Links.Related, nil
}

// FetchLink streams the content behind an href returned by the server.
func (c *Client) FetchLink(ctx context.Context, href string) (io.ReadCloser, int64, error) {
	resp, err := c.send(ctx, request{op: "fetch_link", method: http.MethodGet, path: href, stream: true})
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

func toEntries(docs []protocol.FileDocument) []models.FileEntry {
	entries := make([]models.FileEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, toEntry(doc))
	}
	return entries
}

func toEntry(doc protocol.FileDocument) models.FileEntry {
	a := doc.Attributes
	entry := models.FileEntry{
		ID:        doc.ID,
		Name:      a.Name,
		Type:      a.Type,
		DirID:     a.DirID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Path:      a.Path,
		Mime:      a.Mime,
		MD5Sum:    a.MD5Sum,
		Trashed:   a.Trashed,
	}
	if a.Size != "" {
		if n, err := strconv.ParseInt(a.Size, 10, 64); err == nil {
			entry.Size = n
		}
	}
	if rel := doc.Relationships.ReferencedBy; rel != nil {
		for _, ref := range rel.Data {
			entry.ReferencedBy = append(entry.ReferencedBy, models.Reference{Type: ref.Type, ID: ref.ID})
		}
	}
	return entry
}
