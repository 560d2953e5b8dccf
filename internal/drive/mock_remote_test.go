package drive

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/remote"
)

type mockRemote struct {
	mock.Mock
}

var _ Remote = (*mockRemote)(nil)

func (m *mockRemote) StatByID(ctx context.Context, id string) (*models.FileEntry, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.FileEntry)
	return f, args.Error(1)
}

func (m *mockRemote) ListFolder(ctx context.Context, id string, skip, limit int) (*remote.FolderContents, error) {
	args := m.Called(ctx, id, skip, limit)
	c, _ := args.Get(0).(*remote.FolderContents)
	return c, args.Error(1)
}

func (m *mockRemote) FindFiles(ctx context.Context, q remote.FindQuery) ([]models.FileEntry, error) {
	args := m.Called(ctx, q)
	files, _ := args.Get(0).([]models.FileEntry)
	return files, args.Error(1)
}

func (m *mockRemote) RecentFiles(ctx context.Context, limit int) ([]models.FileEntry, error) {
	args := m.Called(ctx, limit)
	files, _ := args.Get(0).([]models.FileEntry)
	return files, args.Error(1)
}

func (m *mockRemote) FilesByIDs(ctx context.Context, ids []string) (map[string]models.FileEntry, error) {
	args := m.Called(ctx, ids)
	files, _ := args.Get(0).(map[string]models.FileEntry)
	return files, args.Error(1)
}

func (m *mockRemote) CreateDirectory(ctx context.Context, dirID, name string) (*models.FileEntry, error) {
	args := m.Called(ctx, dirID, name)
	f, _ := args.Get(0).(*models.FileEntry)
	return f, args.Error(1)
}

func (m *mockRemote) UploadFile(ctx context.Context, dirID, name string, content io.Reader, opts remote.UploadOptions) (*models.FileEntry, error) {
	args := m.Called(ctx, dirID, name, content, opts)
	f, _ := args.Get(0).(*models.FileEntry)
	return f, args.Error(1)
}

func (m *mockRemote) TrashByID(ctx context.Context, id string) (*models.FileEntry, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.FileEntry)
	return f, args.Error(1)
}

func (m *mockRemote) RemoveReferencedFiles(ctx context.Context, ref models.Reference, ids ...string) error {
	return m.Called(ctx, ref, ids).Error(0)
}

func (m *mockRemote) RevokeSharingLink(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

func (m *mockRemote) DownloadByID(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(int64), args.Error(2)
}

func (m *mockRemote) GetArchiveLinkByPaths(ctx context.Context, name string, paths []string) (string, error) {
	args := m.Called(ctx, name, paths)
	return args.String(0), args.Error(1)
}

func (m *mockRemote) GetDownloadLinkByID(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockRemote) FetchLink(ctx context.Context, href string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, href)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(int64), args.Error(2)
}

func (m *mockRemote) FullURL(href string) string {
	return m.Called(href).String(0)
}
