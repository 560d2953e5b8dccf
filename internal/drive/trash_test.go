package drive

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/mock"

	"github.com/fruitsalade/drive/internal/models"
	"github.com/fruitsalade/drive/internal/notify"
	"github.com/fruitsalade/drive/internal/protocol"
	"github.com/fruitsalade/drive/internal/remote"
)

var errAlreadyTrashed = &remote.Error{
	StatusCode: 400,
	Errors:     []protocol.ErrorObject{{Detail: "File or directory is already in the trash"}},
}

func TestTrashFiles_Success(t *testing.T) {
	is := is.New(t)
	d, m, rec := newTestDrive(t)
	files := []models.FileEntry{fileEntry("a", "a", "f1"), dirEntry("b", "b", "f1")}

	for _, f := range files {
		m.On("TrashByID", mock.Anything, f.ID).Return(&f, nil).Once()
		m.On("RevokeSharingLink", mock.Anything, f.ID).Return(nil).Once()
	}

	n := d.TrashFiles(context.Background(), files)

	is.Equal(n.Type, notify.TrashFilesSuccess)
	is.Equal(n.IDs, []string{"a", "b"})
	is.Equal(n.Alert.Message, notify.AlertTrashFileSuccess)
	is.Equal(n.Meta, notify.MetaDefaults)
	is.Equal(rec.All()[0].Meta, notify.MetaDefaults)
}

func TestTrashFiles_AlreadyInTrashCountsAsRemoved(t *testing.T) {
	is := is.New(t)
	d, m, _ := newTestDrive(t)
	files := []models.FileEntry{fileEntry("a", "a", "f1"), fileEntry("b", "b", "f1"), fileEntry("c", "c", "f1")}

	m.On("TrashByID", mock.Anything, "a").Return(&files[0], nil)
	m.On("TrashByID", mock.Anything, "b").Return(nil, errAlreadyTrashed)
	m.On("TrashByID", mock.Anything, "c").Return(&files[2], nil)
	m.On("RevokeSharingLink", mock.Anything, "a").Return(nil)
	m.On("RevokeSharingLink", mock.Anything, "c").Return(nil)

	n := d.TrashFiles(context.Background(), files)

	is.Equal(n.Type, notify.TrashFilesSuccess)
	is.Equal(n.IDs, []string{"a", "b", "c"})
	m.AssertNotCalled(t, "RevokeSharingLink", mock.Anything, "b")
}

func TestTrashFiles_StopsAtFirstFailure(t *testing.T) {
	is := is.New(t)
	d, m, rec := newTestDrive(t)
	files := []models.FileEntry{fileEntry("a", "a", "f1"), fileEntry("b", "b", "f1"), fileEntry("c", "c", "f1")}

	m.On("TrashByID", mock.Anything, "a").Return(&files[0], nil)
	m.On("RevokeSharingLink", mock.Anything, "a").Return(nil)
	m.On("TrashByID", mock.Anything, "b").Return(nil, statusErr(500))

	n := d.TrashFiles(context.Background(), files)

	is.Equal(n.Type, notify.TrashFilesFailure)
	is.Equal(n.Alert.Message, notify.AlertTryAgain)
	is.Equal(n.Alert.Level, notify.LevelError)
	is.Equal(rec.Types(), []notify.Type{notify.TrashFiles, notify.TrashFilesFailure})
	m.AssertCalled(t, "TrashByID", mock.Anything, "a")
	m.AssertNotCalled(t, "TrashByID", mock.Anything, "c")
}

func TestTrashFiles_RemovesAlbumReferencesBeforeRevoking(t *testing.T) {
	is := is.New(t)
	d, m, _ := newTestDrive(t)

	photo := fileEntry("p", "p.jpg", "f1")
	photo.ReferencedBy = []models.Reference{
		{Type: models.AlbumsDoctype, ID: "album1"},
		{Type: "io.cozy.other", ID: "x"},
		{Type: models.AlbumsDoctype, ID: "album2"},
	}

	m.On("TrashByID", mock.Anything, "p").Return(&photo, nil)
	m.On("RemoveReferencedFiles", mock.Anything, models.Reference{Type: models.AlbumsDoctype, ID: "album1"}, []string{"p"}).Return(nil)
	m.On("RemoveReferencedFiles", mock.Anything, models.Reference{Type: models.AlbumsDoctype, ID: "album2"}, []string{"p"}).Return(nil)
	m.On("RevokeSharingLink", mock.Anything, "p").Return(nil)

	n := d.TrashFiles(context.Background(), []models.FileEntry{photo})
	is.Equal(n.Type, notify.TrashFilesSuccess)

	var order []string
	for _, c := range m.Calls {
		order = append(order, c.Method)
	}
	is.Equal(order, []string{"TrashByID", "RemoveReferencedFiles", "RemoveReferencedFiles", "RevokeSharingLink"})
}

func TestTrashFiles_AlbumFailureAborts(t *testing.T) {
	is := is.New(t)
	d, m, _ := newTestDrive(t)

	photo := fileEntry("p", "p.jpg", "f1")
	photo.ReferencedBy = []models.Reference{{Type: models.AlbumsDoctype, ID: "album1"}}

	m.On("TrashByID", mock.Anything, "p").Return(&photo, nil)
	m.On("RemoveReferencedFiles", mock.Anything, mock.Anything, []string{"p"}).Return(statusErr(500))

	n := d.TrashFiles(context.Background(), []models.FileEntry{photo, fileEntry("q", "q", "f1")})

	is.Equal(n.Type, notify.TrashFilesFailure)
	m.AssertNotCalled(t, "TrashByID", mock.Anything, "q")
}

func TestTrashFiles_RevokeFailureIgnored(t *testing.T) {
	is := is.New(t)
	d, m, _ := newTestDrive(t)
	f := fileEntry("a", "a", "f1")

	m.On("TrashByID", mock.Anything, "a").Return(&f, nil)
	m.On("RevokeSharingLink", mock.Anything, "a").Return(errors.New("permissions unavailable"))

	n := d.TrashFiles(context.Background(), []models.FileEntry{f})
	is.Equal(n.Type, notify.TrashFilesSuccess)
}
