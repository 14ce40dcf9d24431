package app_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Dommgrand/notesapp/internal/app"
	"github.com/Dommgrand/notesapp/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ErrDatabaseOperation = errors.New("database error")
	ErrStorageOperation  = errors.New("storage error")
)

const testUserID = "test-user-id"

type mockNoteRepository struct {
	mock.Mock
}

func (m *mockNoteRepository) Create(ctx context.Context, userID, title, content string) (entities.Note, error) {
	args := m.Called(ctx, userID, title, content)
	return args.Get(0).(entities.Note), args.Error(1)
}

func (m *mockNoteRepository) ListByUser(ctx context.Context, userID string) ([]entities.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Note), args.Error(1)
}

func (m *mockNoteRepository) AttachImage(ctx context.Context, noteID, userID, imagePath string) (entities.Note, error) {
	args := m.Called(ctx, noteID, userID, imagePath)
	return args.Get(0).(entities.Note), args.Error(1)
}

func (m *mockNoteRepository) Delete(ctx context.Context, noteID, userID string) error {
	return m.Called(ctx, noteID, userID).Error(0)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, path, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) SignedURL(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Remove(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func newTestWorkflow() (*app.Workflow, *mockNoteRepository, *mockBlobStore) {
	repo := new(mockNoteRepository)
	blobs := new(mockBlobStore)
	return app.NewWorkflow(testUserID, repo, blobs), repo, blobs
}

func TestFetchHydratesImagesInStoreOrder(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{
		{ID: "n1", UserID: testUserID, Title: "first", Content: "plain"},
		{ID: "n2", UserID: testUserID, Title: "second", Content: "has image", ImagePath: "images/n2-pic.png"},
		{ID: "n3", UserID: testUserID, Title: "third", Content: "also has image", ImagePath: "images/n3-shot.jpg"},
	}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/n2-pic.png").
		Return("https://blob.example/n2-pic.png?sig=abc", nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/n3-shot.jpg").
		Return("https://blob.example/n3-shot.jpg?sig=def", nil).Once()

	require.NoError(t, flow.Fetch(ctx))

	snap := flow.Snapshot()
	require.Len(t, snap.Notes, 3)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.Notice)

	assert.Equal(t, "n1", snap.Notes[0].ID)
	assert.Empty(t, snap.Notes[0].ImageURL)
	assert.Equal(t, "n2", snap.Notes[1].ID)
	assert.Equal(t, "https://blob.example/n2-pic.png?sig=abc", snap.Notes[1].ImageURL)
	assert.Equal(t, "n3", snap.Notes[2].ID)
	assert.Equal(t, "https://blob.example/n3-shot.jpg?sig=def", snap.Notes[2].ImageURL)

	repo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestFetchListFailureKeepsPreviousList(t *testing.T) {
	flow, repo, _ := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{{ID: "n1", UserID: testUserID, Title: "kept", Content: "body"}}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	repo.On("ListByUser", mock.Anything, testUserID).Return(nil, ErrDatabaseOperation).Once()

	err := flow.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseOperation)

	snap := flow.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "kept", snap.Notes[0].Title)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Busy)
	assert.Equal(t, app.NoticeFetchFailed, snap.Notice)
}

func TestFetchResolutionFailureReplacesNothing(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{
		{ID: "n1", UserID: testUserID, Title: "ok", Content: "body", ImagePath: "images/n1-a.png"},
		{ID: "n2", UserID: testUserID, Title: "broken", Content: "body", ImagePath: "images/n2-b.png"},
	}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/n1-a.png").
		Return("https://blob.example/n1-a.png", nil).Maybe()
	blobs.On("SignedURL", mock.Anything, "images/n2-b.png").
		Return("", ErrStorageOperation).Once()

	err := flow.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageOperation)

	snap := flow.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.False(t, snap.Loaded)
	assert.False(t, snap.Busy)
	assert.Equal(t, app.NoticeFetchFailed, snap.Notice)
}

func TestEnsureLoadedFetchesExactlyOnce(t *testing.T) {
	flow, repo, _ := newTestWorkflow()
	ctx := context.Background()

	repo.On("ListByUser", mock.Anything, testUserID).Return([]entities.Note{}, nil).Once()

	require.NoError(t, flow.EnsureLoaded(ctx))
	require.NoError(t, flow.EnsureLoaded(ctx))

	snap := flow.Snapshot()
	assert.True(t, snap.Loaded)
	assert.Empty(t, snap.Notes)
	repo.AssertNumberOfCalls(t, "ListByUser", 1)
}

func TestSaveWithoutFile(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	created := entities.Note{ID: "note-1", UserID: testUserID, Title: "A", Content: "B"}
	repo.On("Create", mock.Anything, testUserID, "A", "B").Return(created, nil).Once()

	flow.EditDraft("A", "B")
	require.NoError(t, flow.Save(ctx))

	snap := flow.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "A", snap.Notes[0].Title)
	assert.Equal(t, "B", snap.Notes[0].Content)
	assert.False(t, snap.Notes[0].HasImage())
	assert.Empty(t, snap.Notes[0].ImageURL)
	assert.Empty(t, snap.Draft.Title)
	assert.Empty(t, snap.Draft.Content)
	assert.Nil(t, snap.Draft.File)
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.Notice)

	blobs.AssertNumberOfCalls(t, "Upload", 0)
	repo.AssertNumberOfCalls(t, "AttachImage", 0)
	repo.AssertExpectations(t)
}

func TestSaveWithFileUploadsAndAttaches(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()
	data := []byte("png bytes")

	created := entities.Note{ID: "123", UserID: testUserID, Title: "trip", Content: "pics inside"}
	attached := created
	attached.ImagePath = "images/123-photo.png"

	repo.On("Create", mock.Anything, testUserID, "trip", "pics inside").Return(created, nil).Once()
	blobs.On("Upload", mock.Anything, "images/123-photo.png", mock.Anything, int64(len(data)), "image/png").
		Return("images/123-photo.png", nil).Once()
	repo.On("AttachImage", mock.Anything, "123", testUserID, "images/123-photo.png").
		Return(attached, nil).Once()

	flow.EditDraft("trip", "pics inside")
	require.NoError(t, flow.SelectFile(ctx, "photo.png", "image/png", data))
	require.NoError(t, flow.Save(ctx))

	snap := flow.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "images/123-photo.png", snap.Notes[0].ImagePath)
	assert.True(t, snap.Notes[0].HasImage())
	assert.Nil(t, snap.Draft.File)

	repo.On("ListByUser", mock.Anything, testUserID).Return([]entities.Note{attached}, nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/123-photo.png").
		Return("https://blob.example/123-photo.png?sig=xyz", nil).Once()

	require.NoError(t, flow.Fetch(ctx))

	snap = flow.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.NotEmpty(t, snap.Notes[0].ImageURL)

	repo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestSaveValidationMakesNoRemoteCalls(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
	}{
		{name: "empty title", title: "", content: "body"},
		{name: "empty content", title: "title", content: ""},
		{name: "whitespace only", title: "   ", content: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, repo, blobs := newTestWorkflow()

			flow.EditDraft(tt.title, tt.content)
			err := flow.Save(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, app.ErrEmptyDraft)

			snap := flow.Snapshot()
			assert.Equal(t, app.NoticeDraftInvalid, snap.Notice)
			assert.False(t, snap.Busy)
			assert.Equal(t, tt.title, snap.Draft.Title)
			assert.Equal(t, tt.content, snap.Draft.Content)
			repo.AssertNumberOfCalls(t, "Create", 0)
			blobs.AssertNumberOfCalls(t, "Upload", 0)
		})
	}
}

func TestSaveCreateFailureKeepsDraft(t *testing.T) {
	flow, repo, _ := newTestWorkflow()
	ctx := context.Background()

	repo.On("Create", mock.Anything, testUserID, "title", "body").
		Return(entities.Note{}, ErrDatabaseOperation).Once()

	flow.EditDraft("title", "body")
	err := flow.Save(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseOperation)

	snap := flow.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.Equal(t, "title", snap.Draft.Title)
	assert.Equal(t, "body", snap.Draft.Content)
	assert.Equal(t, app.NoticeCreateFailed, snap.Notice)
	assert.False(t, snap.Busy)
}

func TestSaveUploadFailureKeepsDraftAndFile(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	created := entities.Note{ID: "n9", UserID: testUserID, Title: "cat", Content: "pic"}
	repo.On("Create", mock.Anything, testUserID, "cat", "pic").Return(created, nil).Once()
	blobs.On("Upload", mock.Anything, "images/n9-cat.png", mock.Anything, mock.Anything, "image/png").
		Return("", ErrStorageOperation).Once()

	flow.EditDraft("cat", "pic")
	require.NoError(t, flow.SelectFile(ctx, "cat.png", "image/png", []byte("cat")))
	err := flow.Save(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageOperation)
	repo.AssertNumberOfCalls(t, "AttachImage", 0)

	snap := flow.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.Equal(t, "cat", snap.Draft.Title)
	require.NotNil(t, snap.Draft.File)
	assert.Equal(t, "cat.png", snap.Draft.File.Name)
	assert.Equal(t, app.NoticeCreateFailed, snap.Notice)
	assert.False(t, snap.Busy)
}

func TestSaveAttachFailureLeavesListUnchanged(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	created := entities.Note{ID: "n9", UserID: testUserID, Title: "cat", Content: "pic"}
	repo.On("Create", mock.Anything, testUserID, "cat", "pic").Return(created, nil).Once()
	blobs.On("Upload", mock.Anything, "images/n9-cat.png", mock.Anything, mock.Anything, "image/png").
		Return("images/n9-cat.png", nil).Once()
	repo.On("AttachImage", mock.Anything, "n9", testUserID, "images/n9-cat.png").
		Return(entities.Note{}, ErrDatabaseOperation).Once()

	flow.EditDraft("cat", "pic")
	require.NoError(t, flow.SelectFile(ctx, "cat.png", "image/png", []byte("cat")))
	err := flow.Save(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseOperation)

	snap := flow.Snapshot()
	assert.Empty(t, snap.Notes)
	require.NotNil(t, snap.Draft.File)
	assert.Equal(t, app.NoticeCreateFailed, snap.Notice)
	assert.False(t, snap.Busy)
}

func TestConfirmDeleteCallsBlobBeforeRecord(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{
		{ID: "n1", UserID: testUserID, Title: "doomed", Content: "body", ImagePath: "images/n1-pic.png"},
	}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/n1-pic.png").
		Return("https://blob.example/n1-pic.png", nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	var calls []string
	blobs.On("Remove", mock.Anything, "images/n1-pic.png").Run(func(mock.Arguments) {
		calls = append(calls, "blob.Remove")
	}).Return(nil).Once()
	repo.On("Delete", mock.Anything, "n1", testUserID).Run(func(mock.Arguments) {
		calls = append(calls, "record.Delete")
	}).Return(nil).Once()

	flow.RequestDelete("n1")
	require.NoError(t, flow.ConfirmDelete(ctx, "n1"))

	assert.Equal(t, []string{"blob.Remove", "record.Delete"}, calls)

	snap := flow.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.Empty(t, snap.Confirming)
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.Notice)

	repo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestConfirmDeleteWithoutImageSkipsBlob(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{{ID: "n1", UserID: testUserID, Title: "plain", Content: "body"}}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	repo.On("Delete", mock.Anything, "n1", testUserID).Return(nil).Once()

	flow.RequestDelete("n1")
	require.NoError(t, flow.ConfirmDelete(ctx, "n1"))

	blobs.AssertNumberOfCalls(t, "Remove", 0)
	assert.Empty(t, flow.Snapshot().Notes)
	repo.AssertExpectations(t)
}

func TestConfirmDeleteBlobFailureKeepsRecord(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{
		{ID: "n1", UserID: testUserID, Title: "survives", Content: "body", ImagePath: "images/n1-pic.png"},
	}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/n1-pic.png").
		Return("https://blob.example/n1-pic.png", nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	blobs.On("Remove", mock.Anything, "images/n1-pic.png").Return(ErrStorageOperation).Once()

	flow.RequestDelete("n1")
	err := flow.ConfirmDelete(ctx, "n1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageOperation)
	repo.AssertNumberOfCalls(t, "Delete", 0)

	snap := flow.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, "n1", snap.Notes[0].ID)
	assert.Empty(t, snap.Confirming)
	assert.Equal(t, app.NoticeDeleteFailed, snap.Notice)
	assert.False(t, snap.Busy)
}

func TestConfirmDeleteRecordFailureLeavesStaleEntry(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{
		{ID: "n1", UserID: testUserID, Title: "stale", Content: "body", ImagePath: "images/n1-pic.png"},
	}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	blobs.On("SignedURL", mock.Anything, "images/n1-pic.png").
		Return("https://blob.example/n1-pic.png", nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	blobs.On("Remove", mock.Anything, "images/n1-pic.png").Return(nil).Once()
	repo.On("Delete", mock.Anything, "n1", testUserID).Return(ErrDatabaseOperation).Once()

	flow.RequestDelete("n1")
	err := flow.ConfirmDelete(ctx, "n1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseOperation)

	snap := flow.Snapshot()
	require.Len(t, snap.Notes, 1)
	assert.Equal(t, app.NoticeDeleteFailed, snap.Notice)
	assert.False(t, snap.Busy)
	blobs.AssertExpectations(t)
}

func TestConfirmDeleteWithoutConfirmationIsRejected(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()

	err := flow.ConfirmDelete(context.Background(), "n1")

	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNoPendingDelete)
	repo.AssertNumberOfCalls(t, "Delete", 0)
	blobs.AssertNumberOfCalls(t, "Remove", 0)
	assert.False(t, flow.Snapshot().Busy)
}

func TestConfirmDeleteMismatchedIDIsRejected(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{
		{ID: "n1", UserID: testUserID, Title: "pending", Content: "body"},
		{ID: "n2", UserID: testUserID, Title: "other", Content: "body"},
	}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	flow.RequestDelete("n1")
	err := flow.ConfirmDelete(ctx, "n2")

	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNoPendingDelete)
	repo.AssertNumberOfCalls(t, "Delete", 0)
	blobs.AssertNumberOfCalls(t, "Remove", 0)

	snap := flow.Snapshot()
	assert.Equal(t, "n1", snap.Confirming)
	require.Len(t, snap.Notes, 2)
}

func TestConfirmDeleteUnknownNoteIsRejected(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()
	ctx := context.Background()

	repo.On("ListByUser", mock.Anything, testUserID).Return([]entities.Note{}, nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	flow.RequestDelete("ghost")
	err := flow.ConfirmDelete(ctx, "ghost")

	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNoteNotListed)
	repo.AssertNumberOfCalls(t, "Delete", 0)
	blobs.AssertNumberOfCalls(t, "Remove", 0)

	snap := flow.Snapshot()
	assert.Empty(t, snap.Confirming)
	assert.Equal(t, app.NoticeDeleteFailed, snap.Notice)
}

func TestRequestAndCancelDeleteTouchNoStores(t *testing.T) {
	flow, repo, blobs := newTestWorkflow()

	flow.RequestDelete("n1")
	assert.Equal(t, "n1", flow.Snapshot().Confirming)

	flow.CancelDelete()
	assert.Empty(t, flow.Snapshot().Confirming)

	repo.AssertNumberOfCalls(t, "ListByUser", 0)
	repo.AssertNumberOfCalls(t, "Delete", 0)
	blobs.AssertNumberOfCalls(t, "Remove", 0)
}

func TestSelectFileRejectsNonImage(t *testing.T) {
	flow, _, _ := newTestWorkflow()
	ctx := context.Background()

	err := flow.SelectFile(ctx, "notes.pdf", "application/pdf", []byte("%PDF"))

	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrNotImage)

	snap := flow.Snapshot()
	assert.Nil(t, snap.Draft.File)
	assert.Equal(t, app.NoticeFileNotImage, snap.Notice)

	require.NoError(t, flow.SelectFile(ctx, "pic.jpeg", "image/jpeg", []byte("jpg")))
	require.NotNil(t, flow.Snapshot().Draft.File)
	assert.Equal(t, "pic.jpeg", flow.Snapshot().Draft.File.Name)
}

func TestEditAndClearDraft(t *testing.T) {
	flow, _, _ := newTestWorkflow()
	ctx := context.Background()

	flow.EditDraft("title", "content")
	require.NoError(t, flow.SelectFile(ctx, "pic.png", "image/png", []byte("png")))

	snap := flow.Snapshot()
	assert.Equal(t, "title", snap.Draft.Title)
	assert.Equal(t, "content", snap.Draft.Content)
	require.NotNil(t, snap.Draft.File)

	flow.ClearDraft()

	snap = flow.Snapshot()
	assert.Empty(t, snap.Draft.Title)
	assert.Empty(t, snap.Draft.Content)
	assert.Nil(t, snap.Draft.File)
}

func TestWorkflowRejectsSecondWhileBusy(t *testing.T) {
	flow, repo, _ := newTestWorkflow()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	repo.On("ListByUser", mock.Anything, testUserID).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]entities.Note{}, nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- flow.Fetch(ctx)
	}()

	<-started
	assert.True(t, flow.Snapshot().Busy)

	flow.EditDraft("title", "body")
	err := flow.Save(ctx)
	assert.ErrorIs(t, err, app.ErrBusy)
	assert.Equal(t, app.NoticeBusy, flow.Snapshot().Notice)

	close(release)
	require.NoError(t, <-done)

	assert.False(t, flow.Snapshot().Busy)
	repo.AssertNumberOfCalls(t, "Create", 0)
}

func TestSnapshotCopiesList(t *testing.T) {
	flow, repo, _ := newTestWorkflow()
	ctx := context.Background()

	records := []entities.Note{{ID: "n1", UserID: testUserID, Title: "original", Content: "body"}}
	repo.On("ListByUser", mock.Anything, testUserID).Return(records, nil).Once()
	require.NoError(t, flow.Fetch(ctx))

	snap := flow.Snapshot()
	snap.Notes[0].Title = "mutated"

	assert.Equal(t, "original", flow.Snapshot().Notes[0].Title)
}
