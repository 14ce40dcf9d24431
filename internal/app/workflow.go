package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Dommgrand/notesapp/internal/domain/entities"
	"github.com/Dommgrand/notesapp/internal/ports/repositories"
	"github.com/Dommgrand/notesapp/internal/ports/storage"
	"github.com/Dommgrand/notesapp/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ошибки уровня бизнес-логики.
var (
	ErrBusy            = errors.New("another operation is in progress")
	ErrEmptyDraft      = errors.New("title and content are required")
	ErrNotImage        = errors.New("attachment must be an image")
	ErrNoPendingDelete = errors.New("no delete confirmation pending")
	ErrNoteNotListed   = errors.New("note is not in the current list")
)

// Уведомления, отображаемые пользователю после неудачной операции.
const (
	NoticeBusy         = "Another operation is already running"
	NoticeDraftInvalid = "Title and content are required"
	NoticeFileNotImage = "Only image files can be attached"
	NoticeFetchFailed  = "Could not load notes"
	NoticeCreateFailed = "Could not save the note"
	NoticeDeleteFailed = "Could not delete the note"
)

const (
	methodFetch         = "Fetch"
	methodSave          = "Save"
	methodConfirmDelete = "ConfirmDelete"

	msgWorkflowBusy    = "workflow rejected: another one is in flight"
	msgFetchingNotes   = "fetching notes"
	msgNotesFetched    = "notes fetched and hydrated"
	msgDraftRejected   = "draft rejected: empty title or content"
	msgFileRejected    = "file rejected: not an image"
	msgCreatingNote    = "creating note"
	msgNoteCreated     = "note created"
	msgDeletingNote    = "deleting note"
	msgNoteDeleted     = "note deleted"
	msgNoConfirmation  = "delete rejected: no confirmation pending"
	msgNoteNotListed   = "delete rejected: note is not in the current list"
	msgErrListNotes    = "failed to list notes"
	msgErrResolveURL   = "failed to resolve image url"
	msgErrCreateNote   = "failed to create note"
	msgErrUploadImage  = "failed to upload image"
	msgErrAttachImage  = "failed to attach image to note"
	msgErrDeleteBlob   = "failed to delete image blob"
	msgErrDeleteNote   = "failed to delete note record"

	errCtxListingNotes      = "listing notes"
	errCtxResolvingImageURL = "resolving image url for note"
	errCtxValidatingDraft   = "validating draft"
	errCtxCreatingNote      = "creating note"
	errCtxUploadingImage    = "uploading image"
	errCtxAttachingImage    = "attaching image"
	errCtxSelectingFile     = "selecting file"
	errCtxConfirmingDelete  = "confirming delete"
	errCtxDeletingBlob      = "deleting image blob"
	errCtxDeletingNote      = "deleting note record"
)

// NoteView - заметка, подготовленная к отображению: запись хранилища
// плюс производная подписанная ссылка на изображение. Ссылка вычисляется
// при каждой загрузке списка и никогда не сохраняется.
type NoteView struct {
	entities.Note

	ImageURL string
}

// PendingFile - файл, выбранный в форме и ожидающий сохранения.
type PendingFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Draft - черновик формы создания заметки.
type Draft struct {
	Title   string
	Content string
	File    *PendingFile
}

// Snapshot - копия состояния Workflow для рендеринга страницы.
type Snapshot struct {
	Notes      []NoteView
	Loaded     bool
	Draft      Draft
	Confirming string
	Notice     string
	Busy       bool
}

// Workflow владеет интерфейсным состоянием одного пользователя и выполняет
// три рабочих процесса: загрузку списка, создание и удаление заметки.
// Флаг busy допускает не более одного процесса в полете; он снимается
// безусловно при завершении процесса, успешном или нет.
type Workflow struct {
	userID string
	notes  repositories.NoteRepository
	blobs  storage.BlobStore

	mu         sync.Mutex
	list       []NoteView
	loaded     bool
	draft      Draft
	confirming string
	notice     string
	busy       bool
}

// NewWorkflow создает Workflow для пользователя.
func NewWorkflow(userID string, notes repositories.NoteRepository, blobs storage.BlobStore) *Workflow {
	return &Workflow{
		userID: userID,
		notes:  notes,
		blobs:  blobs,
	}
}

// begin занимает флаг busy. Захват сбрасывает предыдущее уведомление;
// отказ при занятом флаге сам становится уведомлением.
func (w *Workflow) begin(ctx context.Context, method string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		w.notice = NoticeBusy
		logger.Log(ctx).Debug(ctx, msgWorkflowBusy, zap.String("method", method))
		return ErrBusy
	}

	w.busy = true
	w.notice = ""
	return nil
}

// end освобождает флаг busy; вызывается отложенно из каждого процесса.
func (w *Workflow) end() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

// fail записывает уведомление о неудавшейся операции.
func (w *Workflow) fail(notice string) {
	w.mu.Lock()
	w.notice = notice
	w.mu.Unlock()
}

// Fetch загружает список заметок пользователя и разрешает подписанные
// ссылки для всех заметок с изображениями, параллельно и независимо.
// Список заменяется целиком либо, при любой ошибке, не меняется вовсе.
func (w *Workflow) Fetch(ctx context.Context) error {
	log := logger.Log(ctx).With(zap.String("method", methodFetch), zap.String("userID", w.userID))

	if err := w.begin(ctx, methodFetch); err != nil {
		return err
	}
	defer w.end()

	log.Debug(ctx, msgFetchingNotes)

	records, err := w.notes.ListByUser(ctx, w.userID)
	if err != nil {
		log.Error(ctx, msgErrListNotes, zap.Error(err))
		w.fail(NoticeFetchFailed)
		return fmt.Errorf("%s: %w", errCtxListingNotes, err)
	}

	views := make([]NoteView, len(records))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, record := range records {
		views[i] = NoteView{Note: record}
		if !record.HasImage() {
			continue
		}

		group.Go(func() error {
			url, err := w.blobs.SignedURL(groupCtx, record.ImagePath)
			if err != nil {
				return fmt.Errorf("%s %s: %w", errCtxResolvingImageURL, record.ID, err)
			}
			views[i].ImageURL = url
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error(ctx, msgErrResolveURL, zap.Error(err))
		w.fail(NoticeFetchFailed)
		return err
	}

	w.mu.Lock()
	w.list = views
	w.loaded = true
	w.mu.Unlock()

	log.Info(ctx, msgNotesFetched, zap.Int("count", len(views)))
	return nil
}

// EnsureLoaded выполняет первую загрузку списка; на уже загруженном
// Workflow ничего не делает.
func (w *Workflow) EnsureLoaded(ctx context.Context) error {
	w.mu.Lock()
	loaded := w.loaded
	w.mu.Unlock()

	if loaded {
		return nil
	}
	return w.Fetch(ctx)
}

// Save проверяет черновик и создает заметку. Если выбран файл, он
// загружается по пути images/{id}-{filename}, после чего запись
// обновляется и локальное значение заменяется обновленным. Черновик
// очищается только после полного успеха.
func (w *Workflow) Save(ctx context.Context) error {
	log := logger.Log(ctx).With(zap.String("method", methodSave), zap.String("userID", w.userID))

	if err := w.begin(ctx, methodSave); err != nil {
		return err
	}
	defer w.end()

	w.mu.Lock()
	draft := w.draft
	w.mu.Unlock()

	title := strings.TrimSpace(draft.Title)
	content := strings.TrimSpace(draft.Content)
	if title == "" || content == "" {
		log.Debug(ctx, msgDraftRejected)
		w.fail(NoticeDraftInvalid)
		return fmt.Errorf("%s: %w", errCtxValidatingDraft, ErrEmptyDraft)
	}

	log.Debug(ctx, msgCreatingNote)

	record, err := w.notes.Create(ctx, w.userID, title, content)
	if err != nil {
		log.Error(ctx, msgErrCreateNote, zap.Error(err))
		w.fail(NoticeCreateFailed)
		return fmt.Errorf("%s: %w", errCtxCreatingNote, err)
	}

	log = log.With(zap.String("noteID", record.ID))

	if draft.File != nil {
		path := fmt.Sprintf("images/%s-%s", record.ID, draft.File.Name)

		reader := bytes.NewReader(draft.File.Data)
		if _, err := w.blobs.Upload(ctx, path, reader, int64(len(draft.File.Data)), draft.File.ContentType); err != nil {
			log.Error(ctx, msgErrUploadImage, zap.Error(err), zap.String("path", path))
			w.fail(NoticeCreateFailed)
			return fmt.Errorf("%s: %w", errCtxUploadingImage, err)
		}

		updated, err := w.notes.AttachImage(ctx, record.ID, w.userID, path)
		if err != nil {
			log.Error(ctx, msgErrAttachImage, zap.Error(err), zap.String("path", path))
			w.fail(NoticeCreateFailed)
			return fmt.Errorf("%s: %w", errCtxAttachingImage, err)
		}
		record = updated
	}

	w.mu.Lock()
	w.list = append(w.list, NoteView{Note: record})
	w.draft = Draft{}
	w.mu.Unlock()

	log.Info(ctx, msgNoteCreated, zap.Bool("withImage", record.HasImage()))
	return nil
}

// ConfirmDelete завершает запрошенное удаление: сначала blob, затем
// запись, затем элемент списка. Выполняется только когда noteID совпадает
// с запрошенным подтверждением. Отказ на шаге удаления blob оставляет
// запись и элемент списка нетронутыми; отказ на шаге удаления записи
// оставляет устаревший элемент списка при уже удаленном blob.
func (w *Workflow) ConfirmDelete(ctx context.Context, noteID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodConfirmDelete), zap.String("userID", w.userID))

	if err := w.begin(ctx, methodConfirmDelete); err != nil {
		return err
	}
	defer w.end()

	w.mu.Lock()
	if w.confirming == "" || w.confirming != noteID {
		w.mu.Unlock()
		log.Debug(ctx, msgNoConfirmation, zap.String("noteID", noteID))
		return fmt.Errorf("%s: %w", errCtxConfirmingDelete, ErrNoPendingDelete)
	}
	w.confirming = ""
	var target NoteView
	found := false
	for _, view := range w.list {
		if view.ID == noteID {
			target = view
			found = true
			break
		}
	}
	w.mu.Unlock()

	if !found {
		log.Debug(ctx, msgNoteNotListed, zap.String("noteID", noteID))
		w.fail(NoticeDeleteFailed)
		return fmt.Errorf("%s: %w", errCtxConfirmingDelete, ErrNoteNotListed)
	}

	log = log.With(zap.String("noteID", noteID))
	log.Debug(ctx, msgDeletingNote, zap.Bool("withImage", target.HasImage()))

	if target.HasImage() {
		if err := w.blobs.Remove(ctx, target.ImagePath); err != nil {
			log.Error(ctx, msgErrDeleteBlob, zap.Error(err), zap.String("path", target.ImagePath))
			w.fail(NoticeDeleteFailed)
			return fmt.Errorf("%s: %w", errCtxDeletingBlob, err)
		}
	}

	if err := w.notes.Delete(ctx, noteID, w.userID); err != nil {
		log.Error(ctx, msgErrDeleteNote, zap.Error(err))
		w.fail(NoticeDeleteFailed)
		return fmt.Errorf("%s: %w", errCtxDeletingNote, err)
	}

	w.mu.Lock()
	for i := range w.list {
		if w.list[i].ID == noteID {
			w.list = append(w.list[:i], w.list[i+1:]...)
			break
		}
	}
	w.mu.Unlock()

	log.Info(ctx, msgNoteDeleted)
	return nil
}

// EditDraft обновляет поля черновика.
func (w *Workflow) EditDraft(title, content string) {
	w.mu.Lock()
	w.draft.Title = title
	w.draft.Content = content
	w.mu.Unlock()
}

// SelectFile запоминает выбранный файл. Принимаются только изображения;
// проверка по заявленному content type повторяет ограничение картинки
// в форме на стороне сервера.
func (w *Workflow) SelectFile(ctx context.Context, name, contentType string, data []byte) error {
	if !strings.HasPrefix(contentType, "image/") {
		logger.Log(ctx).Debug(ctx, msgFileRejected, zap.String("contentType", contentType))
		w.fail(NoticeFileNotImage)
		return fmt.Errorf("%s: %w", errCtxSelectingFile, ErrNotImage)
	}

	w.mu.Lock()
	w.draft.File = &PendingFile{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
	w.mu.Unlock()
	return nil
}

// ClearDraft сбрасывает черновик вместе с выбранным файлом.
func (w *Workflow) ClearDraft() {
	w.mu.Lock()
	w.draft = Draft{}
	w.mu.Unlock()
}

// RequestDelete переводит заметку в состояние ожидания подтверждения.
// Само удаление выполняет только ConfirmDelete.
func (w *Workflow) RequestDelete(noteID string) {
	w.mu.Lock()
	w.confirming = noteID
	w.mu.Unlock()
}

// CancelDelete отменяет запрошенное удаление.
func (w *Workflow) CancelDelete() {
	w.mu.Lock()
	w.confirming = ""
	w.mu.Unlock()
}

// Snapshot возвращает копию текущего состояния для рендеринга.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	notes := make([]NoteView, len(w.list))
	copy(notes, w.list)

	return Snapshot{
		Notes:      notes,
		Loaded:     w.loaded,
		Draft:      w.draft,
		Confirming: w.confirming,
		Notice:     w.notice,
		Busy:       w.busy,
	}
}
