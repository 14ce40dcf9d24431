// Package notes содержит HTTP обработчики страницы заметок.
package notes

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/adapters/http/middleware"
	"github.com/Dommgrand/notesapp/internal/adapters/http/render"
	"github.com/Dommgrand/notesapp/internal/app"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerPage    = "notes handler: page"
	LogHandlerSave    = "notes handler: save note"
	LogHandlerRefresh = "notes handler: refresh notes"
	LogHandlerClear   = "notes handler: clear draft"
	LogHandlerDelete  = "notes handler: request delete"
	LogHandlerConfirm = "notes handler: confirm delete"
	LogHandlerCancel  = "notes handler: cancel delete"

	ErrorLoadingNotes  = "failed to load notes"
	ErrorSavingNote    = "failed to save note"
	ErrorDeletingNote  = "failed to delete note"
	ErrorReadingUpload = "failed to read uploaded file"
	ErrorRenderingPage = "failed to render notes page"
)

// Имена полей формы создания заметки.
const (
	formFieldTitle   = "title"
	formFieldContent = "content"
	formFieldImage   = "image"
)

const (
	pathHome  = "/"
	pathLogin = "/login"
)

// Handler содержит HTTP обработчики страницы заметок.
type Handler struct {
	flows    *app.Registry
	renderer *render.Renderer
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(flows *app.Registry, renderer *render.Renderer) *Handler {
	return &Handler{
		flows:    flows,
		renderer: renderer,
	}
}

// Page отображает страницу заметок текущего пользователя.
// Первый заход подгружает список, повторные показывают состояние как есть.
func (h *Handler) Page(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerPage)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	flow := h.flows.Get(identity.UserID)

	if err := flow.EnsureLoaded(requestCtx); err != nil && !errors.Is(err, app.ErrBusy) {
		log.Error(requestCtx, ErrorLoadingNotes, zap.Error(err))
	}

	page, err := h.renderer.Page(render.PageData{
		Snapshot: flow.Snapshot(),
		Username: identity.Username,
	})
	if err != nil {
		log.Error(requestCtx, ErrorRenderingPage, zap.Error(err))
		return fmt.Errorf("rendering notes page: %w", err)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	if err := ctx.Status(fiber.StatusOK).Send(page); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Save обрабатывает отправку формы создания заметки.
// Черновик обновляется даже при неудачном сохранении, чтобы введенный
// текст не пропадал.
func (h *Handler) Save(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerSave)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	flow := h.flows.Get(identity.UserID)
	flow.EditDraft(ctx.FormValue(formFieldTitle), ctx.FormValue(formFieldContent))

	if file, err := ctx.FormFile(formFieldImage); err == nil && file != nil && file.Size > 0 {
		name, contentType, data, err := readUpload(file)
		if err != nil {
			log.Error(requestCtx, ErrorReadingUpload, zap.Error(err))
			return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
		}

		if err := flow.SelectFile(requestCtx, name, contentType, data); err != nil {
			log.Debug(requestCtx, ErrorSavingNote, zap.Error(err))
			return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
		}
	}

	if err := flow.Save(requestCtx); err != nil {
		log.Debug(requestCtx, ErrorSavingNote, zap.Error(err))
	}

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
}

// Refresh перечитывает список заметок из хранилища.
func (h *Handler) Refresh(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRefresh)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	if err := h.flows.Get(identity.UserID).Fetch(requestCtx); err != nil {
		log.Debug(requestCtx, ErrorLoadingNotes, zap.Error(err))
	}

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
}

// ClearDraft очищает черновик заметки.
func (h *Handler) ClearDraft(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerClear)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	h.flows.Get(identity.UserID).ClearDraft()

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
}

// RequestDelete помечает заметку как ожидающую подтверждения удаления.
func (h *Handler) RequestDelete(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerDelete)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	h.flows.Get(identity.UserID).RequestDelete(ctx.Params("id"))

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
}

// ConfirmDelete подтверждает удаление ранее выбранной заметки.
func (h *Handler) ConfirmDelete(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerConfirm)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	if err := h.flows.Get(identity.UserID).ConfirmDelete(requestCtx, ctx.Params("id")); err != nil {
		log.Debug(requestCtx, ErrorDeletingNote, zap.Error(err))
	}

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
}

// CancelDelete отменяет ожидающее подтверждения удаление.
func (h *Handler) CancelDelete(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerCancel)

	identity, ok := middleware.IdentityFromCtx(ctx)
	if !ok {
		return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathLogin)
	}

	h.flows.Get(identity.UserID).CancelDelete()

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(pathHome)
}

// readUpload вычитывает загруженный файл в память.
func readUpload(file *multipart.FileHeader) (string, string, []byte, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("opening uploaded file: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", "", nil, fmt.Errorf("reading uploaded file: %w", err)
	}

	return filepath.Base(file.Filename), file.Header.Get(fiber.HeaderContentType), data, nil
}
