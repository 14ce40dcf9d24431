// Package auth содержит HTTP обработчики для входа и регистрации.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/adapters/http/middleware"
	"github.com/Dommgrand/notesapp/internal/adapters/http/render"
	"github.com/Dommgrand/notesapp/internal/app"
	"github.com/Dommgrand/notesapp/internal/domain/entities"
	"github.com/Dommgrand/notesapp/internal/domain/services"
	"github.com/Dommgrand/notesapp/internal/ports/api"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerLoginPage = "auth handler: login page"
	LogHandlerLogin     = "auth handler: login"
	LogHandlerRegister  = "auth handler: register"
	LogHandlerLogout    = "auth handler: logout"

	ErrorFailedToServeRequest = "failed to serve request"
	ErrorRenderingPage        = "failed to render login page"
)

// Сообщения, показываемые пользователю на странице входа.
const (
	msgCredentialsRequired  = "Email and password are required"
	msgRegistrationRequired = "Email, username and password are required"
	msgInvalidCredentials   = "Invalid email or password"
	msgEmailTaken           = "An account with this email already exists"
	msgLoginFailed          = "Could not sign you in, try again later"
	msgRegistrationFailed   = "Could not create your account, try again later"
)

// Имена полей форм входа и регистрации.
const (
	formFieldEmail    = "email"
	formFieldUsername = "username"
	formFieldPassword = "password"
)

const homePath = "/"

// CookieConfig описывает параметры сессионной куки.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler содержит HTTP обработчики аутентификации.
type Handler struct {
	authService api.AuthUseCase
	flows       *app.Registry
	renderer    *render.Renderer
	cookie      CookieConfig
}

// NewHandler создает новый экземпляр обработчика аутентификации.
func NewHandler(authService api.AuthUseCase, flows *app.Registry, renderer *render.Renderer, cookie CookieConfig) *Handler {
	return &Handler{
		authService: authService,
		flows:       flows,
		renderer:    renderer,
		cookie:      cookie,
	}
}

// LoginPage отображает страницу входа.
// Пользователи с действующей сессией сразу перенаправляются к заметкам.
func (h *Handler) LoginPage(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLoginPage)

	if token := ctx.Cookies(h.cookie.Name); token != "" {
		if _, err := h.authService.CurrentUser(requestCtx, token); err == nil {
			return ctx.Redirect().Status(fiber.StatusSeeOther).To(homePath)
		}
	}

	return h.renderLogin(ctx, http.StatusOK, render.LoginData{})
}

// Login обрабатывает отправку формы входа.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogin)

	email := ctx.FormValue(formFieldEmail)
	password := ctx.FormValue(formFieldPassword)

	if email == "" || password == "" {
		return h.renderLogin(ctx, http.StatusBadRequest, render.LoginData{
			Error: msgCredentialsRequired,
			Email: email,
		})
	}

	session, err := h.authService.Login(requestCtx, email, password)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		if errors.Is(err, services.ErrInvalidCredentials) {
			return h.renderLogin(ctx, http.StatusUnauthorized, render.LoginData{
				Error: msgInvalidCredentials,
				Email: email,
			})
		}
		return h.renderLogin(ctx, http.StatusInternalServerError, render.LoginData{
			Error: msgLoginFailed,
			Email: email,
		})
	}

	h.setSessionCookie(ctx, session)

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(homePath)
}

// Register обрабатывает отправку формы регистрации.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	email := ctx.FormValue(formFieldEmail)
	username := ctx.FormValue(formFieldUsername)
	password := ctx.FormValue(formFieldPassword)

	if email == "" || username == "" || password == "" {
		return h.renderLogin(ctx, http.StatusBadRequest, render.LoginData{
			Error:    msgRegistrationRequired,
			Email:    email,
			Username: username,
		})
	}

	session, err := h.authService.Register(requestCtx, email, username, password)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		status, message := registrationFailure(err)
		return h.renderLogin(ctx, status, render.LoginData{
			Error:    message,
			Email:    email,
			Username: username,
		})
	}

	h.setSessionCookie(ctx, session)

	return ctx.Redirect().Status(fiber.StatusSeeOther).To(homePath)
}

// Logout завершает сессию пользователя и сбрасывает его рабочее состояние.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogout)

	if identity, ok := middleware.IdentityFromCtx(ctx); ok {
		h.flows.Drop(identity.UserID)
	}

	if token := ctx.Cookies(h.cookie.Name); token != "" {
		if err := h.authService.Logout(requestCtx, token); err != nil {
			log.Warn(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		}
	}

	h.clearSessionCookie(ctx)

	return ctx.Redirect().Status(fiber.StatusSeeOther).To("/login")
}

// registrationFailure сопоставляет ошибку регистрации со статусом и сообщением.
func registrationFailure(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return http.StatusConflict, msgEmailTaken
	case errors.Is(err, entities.ErrInvalidEmail):
		return http.StatusBadRequest, entities.ErrInvalidEmail.Error()
	case errors.Is(err, entities.ErrEmptyUsername):
		return http.StatusBadRequest, entities.ErrEmptyUsername.Error()
	case errors.Is(err, entities.ErrPasswordTooShort):
		return http.StatusBadRequest, entities.ErrPasswordTooShort.Error()
	case errors.Is(err, entities.ErrPasswordTooWeak):
		return http.StatusBadRequest, entities.ErrPasswordTooWeak.Error()
	default:
		return http.StatusInternalServerError, msgRegistrationFailed
	}
}

// setSessionCookie выставляет сессионную куку с токеном пользователя.
func (h *Handler) setSessionCookie(ctx fiber.Ctx, session *services.UserSession) {
	ctx.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// clearSessionCookie сбрасывает сессионную куку.
func (h *Handler) clearSessionCookie(ctx fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// renderLogin отображает страницу входа с заданным статусом.
func (h *Handler) renderLogin(ctx fiber.Ctx, status int, data render.LoginData) error {
	page, err := h.renderer.Login(data)
	if err != nil {
		logger.Log(ctx.Context()).Error(ctx.Context(), ErrorRenderingPage, zap.Error(err))
		return fmt.Errorf("rendering login page: %w", err)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	if err := ctx.Status(status).Send(page); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}
