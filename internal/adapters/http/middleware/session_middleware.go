package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/domain/services"
	"github.com/Dommgrand/notesapp/internal/ports/api"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Сообщения журнала промежуточного ПО сессий.
const (
	LogSessionMiddleware = "Session middleware"

	ErrorNoSessionCookie = "Session cookie is missing"
	ErrorInvalidSession  = "Session is invalid or expired"
)

// identityKey - ключ, под которым личность пользователя хранится в контексте запроса.
const identityKey = "identity"

// loginPath - путь страницы входа, куда отправляются неаутентифицированные запросы.
const loginPath = "/login"

// NewSessionMiddleware создает промежуточное ПО для проверки пользовательской сессии.
// Запросы без действующей сессии перенаправляются на страницу входа.
func NewSessionMiddleware(authService api.AuthUseCase, cookieName string) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", LogSessionMiddleware))

		token := ctx.Cookies(cookieName)
		if token == "" {
			log.Debug(requestCtx, ErrorNoSessionCookie, zap.String("path", ctx.Path()))
			return ctx.Redirect().Status(fiber.StatusSeeOther).To(loginPath)
		}

		identity, err := authService.CurrentUser(requestCtx, token)
		if err != nil {
			log.Debug(requestCtx, ErrorInvalidSession, zap.Error(err))
			return ctx.Redirect().Status(fiber.StatusSeeOther).To(loginPath)
		}

		ctx.Locals(identityKey, identity)

		return ctx.Next()
	}
}

// IdentityFromCtx извлекает личность аутентифицированного пользователя из контекста запроса.
func IdentityFromCtx(ctx fiber.Ctx) (*services.Identity, bool) {
	identity, ok := ctx.Locals(identityKey).(*services.Identity)
	return identity, ok
}
