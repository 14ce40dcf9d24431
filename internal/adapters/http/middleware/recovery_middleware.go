package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/pkg/logger"
)

// NewRecoveryMiddleware создает промежуточное ПО для восстановления после паник.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				requestCtx := ctx.Context()

				logger.Log(requestCtx).Error(requestCtx, "Panic recovered",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", ctx.Path()),
					zap.String("method", ctx.Method()),
				)

				err = ctx.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
			}
		}()

		return ctx.Next()
	}
}
