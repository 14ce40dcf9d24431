// Package http содержит компоненты для HTTP сервера.
package http

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Dommgrand/notesapp/internal/adapters/http/auth"
	"github.com/Dommgrand/notesapp/internal/adapters/http/middleware"
	"github.com/Dommgrand/notesapp/internal/adapters/http/notes"
	"github.com/Dommgrand/notesapp/internal/adapters/http/render"
	"github.com/Dommgrand/notesapp/internal/app"
	"github.com/Dommgrand/notesapp/internal/ports/api"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(fiberApp *fiber.App, authService api.AuthUseCase, flows *app.Registry, renderer *render.Renderer, cookie auth.CookieConfig) {
	authHandler := auth.NewHandler(authService, flows, renderer, cookie)
	notesHandler := notes.NewHandler(flows, renderer)

	// Middleware для всех запросов.
	fiberApp.Use(middleware.NewLoggerMiddleware())
	fiberApp.Use(middleware.NewRecoveryMiddleware())

	session := middleware.NewSessionMiddleware(authService, cookie.Name)

	// Маршруты входа и регистрации (публичные).
	fiberApp.Get("/login", authHandler.LoginPage)
	fiberApp.Post("/login", authHandler.Login)
	fiberApp.Post("/register", authHandler.Register)

	// Страница заметок и выход (требуют сессию).
	fiberApp.Get("/", notesHandler.Page, session)
	fiberApp.Post("/logout", authHandler.Logout, session)

	// Действия с заметками (требуют сессию).
	notesRoutes := fiberApp.Group("/notes")
	notesRoutes.Use(session)
	notesRoutes.Post("/", notesHandler.Save)
	notesRoutes.Post("/refresh", notesHandler.Refresh)
	notesRoutes.Post("/clear", notesHandler.ClearDraft)
	notesRoutes.Post("/:id/delete", notesHandler.RequestDelete)
	notesRoutes.Post("/:id/confirm", notesHandler.ConfirmDelete)
	notesRoutes.Post("/:id/cancel", notesHandler.CancelDelete)

	// Обработчик для несуществующих маршрутов.
	fiberApp.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Route not found")
	})
}
