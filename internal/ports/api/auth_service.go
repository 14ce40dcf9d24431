// Package api определяет входные порты приложения.
package api

import (
	"context"

	"github.com/Dommgrand/notesapp/internal/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string) (*services.UserSession, error)

	Login(ctx context.Context, email, password string) (*services.UserSession, error)

	Logout(ctx context.Context, token string) error

	CurrentUser(ctx context.Context, token string) (*services.Identity, error)
}
