// Package repositories defines repository interfaces for the notes application.
package repositories

import (
	"context"

	"github.com/Dommgrand/notesapp/internal/domain/entities"
)

// UserRepository определяет интерфейс для операций сохранения данных пользователя.
// Методы Find возвращают entities.ErrUserNotFound, когда пользователь не найден.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)
}
