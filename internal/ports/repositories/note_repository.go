package repositories

import (
	"context"

	"github.com/Dommgrand/notesapp/internal/domain/entities"
)

// NoteRepository определяет интерфейс для работы с хранилищем заметок.
// Все операции ограничены владельцем: noteID чужого пользователя
// неотличим от несуществующего и отображается в entities.ErrNoteNotFound.
type NoteRepository interface {
	Create(ctx context.Context, userID, title, content string) (entities.Note, error)
	ListByUser(ctx context.Context, userID string) ([]entities.Note, error)
	AttachImage(ctx context.Context, noteID, userID, imagePath string) (entities.Note, error)
	Delete(ctx context.Context, noteID, userID string) error
}
