package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/domain/entities"
	"github.com/Dommgrand/notesapp/internal/ports/repositories"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

const noteColumns = `id, user_id, title, content, image_path, created_at, updated_at`

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	pool PgxPoolInterface
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool PgxPoolInterface) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create сохраняет новую заметку без изображения.
func (r *NoteRepository) Create(ctx context.Context, userID, title, content string) (entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.String("userID", userID))

	var note entities.Note
	err := r.pool.QueryRow(ctx,
		`INSERT INTO notes (user_id, title, content) VALUES ($1, $2, $3) RETURNING `+noteColumns,
		userID, title, content,
	).Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.ImagePath, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return entities.Note{}, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", note.ID))
	return note, nil
}

// ListByUser возвращает заметки пользователя в порядке создания.
func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListByUser"))
	log.Debug(ctx, "listing notes", zap.String("userID", userID))

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+`
         FROM notes
         WHERE user_id = $1
         ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]entities.Note, 0)
	for rows.Next() {
		var note entities.Note
		err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.ImagePath, &note.CreatedAt, &note.UpdatedAt)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

// AttachImage прикрепляет путь изображения к заметке и возвращает обновленное значение.
func (r *NoteRepository) AttachImage(ctx context.Context, noteID, userID, imagePath string) (entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.AttachImage"))
	log.Debug(ctx, "attaching image", zap.String("noteID", noteID), zap.String("imagePath", imagePath))

	var note entities.Note
	err := r.pool.QueryRow(ctx,
		`UPDATE notes
         SET image_path = $3, updated_at = now()
         WHERE id = $1 AND user_id = $2
         RETURNING `+noteColumns,
		noteID, userID, imagePath,
	).Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.ImagePath, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found for image attach", zap.String("noteID", noteID))
			return entities.Note{}, entities.ErrNoteNotFound
		}
		log.Error(ctx, "failed to attach image", zap.Error(err))
		return entities.Note{}, fmt.Errorf("failed to attach image: %w", err)
	}

	return note, nil
}

// Delete удаляет заметку пользователя.
func (r *NoteRepository) Delete(ctx context.Context, noteID, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))
	log.Debug(ctx, "deleting note", zap.String("noteID", noteID), zap.String("userID", userID))

	result, err := r.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
		noteID, userID,
	)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found for deletion", zap.String("noteID", noteID))
		return entities.ErrNoteNotFound
	}

	return nil
}
