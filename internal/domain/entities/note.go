// Package entities defines the domain entities for the notes application.
package entities

import (
	"errors"
	"time"
)

// ErrNoteNotFound возвращается, когда заметка не существует или принадлежит другому пользователю.
var ErrNoteNotFound = errors.New("note not found")

// Note представляет собой заметку пользователя.
// Значение неизменяемо: прикрепление изображения возвращает новое значение
// из хранилища вместо мутации существующего.
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	ImagePath string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasImage сообщает, прикреплено ли к заметке изображение.
func (n Note) HasImage() bool {
	return n.ImagePath != ""
}
