// Package services содержит доменные ошибки сервисного уровня.
package services

import (
	"errors"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
)

// UserSession представляет выданную пользовательскую сессию.
type UserSession struct {
	UserID    string
	Username  string
	Token     string
	ExpiresAt time.Time
}

// Identity описывает аутентифицированного пользователя запроса.
type Identity struct {
	UserID    string
	Username  string
	SessionID string
}
