package services

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound возвращается, когда сессия не существует или истекла.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore определяет серверный реестр активных сессий.
// Токен без записи в реестре считается отозванным.
type SessionStore interface {
	Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error

	UserID(ctx context.Context, sessionID string) (string, error)

	Revoke(ctx context.Context, sessionID string) error
}
