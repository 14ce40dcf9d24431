// Package services defines service interfaces for sessions and passwords.
package services

import (
	"context"
	"time"
)

// Claims содержит данные сессии, переносимые в токене.
type Claims struct {
	UserID    string
	Username  string
	SessionID string
}

// Session описывает выпущенный токен сессии.
type Session struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// TokenService определяет интерфейс для операций с токенами сессии.
type TokenService interface {
	Issue(ctx context.Context, userID, username string) (*Session, error)

	Parse(ctx context.Context, token string) (*Claims, error)
}
