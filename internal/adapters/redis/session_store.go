// Package redis содержит Redis-реализацию реестра сессий.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/ports/services"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodPut    = "Put"
	LogMethodUserID = "UserID"
	LogMethodRevoke = "Revoke"

	ErrorFailedToPut    = "failed to store session in redis"
	ErrorFailedToGet    = "failed to get session from redis"
	ErrorFailedToRevoke = "failed to revoke session in redis"
)

const sessionKeyPrefix = "session:"

// SessionStore реализует интерфейс services.SessionStore поверх Redis.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore создает новый реестр сессий.
func NewSessionStore(client *redis.Client) services.SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Put регистрирует сессию с заданным временем жизни.
func (s *SessionStore) Put(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodPut), zap.String("sessionID", sessionID))

	if err := s.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err(); err != nil {
		log.Error(ctx, ErrorFailedToPut, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToPut, err)
	}

	return nil
}

// UserID возвращает владельца активной сессии.
// Отсутствующая или истекшая сессия отображается в services.ErrSessionNotFound.
func (s *SessionStore) UserID(ctx context.Context, sessionID string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodUserID), zap.String("sessionID", sessionID))

	value, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", services.ErrSessionNotFound
		}
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	return value, nil
}

// Revoke удаляет сессию из реестра.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodRevoke), zap.String("sessionID", sessionID))

	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		log.Error(ctx, ErrorFailedToRevoke, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRevoke, err)
	}

	return nil
}
