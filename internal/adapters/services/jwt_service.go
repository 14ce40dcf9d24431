// Package services provides implementations of session token and password services.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/domain/services"
	svc "github.com/Dommgrand/notesapp/internal/ports/services"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Константы для работы с токенами сессии.
const (
	methodIssue = "Issue"
	methodParse = "Parse"

	msgIssuingToken = "issuing session token"
	msgTokenIssued  = "session token issued"
	msgParsingToken = "parsing session token"
	msgTokenParsed  = "session token parsed"
	msgInvalidToken = "invalid token format"
	msgTokenExpired = "token has expired"

	//nolint:gosec
	errSigningToken = "error signing token"
	//nolint:gosec
	errParsingToken = "error parsing token"

	errCtxIssuingToken = "issuing token"
	errCtxParsingToken = "parsing token"
)

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
// Идентификатор сессии переносится в зарегистрированном claim jti.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс TokenService.
type ServiceJWT struct {
	secretKey  []byte
	sessionTTL time.Duration
}

// NewJWT создает новый экземпляр сервиса токенов сессии.
func NewJWT(secretKey string, sessionTTL time.Duration) svc.TokenService {
	return &ServiceJWT{
		secretKey:  []byte(secretKey),
		sessionTTL: sessionTTL,
	}
}

// Issue выпускает токен сессии с уникальным идентификатором сессии.
func (s *ServiceJWT) Issue(ctx context.Context, userID, username string) (*svc.Session, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodIssue),
		zap.String("userID", userID),
	)
	log.Debug(ctx, msgIssuingToken)

	if len(s.secretKey) == 0 {
		log.Error(ctx, "empty secret key provided")
		return nil, fmt.Errorf("%s: %w: empty secret key", errCtxIssuingToken, services.ErrIssuingToken)
	}

	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)
	sessionID := uuid.NewString()

	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxIssuingToken, services.ErrIssuingToken, err)
	}

	log.Debug(ctx, msgTokenIssued, zap.Time("expiresAt", expiresAt))
	return &svc.Session{Token: tokenString, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// Parse проверяет токен сессии и возвращает его claims.
func (s *ServiceJWT) Parse(ctx context.Context, tokenString string) (*svc.Claims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodParse))
	log.Debug(ctx, msgParsingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		if strings.Contains(err.Error(), "token is expired") {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxParsingToken, services.ErrExpiredToken)
		}
		log.Error(ctx, errParsingToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, msgInvalidToken)
		return nil, fmt.Errorf("%s: %w", errCtxParsingToken, services.ErrInvalidToken)
	}

	if claims.UserID == "" || claims.ID == "" {
		log.Debug(ctx, "required claim is empty")
		return nil, fmt.Errorf("%s: %w: empty claim", errCtxParsingToken, services.ErrInvalidToken)
	}

	log.Debug(ctx, msgTokenParsed, zap.String("userID", claims.UserID))
	return &svc.Claims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.ID,
	}, nil
}
