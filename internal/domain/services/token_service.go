package services

import "errors"

// Ошибки, связанные с токенами сессии.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token has expired")
	ErrIssuingToken = errors.New("failed to issue session token")
)
