package logger

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrLoggerNotFound возвращается, когда logger отсутствует в контексте.
var ErrLoggerNotFound = errors.New("logger not found in context")

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// NewContext возвращает контекст с добавленным logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext извлекает logger из контекста.
func FromContext(ctx context.Context) (*Logger, error) {
	l, ok := ctx.Value(loggerKey).(*Logger)
	if !ok || l == nil {
		return nil, ErrLoggerNotFound
	}
	return l, nil
}

// InitGlobalLogger инициализирует глобальный logger для окружения.
func InitGlobalLogger(env Environment) error {
	return InitGlobalLoggerWithLevel(env, "")
}

// InitGlobalLoggerWithLevel инициализирует глобальный logger с явным уровнем.
func InitGlobalLoggerWithLevel(env Environment, level string) error {
	l, err := NewLogger(env, level)
	if err != nil {
		return err
	}

	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()

	return nil
}

// SetGlobalLogger заменяет глобальный logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Log возвращает logger из контекста, глобальный logger или запасной no-op.
func Log(ctx context.Context) *Logger {
	if l, err := FromContext(ctx); err == nil {
		return l
	}

	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()

	if l != nil {
		return l
	}

	return &Logger{l: zap.NewNop()}
}
