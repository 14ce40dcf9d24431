// Package redis предоставляет подключение к Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogConnecting = "connecting to Redis"
	LogConnected  = "successfully connected to Redis"
)

// ErrPingRedis - сообщение об ошибке соединения.
const ErrPingRedis = "failed to connect to Redis"

const defaultConnectTimeout = 5 * time.Second

// Config содержит настройки подключения к Redis.
type Config struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	MinIdle        int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// New создает клиент Redis и проверяет соединение.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogConnecting, zap.String("addr", cfg.Addr))

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdle,
		DialTimeout:  cfg.ConnectTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Error(ctx, ErrPingRedis, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPingRedis, err)
	}

	log.Info(ctx, LogConnected)
	return client, nil
}
