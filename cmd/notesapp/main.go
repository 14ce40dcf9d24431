package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	httpServer "github.com/Dommgrand/notesapp/internal/adapters/http"
	"github.com/Dommgrand/notesapp/internal/adapters/http/auth"
	"github.com/Dommgrand/notesapp/internal/adapters/http/render"
	pgadapter "github.com/Dommgrand/notesapp/internal/adapters/postgres"
	redisadapter "github.com/Dommgrand/notesapp/internal/adapters/redis"
	svcadapter "github.com/Dommgrand/notesapp/internal/adapters/services"
	storageadapter "github.com/Dommgrand/notesapp/internal/adapters/storage"
	"github.com/Dommgrand/notesapp/internal/app"
	"github.com/Dommgrand/notesapp/internal/config"
	pgdb "github.com/Dommgrand/notesapp/pkg/db/postgres"
	redisdb "github.com/Dommgrand/notesapp/pkg/db/redis"
	"github.com/Dommgrand/notesapp/pkg/logger"
	"github.com/Dommgrand/notesapp/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTESAPP_LOGGER_MODE"
	EnvLoggerLevel = "NOTESAPP_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrConnectPostgres      = "failed to connect to Postgres"
	ErrApplyMigrations      = "failed to apply database migrations"
	ErrConnectRedis         = "failed to create Redis client"
	ErrConnectStorage       = "failed to connect to object storage"
	ErrInitRenderer         = "failed to initialize page renderer"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notes service started"
	LogServiceShutdownDone = "notes service shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitDatabase        = "initializing database"
	LogInitCache           = "initializing session store"
	LogInitStorage         = "initializing object storage"
	LogInitServices        = "initializing services"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitDatabase)
		database, err := pgdb.New(ctx, cfg.Postgres.GetDSN(),
			cfg.Postgres.MinConn, cfg.Postgres.MaxConn, cfg.Postgres.ConnectAttempts)
		if err != nil {
			log.Error(ctx, ErrConnectPostgres, zap.Error(err))
			exitCode = 1
			return
		}

		if err := pgdb.MigrateDSN(ctx, cfg.Postgres.GetConnectionURL(), cfg.Postgres.MigrationsPath); err != nil {
			log.Error(ctx, ErrApplyMigrations, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitCache)
		redisClient, err := redisdb.New(ctx, redisdb.Config{
			Addr:           cfg.Redis.GetAddress(),
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			PoolSize:       cfg.Redis.PoolSize,
			MinIdle:        cfg.Redis.MinIdle,
			ConnectTimeout: cfg.Redis.ConnectTimeout,
			ReadTimeout:    cfg.Redis.ReadTimeout,
			WriteTimeout:   cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Error(ctx, ErrConnectRedis, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitStorage)
		blobStore, err := storageadapter.NewMinioStore(ctx, storageadapter.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			URLTTL:    cfg.Storage.GetURLTTL(),
		})
		if err != nil {
			log.Error(ctx, ErrConnectStorage, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitServices)
		userRepo := pgadapter.NewUserRepository(database.Pool())
		noteRepo := pgadapter.NewNoteRepository(database.Pool())
		sessionStore := redisadapter.NewSessionStore(redisClient)
		tokenService := svcadapter.NewJWT(cfg.Session.SecretKey, cfg.Session.GetTTL())
		passwordService := svcadapter.NewBcrypt(cfg.Session.BCryptCost)

		authService := app.NewAuthUseCase(userRepo, passwordService, tokenService, sessionStore)
		flows := app.NewRegistry(noteRepo, blobStore)

		renderer, err := render.New()
		if err != nil {
			log.Error(ctx, ErrInitRenderer, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			BodyLimit:    cfg.HTTP.MaxUploadSize,
		})

		httpServer.SetupRouter(fiberApp, authService, flows, renderer, auth.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		shutdown.Wait(cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return fiberApp.Shutdown()
			},
			// Закрытие подключения к базе данных.
			func(ctx context.Context) error {
				log.Info(ctx, "Closing database connection")
				database.Close(ctx)
				return nil
			},
			// Закрытие Redis соединения.
			func(ctx context.Context) error {
				log.Info(ctx, "Closing Redis connection")
				return redisClient.Close()
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
