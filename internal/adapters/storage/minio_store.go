// Package storage содержит адаптер объектного хранилища на основе MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/Dommgrand/notesapp/internal/ports/storage"
	"github.com/Dommgrand/notesapp/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogConnecting    = "connecting to object storage"
	LogConnected     = "successfully connected to object storage"
	LogBucketCreated = "storage bucket created"
)

// Константы для сообщений об ошибках.
const (
	ErrCreateClient  = "failed to create storage client"
	ErrCheckBucket   = "failed to check bucket existence"
	ErrCreateBucket  = "failed to create bucket"
	ErrUploadObject  = "failed to upload object"
	ErrPresignObject = "failed to presign object url"
	ErrRemoveObject  = "failed to remove object"
)

// Config содержит настройки подключения к объектному хранилищу.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLTTL    time.Duration
}

// MinioStore реализует интерфейс storage.BlobStore поверх MinIO.
type MinioStore struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
}

// NewMinioStore создает клиент хранилища и гарантирует существование бакета.
func NewMinioStore(ctx context.Context, cfg Config) (storage.BlobStore, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogConnecting,
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Error(ctx, ErrCreateClient, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreateClient, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Error(ctx, ErrCheckBucket, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCheckBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Error(ctx, ErrCreateBucket, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrCreateBucket, err)
		}
		log.Info(ctx, LogBucketCreated, zap.String("bucket", cfg.Bucket))
	}

	log.Info(ctx, LogConnected)
	return &MinioStore{client: client, bucket: cfg.Bucket, urlTTL: cfg.URLTTL}, nil
}

// Upload загружает объект и возвращает его путь в хранилище.
func (s *MinioStore) Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "Upload"), zap.String("path", path))

	_, err := s.client.PutObject(ctx, s.bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Error(ctx, ErrUploadObject, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrUploadObject, err)
	}

	log.Debug(ctx, "object uploaded", zap.Int64("size", size))
	return path, nil
}

// SignedURL возвращает подписанную ссылку на объект с ограниченным временем жизни.
func (s *MinioStore) SignedURL(ctx context.Context, path string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "SignedURL"), zap.String("path", path))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, s.urlTTL, nil)
	if err != nil {
		log.Error(ctx, ErrPresignObject, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrPresignObject, err)
	}

	return u.String(), nil
}

// Remove удаляет объект из хранилища.
func (s *MinioStore) Remove(ctx context.Context, path string) error {
	log := logger.Log(ctx).With(zap.String("method", "Remove"), zap.String("path", path))

	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		log.Error(ctx, ErrRemoveObject, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrRemoveObject, err)
	}

	return nil
}
