// Package storage defines the object storage interface for note attachments.
package storage

import (
	"context"
	"io"
)

// BlobStore определяет интерфейс объектного хранилища для изображений заметок.
type BlobStore interface {
	Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (string, error)

	SignedURL(ctx context.Context, path string) (string, error)

	Remove(ctx context.Context, path string) error
}
