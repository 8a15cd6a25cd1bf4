package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultPresignedURLExpiry applies when a caller passes a non-positive expiry.
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrObjectKeyRequired is returned when an operation is called without a key.
var ErrObjectKeyRequired = errors.New("object key is required")

// FileStorage holds exercise demo videos. Clients upload and download
// through presigned URLs; the API never proxies the bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a PUT URL bound to contentType.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject succeeds for keys that no longer exist.
	DeleteObject(ctx context.Context, objectKey string) error
}
