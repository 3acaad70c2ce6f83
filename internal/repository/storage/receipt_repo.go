package storage

import (
	"context"
	"io"
	"time"
)

// ReceiptRepository abstracts object storage for transaction receipt images
type ReceiptRepository interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
