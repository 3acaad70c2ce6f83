package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dompetku/dompetku-backend/internal/repository/storage"
	"github.com/google/uuid"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	ReceiptMaxWidth  = 1200
	ReceiptURLExpiry = 15 * time.Minute
	receiptQuality   = 85
)

var (
	ErrReceiptTooLarge          = errors.New("file too large. Maximum size is 5MB")
	ErrReceiptInvalidFormat     = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptInvalidData       = errors.New("invalid image data")
	ErrReceiptStorageNotEnabled = errors.New("receipt storage not configured")
)

// allowedReceiptExtensions maps extensions to their content types
var allowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptService validates, normalizes and stores transaction receipt images
type ReceiptService struct {
	storage storage.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository) *ReceiptService {
	return &ReceiptService{storage: storage}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Upload validates a receipt image, downsizes it, stores it under a fresh
// object key scoped to the owner, and returns that key.
func (s *ReceiptService) Upload(ctx context.Context, userID int32, transactionID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptStorageNotEnabled
	}

	if len(data) > MaxReceiptSize {
		return "", ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedReceiptExtensions[ext]; !ok {
		return "", ErrReceiptInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrReceiptInvalidData
	}

	// Receipts never need more than display resolution
	if img.Bounds().Dx() > ReceiptMaxWidth {
		img = imaging.Resize(img, ReceiptMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: receiptQuality}); err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := fmt.Sprintf("receipts/%d/%d/%s.jpg", userID, transactionID, uuid.New().String())
	if err := s.storage.Upload(ctx, key, &buf, "image/jpeg", int64(buf.Len())); err != nil {
		return "", err
	}

	return key, nil
}

// Delete removes a stored receipt object
func (s *ReceiptService) Delete(ctx context.Context, key string) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotEnabled
	}
	return s.storage.Delete(ctx, key)
}

// URL returns a time-limited download URL for a stored receipt
func (s *ReceiptService) URL(ctx context.Context, key string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrReceiptStorageNotEnabled
	}
	return s.storage.PresignedURL(ctx, key, ReceiptURLExpiry)
}
