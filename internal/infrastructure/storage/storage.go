// Package storage keeps import files and expense receipts in S3-compatible
// object storage, or in memory when no storage backend is configured.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	infraconfig "github.com/crm/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyKey is returned for operations without an object key
var ErrEmptyKey = errors.New("storage key is required")

// ObjectStorage is the object store used by the application
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

var (
	_ ObjectStorage = (*S3ObjectStorage)(nil)
	_ ObjectStorage = (*MemoryObjectStorage)(nil)
)

// New returns S3 storage when enabled, making sure the bucket exists,
// and in-memory storage otherwise.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Object storage disabled, using in-memory storage")
		return NewMemoryObjectStorage(), nil
	}
	s3Storage, err := NewS3ObjectStorage(cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("Object storage ready",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)
	return s3Storage, nil
}

// ReceiptKey is the object key of an expense receipt
func ReceiptKey(tenantID, expenseID uuid.UUID, fileName string) string {
	return path.Join("tenants", tenantID.String(), "receipts", expenseID.String(), SanitizeFileName(fileName))
}

// ImportArchiveKey is the object key under which an uploaded import file is kept
func ImportArchiveKey(tenantID, sessionID uuid.UUID, fileName string, at time.Time) string {
	return path.Join("tenants", tenantID.String(), "imports", at.UTC().Format("2006/01"), sessionID.String(), SanitizeFileName(fileName))
}

// SanitizeFileName keeps the base name with only URL-safe characters
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	if out == "" {
		return "file"
	}
	return out
}

// ContentTypeFor guesses a content type for common receipt and import files
func ContentTypeFor(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

func requireKey(storageKey string) error {
	if storageKey == "" {
		return ErrEmptyKey
	}
	return nil
}

func objectNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey")
}

func wrap(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, err)
}
