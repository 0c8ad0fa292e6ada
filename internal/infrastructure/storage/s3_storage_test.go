package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:           true,
		Bucket:            "crm-test",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Region:            "us-east-1",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Endpoint = ""
		cfg.Region = ""
		cfg.PresignExpiration = 0
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
		assert.Equal(t, "crm-test", s.Bucket())
	})

	t.Run("options", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(), WithLogger(zaptest.NewLogger(t)), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_PresignedURLs(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()
	key := ReceiptKey(uuid.New(), uuid.New(), "taxi.pdf")

	t.Run("upload", func(t *testing.T) {
		u, expiresAt, err := s.GenerateUploadURL(ctx, key, "application/pdf", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:9000/crm-test/tenants/"))
		assert.Contains(t, u, "X-Amz-Signature=")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("download", func(t *testing.T) {
		u, expiresAt, err := s.GenerateDownloadURL(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Contains(t, u, "taxi.pdf")
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	})

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.GenerateUploadURL(ctx, "", "text/plain", 0)
		assert.ErrorIs(t, err, ErrEmptyKey)
		_, _, err = s.GenerateDownloadURL(ctx, "", 0)
		assert.ErrorIs(t, err, ErrEmptyKey)
		assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrEmptyKey)
		assert.ErrorIs(t, s.Upload(ctx, "", nil, ""), ErrEmptyKey)
		_, err = s.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
}

// Runs against a local MinIO/RustFS when CRM_STORAGE_INTEGRATION=1
func TestS3ObjectStorage_Integration(t *testing.T) {
	if os.Getenv("CRM_STORAGE_INTEGRATION") != "1" {
		t.Skip("set CRM_STORAGE_INTEGRATION=1 with MinIO on localhost:9000 to run")
	}
	cfg := testStorageConfig()
	cfg.AccessKey = os.Getenv("CRM_STORAGE_ACCESS_KEY")
	cfg.SecretKey = os.Getenv("CRM_STORAGE_SECRET_KEY")

	ctx := context.Background()
	st, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	key := ImportArchiveKey(uuid.New(), uuid.New(), "contacts.csv", time.Now())
	require.NoError(t, st.Upload(ctx, key, []byte("first_name,last_name\nAda,Lovelace\n"), "text/csv"))

	exists, err := st.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, st.DeleteObject(ctx, key))
	exists, err = st.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
