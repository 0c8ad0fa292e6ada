package storage

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// MemoryObjectStorage keeps objects in process memory. It backs development
// setups without S3: uploads made through Upload can be read back, and
// presigned URLs point at a placeholder host.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "http://storage.local",
		objects: make(map[string]memoryObject),
	}
}

// Upload stores a copy of data
func (m *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if err := requireKey(storageKey); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	m.objects[storageKey] = memoryObject{data: buf, contentType: contentType}
	m.mu.Unlock()
	return nil
}

// Get returns a stored object
func (m *MemoryObjectStorage) Get(storageKey string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	return obj.data, obj.contentType, ok
}

// GenerateUploadURL returns a placeholder URL. The object is not created
// until Upload is called.
func (m *MemoryObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return m.url("upload", storageKey, expiresIn)
}

// GenerateDownloadURL returns a placeholder URL
func (m *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return m.url("download", storageKey, expiresIn)
}

// DeleteObject removes an object
func (m *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if err := requireKey(storageKey); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.objects, storageKey)
	m.mu.Unlock()
	return nil
}

// ObjectExists reports whether Upload stored the key
func (m *MemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if err := requireKey(storageKey); err != nil {
		return false, err
	}
	_, _, ok := m.Get(storageKey)
	return ok, nil
}

func (m *MemoryObjectStorage) url(op, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if err := requireKey(storageKey); err != nil {
		return "", time.Time{}, err
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	u := m.BaseURL + "/" + op + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return u, expiresAt, nil
}
