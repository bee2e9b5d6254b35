package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	payrollapp "github.com/payops/backend/internal/application/payroll"
)

var _ payrollapp.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage keeps uploaded registers in memory. Used when no
// storage bucket is configured, so exports still work in development
// without an S3 backend.
type StubObjectStorage struct {
	// BaseURL prefixes the synthesized download URLs.
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubObjectStorage creates an empty in-memory store.
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.invalid",
		objects: make(map[string][]byte),
	}
}

// Upload stores the object in memory, replacing any previous version.
func (s *StubObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[storageKey] = buf
	s.mu.Unlock()
	return nil
}

// GenerateDownloadURL synthesizes a URL for a stored object. The URL is
// not dereferenceable; callers only need its shape and expiry.
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, errors.New("object not found: " + storageKey)
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/" + storageKey, expiresAt, nil
}

// DeleteObject removes the object if present. Deleting a missing key is
// not an error, matching S3 semantics.
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists reports whether the key has been uploaded.
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	return ok, nil
}

// Object returns a stored object's bytes, for test assertions.
func (s *StubObjectStorage) Object(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}
