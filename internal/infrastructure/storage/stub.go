// Package storage provides object storage implementations for receipt files.
package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	orderingapp "github.com/ordena/backend/internal/application/ordering"
)

// StubObjectStorage is an in-memory implementation of ObjectStorageService.
// Use this for development and tests when no S3-compatible backend is
// configured; objects do not survive a restart.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated download URLs
	// Defaults to "https://storage.example.com" if not set
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubObjectStorage implements ObjectStorageService
var _ orderingapp.ObjectStorageService = (*StubObjectStorage)(nil)

// PutObject stores the object body in memory
func (s *StubObjectStorage) PutObject(ctx context.Context, storageKey, contentType string, body io.Reader, size int64) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	if body == nil {
		return errors.New("object body is required")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

// DeleteObject removes a stored object; deleting a missing key succeeds
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// GenerateDownloadURL generates a stub download URL
func (s *StubObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)

	return url, expiresAt, nil
}

// ObjectExists reports whether a key has been stored
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// GetObject returns a stored object's bytes (for testing)
func (s *StubObjectStorage) GetObject(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}

// Keys returns the stored object keys (for testing)
func (s *StubObjectStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
