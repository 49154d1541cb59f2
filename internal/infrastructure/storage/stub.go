package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/jewelry/backend/internal/application/catalog"
)

// StubImageStorage is used when no bucket is configured. Upload URLs point at
// BaseURL and every key reported as uploaded is accepted, so the admin image
// flow works in development without object storage.
type StubImageStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted map[string]bool
}

// NewStubImageStorage creates a stub rooted at baseURL
func NewStubImageStorage(baseURL string) *StubImageStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/jewelry-images"
	}
	return &StubImageStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		deleted: make(map[string]bool),
	}
}

var _ catalogapp.ImageStorage = (*StubImageStorage)(nil)

// PresignUpload returns a fake upload URL
func (s *StubImageStorage) PresignUpload(_ context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{}
	q.Set("content_type", contentType)
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return s.BaseURL + "/upload/" + key + "?" + q.Encode(), expiresAt, nil
}

// PublicURL joins the base URL and key
func (s *StubImageStorage) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

// ObjectExists reports true for any key that was not deleted
func (s *StubImageStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.deleted[key], nil
}

// DeleteObject remembers the key as gone
func (s *StubImageStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[key] = true
	return nil
}
