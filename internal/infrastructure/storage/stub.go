package storage

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/finbook/backend/internal/application/ledger"
)

// Ensure StubObjectStorage implements ObjectStorageService
var _ ledgerapp.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage is a stand-in for environments without object storage.
// It hands out fake URLs and treats every object as present, which is enough
// to exercise the attachment flow in local development.
type StubObjectStorage struct {
	// BaseURL is the fake base for generated URLs
	BaseURL string
}

// NewStubObjectStorage creates a new stub storage service
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.invalid",
	}
}

// GenerateUploadURL returns a fake upload URL
func (s *StubObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, fmt.Errorf("storage key is required")
	}
	url := fmt.Sprintf("%s/upload/%s", s.BaseURL, storageKey)
	return url, time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL returns a fake download URL
func (s *StubObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, fmt.Errorf("storage key is required")
	}
	url := fmt.Sprintf("%s/download/%s", s.BaseURL, storageKey)
	return url, time.Now().Add(expiresIn), nil
}

// DeleteObject pretends to delete an object
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return fmt.Errorf("storage key is required")
	}
	return nil
}

// ObjectExists reports every object as uploaded so attachments can be
// confirmed without a real backend.
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, fmt.Errorf("storage key is required")
	}
	return true, nil
}
