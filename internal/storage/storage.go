package storage

import (
	"context"
	"io"
)

// Storage defines the interface for product image storage.
type Storage interface {
	// Upload stores an object under input.Key. Existing keys are never
	// overwritten; a clash yields apperrors.ErrConflict.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes an object by its key.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the URL the storefront uses to load key.
	PublicURL(key string) string

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Key          string
	ContentType  string
	CacheControl string
	Size         int64
	Data         io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}
