package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/utafrali/apparelstore/internal/storage"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// Object is a stored file.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Data         []byte
}

// Storage implements storage.Storage using an in-memory map. It is used in
// tests and local development.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]*Object
	baseURL string
}

// New creates a new in-memory storage instance serving URLs under baseURL.
func New(baseURL string) *Storage {
	return &Storage{
		objects: make(map[string]*Object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores the object bytes and returns the public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[input.Key]; exists {
		return nil, apperrors.Conflict("object already exists: " + input.Key)
	}
	s.objects[input.Key] = &Object{
		Key:          input.Key,
		ContentType:  input.ContentType,
		CacheControl: input.CacheControl,
		Data:         data,
	}

	return &storage.UploadResult{Key: input.Key, URL: s.PublicURL(input.Key)}, nil
}

// Delete removes an object.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		return apperrors.NotFound("object", key)
	}
	delete(s.objects, key)
	return nil
}

func (s *Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/media/%s", s.baseURL, key)
}

func (s *Storage) Ping(context.Context) error { return nil }

// Get returns a copy of a stored object.
func (s *Storage) Get(key string) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	cp := *obj
	cp.Data = bytes.Clone(obj.Data)
	return &cp, true
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// ServeHTTP serves stored objects under /media/ so locally uploaded images
// resolve without a bucket.
func (s *Storage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.Get(strings.TrimPrefix(r.URL.Path, "/media/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	if obj.CacheControl != "" {
		w.Header().Set("Cache-Control", obj.CacheControl)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
