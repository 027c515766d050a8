package objectstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/apparelstore/internal/storage"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
	"github.com/utafrali/apparelstore/pkg/httpclient"
)

const remoteName = "object storage"

// Config holds connection settings for the hosted bucket API.
type Config struct {
	BaseURL string // e.g. https://project.example.co
	Bucket  string
	APIKey  string
}

// Storage implements storage.Storage against a hosted bucket REST API:
//
//	POST   {base}/storage/v1/object/{bucket}/{key}          upload
//	DELETE {base}/storage/v1/object/{bucket}/{key}          delete
//	GET    {base}/storage/v1/bucket/{bucket}                ping
//	       {base}/storage/v1/object/public/{bucket}/{key}   public URL
type Storage struct {
	client httpclient.Doer
	cfg    Config
	logger *slog.Logger
}

// New creates a Storage that sends requests through client.
func New(client httpclient.Doer, cfg Config, logger *slog.Logger) *Storage {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Storage{client: client, cfg: cfg, logger: logger}
}

// Upload streams the object to the bucket with upsert disabled.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(input.Key), input.Data)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = input.Size
	req.Header.Set("Content-Type", input.ContentType)
	if input.CacheControl != "" {
		req.Header.Set("Cache-Control", input.CacheControl)
	}
	req.Header.Set("x-upsert", "false")
	s.authorize(req)

	resp, err := s.do(ctx, req)
	if err != nil {
		return nil, err
	}
	drain(resp)

	s.logger.InfoContext(ctx, "object uploaded",
		slog.String("bucket", s.cfg.Bucket),
		slog.String("key", input.Key),
		slog.Int64("size", input.Size),
	)
	return &storage.UploadResult{Key: input.Key, URL: s.PublicURL(input.Key)}, nil
}

// Delete removes an object from the bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(key), http.NoBody)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	s.authorize(req)

	resp, err := s.do(ctx, req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// PublicURL returns the public download URL of key.
func (s *Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.cfg.BaseURL, url.PathEscape(s.cfg.Bucket), escapeKey(key))
}

// Ping checks that the bucket exists and the API key is accepted.
func (s *Storage) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/storage/v1/bucket/%s", s.cfg.BaseURL, url.PathEscape(s.cfg.Bucket)), http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	s.authorize(req)

	resp, err := s.do(ctx, req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (s *Storage) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		if httpclient.IsRejected(err) {
			return nil, apperrors.ServiceUnavailable("object storage is temporarily unavailable")
		}
		return nil, fmt.Errorf("%s %s: %w", remoteName, req.Method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, remoteName)
	}
	return resp, nil
}

func (s *Storage) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.cfg.BaseURL, url.PathEscape(s.cfg.Bucket), escapeKey(key))
}

func (s *Storage) authorize(req *http.Request) {
	if s.cfg.APIKey == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("apikey", s.cfg.APIKey)
}

// escapeKey escapes each path segment of key, keeping the separators.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
