package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/utafrali/apparelstore/internal/storage"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// Upload limits and messages.
const (
	MaxUploadSize      int64 = 5 << 20
	ImageCacheControl        = "max-age=3600"
	MsgNoFile                = "No file provided"
	MsgNotAnImage            = "File must be an image"
	MsgFileTooLarge          = "File size must be less than 5MB"
	uploadSuffixLength       = 6
	uploadSuffixAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/avif": "avif",
}

// UploadInput is one multipart file.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadedImage is the stored object as returned to the back office.
type UploadedImage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadService stores product images.
type UploadService struct {
	storage storage.Storage
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time
}

// NewUploadService creates a new upload service. A non-positive maxSize
// falls back to MaxUploadSize.
func NewUploadService(store storage.Storage, maxSize int64, logger *slog.Logger) *UploadService {
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}
	return &UploadService{storage: store, maxSize: maxSize, logger: logger, now: time.Now}
}

// Upload validates the file and stores it under a fresh name. Names are
// never reused, so an existing object is never overwritten.
func (s *UploadService) Upload(ctx context.Context, input *UploadInput) (*UploadedImage, error) {
	if input == nil || input.Data == nil {
		return nil, apperrors.InvalidInput(MsgNoFile)
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, apperrors.InvalidInput(MsgNotAnImage)
	}
	if input.Size > s.maxSize {
		return nil, apperrors.InvalidInput(MsgFileTooLarge)
	}

	name, err := s.objectName(input.FileName, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("generate object name: %w", err)
	}

	result, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:          name,
		ContentType:  input.ContentType,
		CacheControl: ImageCacheControl,
		Size:         input.Size,
		Data:         io.LimitReader(input.Data, s.maxSize+1),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	s.logger.InfoContext(ctx, "image uploaded",
		slog.String("filename", result.Key),
		slog.Int64("size", input.Size),
	)
	return &UploadedImage{URL: result.URL, Filename: result.Key}, nil
}

// objectName builds "<unix-millis>_<random6>.<ext>". The extension comes from
// the original file name, or from the content type when the name has none.
func (s *UploadService) objectName(fileName, contentType string) (string, error) {
	suffix, err := randomString(uploadSuffixLength)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		ext = imageExtensions[contentType]
	}
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = strings.TrimPrefix(exts[0], ".")
		} else {
			ext = strings.TrimPrefix(contentType, "image/")
		}
	}
	return fmt.Sprintf("%d_%s.%s", s.now().UnixMilli(), suffix, ext), nil
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(uploadSuffixAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = uploadSuffixAlphabet[idx.Int64()]
	}
	return string(b), nil
}
