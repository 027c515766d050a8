package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
)

// UploadHandler handles product image uploads.
type UploadHandler struct {
	service *service.UploadService
	maxSize int64
	logger  *slog.Logger
}

// NewUploadHandler creates a new upload HTTP handler.
func NewUploadHandler(svc *service.UploadService, maxSize int64, logger *slog.Logger) *UploadHandler {
	if maxSize <= 0 {
		maxSize = service.MaxUploadSize
	}
	return &UploadHandler{service: svc, maxSize: maxSize, logger: logger}
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Upload handles POST /api/v1/admin/upload (multipart/form-data, field "file").
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Allow 1MB on top of the file for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+(1<<20))

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", service.MsgFileTooLarge)
			return
		}
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", service.MsgNoFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_INPUT", service.MsgNoFile)
		return
	}
	defer file.Close()

	img, err := h.service.Upload(r.Context(), &service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, uploadResponse{Success: true, URL: img.URL, Filename: img.Filename})
}
