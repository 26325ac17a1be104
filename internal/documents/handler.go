package documents

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/extract"
	"resume-match-api/internal/shared/server/respond"
)

const (
	defaultMaxUploadBytes = 10 << 20
	// Multipart framing around the file part.
	multipartSlack = 1 << 20
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. maxUploadBytes <= 0 selects 10 MiB.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract-text", h.extractText)
}

func (h *Handler) extractText(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartSlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			h.tooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, "missing_file", "No file uploaded")
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		h.tooLarge(c)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read uploaded file")
		return
	}

	result, err := h.Svc.ExtractText(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_type", extract.UserMessage(err))
		case errors.Is(err, extract.ErrEmptyContent):
			respond.Error(c, http.StatusBadRequest, "empty_content", extract.UserMessage(err))
		case errors.Is(err, extract.ErrConversion):
			respond.Error(c, http.StatusBadRequest, "conversion_failed", extract.UserMessage(err))
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to extract text from file")
		}
		return
	}

	respond.OK(c, result)
}

func (h *Handler) tooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the maximum upload size")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
