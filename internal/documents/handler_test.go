package documents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/bootstrap"
	"resume-match-api/internal/documents"
	"resume-match-api/internal/shared/config"
)

func TestExtractTextThroughRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		Env:             "dev",
		MaxUploadBytes:  1 << 20,
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	body, contentType := multipartBody(t, "resume.txt", "text/plain; charset=utf-8", []byte("  Go engineer with Postgres experience  "))
	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got struct {
		Text     string `json:"text"`
		FileName string `json:"fileName"`
		FileSize int64  `json:"fileSize"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Text != "Go engineer with Postgres experience" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.FileName != "resume.txt" || got.FileSize != 40 {
		t.Fatalf("unexpected metadata: %+v", got)
	}
}

func TestExtractTextErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		fileName   string
		mimeType   string
		data       []byte
		noFile     bool
		wantStatus int
		wantCode   string
	}{
		{name: "missing file", noFile: true, wantStatus: http.StatusBadRequest, wantCode: "missing_file"},
		{name: "unsupported", fileName: "photo.png", mimeType: "image/png", data: []byte("png"), wantStatus: http.StatusBadRequest, wantCode: "unsupported_type"},
		{name: "undeclared type", fileName: "cv.txt", mimeType: "application/octet-stream", data: []byte("hello resume"), wantStatus: http.StatusBadRequest, wantCode: "unsupported_type"},
		{name: "empty text", fileName: "blank.txt", mimeType: "text/plain", data: []byte("   "), wantStatus: http.StatusBadRequest, wantCode: "empty_content"},
		{name: "zero byte file", fileName: "blank.txt", mimeType: "text/plain", data: []byte{}, wantStatus: http.StatusBadRequest, wantCode: "empty_content"},
		{name: "broken pdf", fileName: "cv.pdf", mimeType: "application/pdf", data: []byte("nope"), wantStatus: http.StatusBadRequest, wantCode: "conversion_failed"},
		{name: "too large", fileName: "big.txt", mimeType: "text/plain", data: bytes.Repeat([]byte("a"), 64), wantStatus: http.StatusRequestEntityTooLarge, wantCode: "file_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			documents.NewHandler(documents.NewService(), 32).RegisterRoutes(router.Group("/api"))

			var (
				body        *bytes.Buffer
				contentType string
			)
			if tt.noFile {
				body = &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				if err := writer.WriteField("other", "value"); err != nil {
					t.Fatalf("write field: %v", err)
				}
				if err := writer.Close(); err != nil {
					t.Fatalf("close writer: %v", err)
				}
				contentType = writer.FormDataContentType()
			} else {
				body, contentType = multipartBody(t, tt.fileName, tt.mimeType, tt.data)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/extract-text", body)
			req.Header.Set("Content-Type", contentType)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			var payload map[string]string
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if payload["code"] != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, payload["code"])
			}
			if payload["error"] == "" {
				t.Fatalf("expected human readable error")
			}
		})
	}
}

func TestExtractTextUnexpectedFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &documents.Service{Extract: func(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
		return "", errors.New("disk on fire")
	}}
	router := gin.New()
	documents.NewHandler(svc, 0).RegisterRoutes(router.Group("/api"))

	body, contentType := multipartBody(t, "cv.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("disk on fire")) {
		t.Fatalf("internal error detail leaked: %s", resp.Body.String())
	}
}

func multipartBody(t *testing.T, fileName, mimeType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}
