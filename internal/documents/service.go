package documents

import (
	"context"
	"time"

	"resume-match-api/internal/extract"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/telemetry"
)

// Extractor converts raw document bytes to text.
type Extractor func(ctx context.Context, data []byte, mimeType string, fileName string) (string, error)

// Service turns uploaded documents into plain text. Nothing is written to disk.
type Service struct {
	Extract Extractor
}

// NewService returns a Service backed by extract.ExtractTextFromBytes.
func NewService() *Service {
	return &Service{Extract: extract.ExtractTextFromBytes}
}

// ExtractText converts one uploaded file. A zero-byte upload is reported by
// the extractor as empty content.
func (s *Service) ExtractText(ctx context.Context, fileName, mimeType string, data []byte) (extract.Result, error) {
	fn := s.Extract
	if fn == nil {
		fn = extract.ExtractTextFromBytes
	}

	start := time.Now()
	text, err := fn(ctx, data, mimeType, fileName)
	metrics.ObserveExtractionDurationMs(metrics.SinceMillis(start))
	fields := map[string]any{
		"file_name":  fileName,
		"mime_type":  mimeType,
		"size_bytes": len(data),
	}
	if err != nil {
		metrics.IncExtractionFailed()
		fields["error"] = err
		telemetry.Warn("extract.failed", fields)
		return extract.Result{}, err
	}

	metrics.IncExtractionSucceeded()
	fields["text_chars"] = len(text)
	telemetry.Info("extract.completed", fields)
	return extract.Result{
		Text:     text,
		FileName: fileName,
		FileSize: int64(len(data)),
	}, nil
}
