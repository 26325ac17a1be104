package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/telemetry"
)

// MinInputChars is the shortest accepted resume or job description, after trimming.
const MinInputChars = 10

// AnalyzeRequest carries one resume/job pairing. FileName is informational only.
type AnalyzeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
	FileName       string `json:"file_name,omitempty"`
}

// Service runs the analyze pipeline: model call, normalization, storage.
type Service struct {
	Store Store
	LLM   llm.Client
	// Provider labels logs with the configured backend.
	Provider string
}

// Analyze scores a resume against a job description and stores the result.
// Nothing is stored when the model call or normalization fails.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (AnalysisResult, error) {
	resume := strings.TrimSpace(req.ResumeText)
	job := strings.TrimSpace(req.JobDescription)
	if err := checkInput("resume_text", resume); err != nil {
		return AnalysisResult{}, err
	}
	if err := checkInput("job_description", job); err != nil {
		return AnalysisResult{}, err
	}
	if s.LLM == nil || s.Store == nil {
		return AnalysisResult{}, errors.New("analysis service is not configured")
	}

	startedAt := time.Now()
	metrics.IncAnalysisStarted()
	fields := map[string]any{
		"request_id":   requestIDFromContext(ctx),
		"provider":     s.Provider,
		"file_name":    strings.TrimSpace(req.FileName),
		"resume_chars": utf8.RuneCountInString(resume),
		"job_chars":    utf8.RuneCountInString(job),
	}
	telemetry.Info("analysis.started", fields)

	raw, err := s.LLM.AnalyzeResume(ctx, llm.AnalyzeInput{
		ResumeText:     resume,
		JobDescription: job,
	})
	if err != nil {
		return AnalysisResult{}, s.fail(fields, startedAt, "llm", fmt.Errorf("%w: %w", ErrUpstream, err))
	}

	draft, err := Normalize(raw)
	if err != nil {
		return AnalysisResult{}, s.fail(fields, startedAt, "normalize", fmt.Errorf("normalize model response: %w", err))
	}

	result, err := s.Store.Create(ctx, draft)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			metrics.IncAnalysisStoreFailed()
		}
		return AnalysisResult{}, s.fail(fields, startedAt, "store", fmt.Errorf("store analysis: %w", err))
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(metrics.SinceMillis(startedAt))
	fields["analysis_id"] = result.ID
	fields["match_score"] = result.MatchScore
	fields["duration_ms"] = metrics.SinceMillis(startedAt)
	telemetry.Info("analysis.completed", fields)
	return result, nil
}

// Get returns a stored analysis.
func (s *Service) Get(ctx context.Context, id string) (AnalysisResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AnalysisResult{}, ErrNotFound
	}
	return s.Store.Get(ctx, id)
}

// List returns stored analyses, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]AnalysisResult, error) {
	return s.Store.List(ctx, limit)
}

func (s *Service) fail(fields map[string]any, startedAt time.Time, stage string, err error) error {
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(metrics.SinceMillis(startedAt))
	fields["stage"] = stage
	fields["error"] = err
	fields["duration_ms"] = metrics.SinceMillis(startedAt)
	telemetry.Warn("analysis.failed", fields)
	return err
}

func checkInput(field, value string) error {
	if utf8.RuneCountInString(value) < MinInputChars {
		return &InputError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", MinInputChars)}
	}
	return nil
}
