package llm

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
)

// Client abstracts LLM providers for resume analysis.
// AnalyzeResume returns the provider's raw JSON object, not yet validated.
type Client interface {
	AnalyzeResume(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
}

// AnalyzeInput captures the inputs needed for resume analysis.
type AnalyzeInput struct {
	ResumeText     string
	JobDescription string
}

//go:embed prompts/ats_match.txt
var atsMatchPrompt string

const (
	resumePlaceholder = "{RESUME_TEXT}"
	jobPlaceholder    = "{JOB_DESCRIPTION}"
)

// BuildPrompt fills the match prompt template. Each placeholder is substituted once,
// so placeholder-like text inside the resume is left alone.
func BuildPrompt(input AnalyzeInput) string {
	prompt := strings.Replace(atsMatchPrompt, jobPlaceholder, input.JobDescription, 1)
	return strings.Replace(prompt, resumePlaceholder, input.ResumeText, 1)
}

// CleanJSON strips a surrounding markdown code fence from model output.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
