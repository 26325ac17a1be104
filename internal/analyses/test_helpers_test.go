package analyses

import (
	"context"
	"encoding/json"
	"testing"

	"resume-match-api/internal/llm"
)

const validResponse = `{
  "match_score": 87.4,
  "score_breakdown": {
    "hard_skills": 92,
    "experience_level": 85,
    "keyword_density": 78.5,
    "education_certs": 100,
    "title_alignment": 90
  },
  "missing_keywords": [
    {"category": "Technical Skills", "keywords": ["Kubernetes", "Terraform"]},
    {"category": "Tools", "keywords": ["Datadog"]}
  ],
  "new_bullet_points_to_add": ["Deployed Kubernetes clusters with Terraform"],
  "bullets_to_rephrase": [
    {"original": "Worked on backend", "improved": "Built Go services handling 5k RPS"}
  ],
  "one_sentence_summary": "Strong backend match."
}`

type fakeLLM struct {
	raw   json.RawMessage
	err   error
	calls int
	last  llm.AnalyzeInput
}

func (f *fakeLLM) AnalyzeResume(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	f.calls++
	f.last = input
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func sampleDraft(t *testing.T) Draft {
	t.Helper()
	d, err := Normalize(json.RawMessage(validResponse))
	if err != nil {
		t.Fatalf("normalize sample: %v", err)
	}
	return d
}

// mutateResponse decodes validResponse, applies fn and re-encodes it.
func mutateResponse(t *testing.T, fn func(m map[string]any)) json.RawMessage {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(validResponse), &m); err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	fn(m)
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	return raw
}
