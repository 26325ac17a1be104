package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/telemetry"
)

const (
	DefaultModel   = "gemini-2.5-pro"
	DefaultTimeout = 120 * time.Second
)

// ErrNoContent means the model returned no usable candidate.
var ErrNoContent = errors.New("gemini returned no content")

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client against the Gemini API.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini client. An empty model selects DefaultModel.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newClient(gc.Models, model, timeout), nil
}

func newClient(models contentGenerator, model string, timeout time.Duration) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{models: models, model: model, timeout: timeout}
}

// AnalyzeResume sends the match prompt and returns the model's JSON object.
func (c *Client) AnalyzeResume(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(llm.BuildPrompt(input)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	})
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("gemini request timeout after %s: %w", c.timeout, err)
		}
		telemetry.Warn("gemini.request_failed", map[string]any{
			"model":       c.model,
			"duration_ms": durationMs,
			"error":       err,
		})
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		telemetry.Warn("gemini.empty_response", map[string]any{
			"model":       c.model,
			"duration_ms": durationMs,
			"error":       err,
		})
		return nil, err
	}

	cleaned := llm.CleanJSON(text)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("gemini returned invalid JSON (%d bytes)", len(cleaned))
	}
	telemetry.Info("gemini.response", map[string]any{
		"model":        c.model,
		"duration_ms":  durationMs,
		"output_bytes": len(cleaned),
	})
	return json.RawMessage(cleaned), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		reason := ""
		if resp != nil && resp.PromptFeedback != nil {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		if reason != "" {
			return "", fmt.Errorf("%w: content may have been filtered (block reason %s)", ErrNoContent, reason)
		}
		return "", fmt.Errorf("%w: content may have been filtered", ErrNoContent)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: content may have been filtered (finish reason %s)", ErrNoContent, resp.Candidates[0].FinishReason)
	}
	return text, nil
}

// responseSchema mirrors the shape requested in the prompt.
func responseSchema() *genai.Schema {
	score := &genai.Schema{Type: genai.TypeNumber}
	stringList := &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"match_score": score,
			"score_breakdown": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"hard_skills":      score,
					"experience_level": score,
					"keyword_density":  score,
					"education_certs":  score,
					"title_alignment":  score,
				},
				Required: []string{"hard_skills", "experience_level", "keyword_density", "education_certs", "title_alignment"},
			},
			"missing_keywords": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": {Type: genai.TypeString},
						"keywords": stringList,
					},
					Required: []string{"category", "keywords"},
				},
			},
			"new_bullet_points_to_add": stringList,
			"bullets_to_rephrase": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"original": {Type: genai.TypeString},
						"improved": {Type: genai.TypeString},
					},
					Required: []string{"original", "improved"},
				},
			},
			"one_sentence_summary": {Type: genai.TypeString},
		},
		Required: []string{
			"match_score",
			"score_breakdown",
			"missing_keywords",
			"new_bullet_points_to_add",
			"bullets_to_rephrase",
			"one_sentence_summary",
		},
	}
}
