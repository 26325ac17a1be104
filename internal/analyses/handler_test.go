package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func postAnalyze(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return payload
}

func TestAnalyzeEndpointEndToEnd(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), LLM: &fakeLLM{raw: json.RawMessage(validResponse)}}
	r := newTestRouter(svc)

	resp := postAnalyze(t, r, AnalyzeRequest{ResumeText: resumeInput, JobDescription: jobInput, FileName: "cv.docx"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "match_score", "score_breakdown", "missing_keywords", "new_bullet_points_to_add", "bullets_to_rephrase", "one_sentence_summary", "created_at"} {
		if _, ok := created[key]; !ok {
			t.Fatalf("missing %s in response", key)
		}
	}
	if _, ok := created["missing_keywords"].(map[string]any); !ok {
		t.Fatalf("expected keyed missing_keywords, got %T", created["missing_keywords"])
	}

	id := created["id"].(string)
	getResp := httptest.NewRecorder()
	r.ServeHTTP(getResp, httptest.NewRequest(http.MethodGet, "/api/analysis/"+id, nil))
	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", getResp.Code)
	}
	var fetched map[string]any
	if err := json.Unmarshal(getResp.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fetched["id"] != id || fetched["match_score"] != created["match_score"] {
		t.Fatalf("fetched record differs: %v", fetched)
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		llm        *fakeLLM
		store      Store
		body       any
		wantStatus int
		wantCode   string
	}{
		{name: "short input", llm: &fakeLLM{raw: json.RawMessage(validResponse)}, body: AnalyzeRequest{ResumeText: "short", JobDescription: jobInput}, wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "not json", llm: &fakeLLM{raw: json.RawMessage(validResponse)}, body: "nope", wantStatus: http.StatusBadRequest, wantCode: "validation_error"},
		{name: "upstream", llm: &fakeLLM{err: errors.New("boom")}, body: AnalyzeRequest{ResumeText: resumeInput, JobDescription: jobInput}, wantStatus: http.StatusBadGateway, wantCode: "upstream_error"},
		{name: "bad model output", llm: &fakeLLM{raw: json.RawMessage(`[]`)}, body: AnalyzeRequest{ResumeText: resumeInput, JobDescription: jobInput}, wantStatus: http.StatusUnprocessableEntity, wantCode: "invalid_model_response"},
		{name: "store down", llm: &fakeLLM{raw: json.RawMessage(validResponse)}, store: failingStore{NewMemoryStore()}, body: AnalyzeRequest{ResumeText: resumeInput, JobDescription: jobInput}, wantStatus: http.StatusServiceUnavailable, wantCode: "store_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = NewMemoryStore()
			}
			r := newTestRouter(&Service{Store: store, LLM: tt.llm})
			resp := postAnalyze(t, r, tt.body)
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			payload := decodeError(t, resp)
			if payload["code"] != tt.wantCode || payload["error"] == "" {
				t.Fatalf("unexpected error body: %v", payload)
			}
		})
	}
}

func TestAnalyzeRejectsUnusableModelOutput(t *testing.T) {
	raw := mutateResponse(t, func(m map[string]any) {
		m["score_breakdown"].(map[string]any)["hard_skills"] = "high"
	})
	store := NewMemoryStore()
	r := newTestRouter(&Service{Store: store, LLM: &fakeLLM{raw: raw}})

	resp := postAnalyze(t, r, AnalyzeRequest{ResumeText: resumeInput, JobDescription: jobInput})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	payload := decodeError(t, resp)
	if payload["code"] != "invalid_model_response" {
		t.Fatalf("unexpected code: %v", payload)
	}
	if !strings.Contains(payload["error"], "score_breakdown.hard_skills") {
		t.Fatalf("expected failing field in message, got %q", payload["error"])
	}
	if list, _ := store.List(context.Background(), 0); len(list) != 0 {
		t.Fatalf("expected nothing stored, got %d records", len(list))
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	r := newTestRouter(&Service{Store: NewMemoryStore(), LLM: &fakeLLM{}})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/analysis/does-not-exist", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if payload := decodeError(t, resp); payload["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestListAnalysesLimits(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), LLM: &fakeLLM{raw: json.RawMessage(validResponse)}}
	r := newTestRouter(svc)
	for i := 0; i < 3; i++ {
		if resp := postAnalyze(t, r, AnalyzeRequest{ResumeText: resumeInput, JobDescription: jobInput}); resp.Code != http.StatusOK {
			t.Fatalf("seed analyze: %d", resp.Code)
		}
	}

	tests := []struct {
		query string
		want  int
		code  int
	}{
		{query: "", want: 3, code: http.StatusOK},
		{query: "?limit=2", want: 2, code: http.StatusOK},
		{query: "?limit=0", want: 3, code: http.StatusOK},
		{query: "?limit=1000", want: 3, code: http.StatusOK},
		{query: "?limit=abc", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/analyses"+tt.query, nil))
		if resp.Code != tt.code {
			t.Fatalf("%s: expected %d, got %d", tt.query, tt.code, resp.Code)
		}
		if tt.code != http.StatusOK {
			continue
		}
		var list []AnalysisResult
		if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(list) != tt.want {
			t.Fatalf("%s: expected %d, got %s", tt.query, tt.want, strconv.Itoa(len(list)))
		}
	}
}
