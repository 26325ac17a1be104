package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"

	"resume-match-api/internal/bootstrap"
	"resume-match-api/internal/shared/config"
)

func healthRequest() events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		Version:  "2.0",
		RawPath:  "/api/health",
		RouteKey: "$default",
		Headers:  map[string]string{"accept": "application/json"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   http.MethodGet,
				Path:     "/api/health",
				SourceIP: "203.0.113.7",
			},
		},
	}
}

func TestProxyServesRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	builds := 0
	p := newProxy(func() (*bootstrap.App, error) {
		builds++
		return bootstrap.Build(config.Config{Env: "dev"})
	})

	for i := 0; i < 2; i++ {
		resp, err := p.handle(context.Background(), healthRequest())
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
		}
		var body map[string]any
		if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["mode"] != bootstrap.ModeOffline || body["store"] != "memory" {
			t.Fatalf("unexpected health body: %v", body)
		}
	}
	if builds != 1 {
		t.Fatalf("expected one bootstrap per environment, got %d", builds)
	}
}

func TestProxyBootstrapFailure(t *testing.T) {
	boom := errors.New("no database")
	p := newProxy(func() (*bootstrap.App, error) { return nil, boom })

	resp, err := p.handle(context.Background(), healthRequest())
	if !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "bootstrap_failed" {
		t.Fatalf("unexpected body: %v", body)
	}
}
