package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-match-api/internal/bootstrap"
	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/server/respond"
	"resume-match-api/internal/shared/telemetry"
)

// proxy is built once per execution environment and reused across invocations.
type proxy struct {
	once  sync.Once
	build func() (*bootstrap.App, error)
	err   error
	gin   *ginadapter.GinLambdaV2
}

func newProxy(build func() (*bootstrap.App, error)) *proxy {
	return &proxy{build: build}
}

func (p *proxy) init() {
	app, err := p.build()
	if err != nil {
		p.err = err
		return
	}
	telemetry.Info("lambda.cold_start", map[string]any{"mode": app.Mode, "store": app.StoreKind})
	p.gin = ginadapter.NewV2(app.Router)
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p.once.Do(p.init)
	if p.err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": p.err})
		return errorResponse(http.StatusInternalServerError, "bootstrap_failed", "Service failed to start"), p.err
	}
	return p.gin.ProxyWithContext(ctx, req)
}

func errorResponse(status int, code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: message, Code: code})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	p := newProxy(func() (*bootstrap.App, error) {
		return bootstrap.Build(config.Load())
	})
	lambda.Start(p.handle)
}
