package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/analyses"
	"resume-match-api/internal/documents"
	"resume-match-api/internal/llm"
	"resume-match-api/internal/llm/gemini"
	"resume-match-api/internal/llm/offline"
	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/server"
	"resume-match-api/internal/shared/server/middleware"
	"resume-match-api/internal/shared/storage/db"
	"resume-match-api/internal/shared/telemetry"
)

const (
	ModeGemini  = "gemini"
	ModeOffline = "offline"
)

// ErrOfflineInProduction stops a production deployment that has no Gemini key.
var ErrOfflineInProduction = errors.New("GEMINI_API_KEY is required in production")

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	Mode             string
	StoreKind        string
	AnalysisStore    analyses.Store
	AnalysesService  *analyses.Service
	DocumentsService *documents.Service
	AnalysisHandler  *analyses.Handler
	DocumentsHandler *documents.Handler
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	LLM   llm.Client
	Store analyses.Store
}

// Build prepares dependencies and the router from configuration.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(context.Background(), cfg, Options{})
}

// BuildWithOptions is Build with injectable collaborators.
func BuildWithOptions(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	llmClient, mode, err := buildLLM(ctx, cfg, opts.LLM)
	if err != nil {
		return nil, err
	}

	store, storeKind := opts.Store, "custom"
	if store == nil {
		store, storeKind, err = analyses.NewStore(ctx, storeConfig(cfg))
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:        cfg,
		Mode:          mode,
		StoreKind:     storeKind,
		AnalysisStore: store,
	}
	app.AnalysesService = &analyses.Service{Store: store, LLM: llmClient, Provider: mode}
	app.DocumentsService = documents.NewService()
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService, cfg.MaxUploadBytes)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		DocumentHandler: app.DocumentsHandler,
		Mode:            mode,
		StoreKind:       storeKind,
		Limiter:         middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":   cfg.Env,
		"mode":  mode,
		"store": storeKind,
	})
	return app, nil
}

func buildLLM(ctx context.Context, cfg config.Config, override llm.Client) (llm.Client, string, error) {
	if override != nil {
		return override, providerName(override), nil
	}
	if cfg.OfflineMode() {
		if cfg.Env == "production" {
			return nil, "", ErrOfflineInProduction
		}
		telemetry.Warn("bootstrap.offline_mode", map[string]any{
			"reason": "GEMINI_API_KEY not set; analyses use the local keyword heuristic",
		})
		return offline.Client{}, ModeOffline, nil
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
	if err != nil {
		return nil, "", err
	}
	return client, ModeGemini, nil
}

func providerName(c llm.Client) string {
	switch c.(type) {
	case offline.Client, *offline.Client:
		return ModeOffline
	case *gemini.Client:
		return ModeGemini
	default:
		return "custom"
	}
}

func storeConfig(cfg config.Config) analyses.StoreConfig {
	lambda := db.IsLambdaRuntime()
	defaults := db.DefaultServerOptions()
	if lambda {
		defaults = db.DefaultLambdaOptions()
	}
	return analyses.StoreConfig{
		DatabaseURL: cfg.DatabaseURL,
		Pool:        db.OptionsFromEnv(defaults),
		Shared:      lambda,
	}
}
