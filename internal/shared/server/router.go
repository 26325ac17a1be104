package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/analyses"
	"resume-match-api/internal/documents"
	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/server/middleware"
	"resume-match-api/internal/shared/server/respond"
)

const (
	rateGroupAnalyze = "ANALYZE"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps bundles handler dependencies for router construction.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	DocumentHandler *documents.Handler
	// Mode reports which analysis backend is active ("gemini" or "offline").
	Mode string
	// StoreKind reports the selected analysis store ("memory", "postgres" or "sqlite3").
	StoreKind string
	Limiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Bodies up to the upload limit stay in memory during multipart parsing.
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupAnalyze: {Rate: deps.Config.AnalyzeRate, Burst: deps.Config.AnalyzeBurst},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true, "mode": deps.Mode, "store": deps.StoreKind})
	})
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Route not found")
	})

	return r
}

// Only analysis creation is throttled; it is the one route that spends upstream quota.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/analyze" {
		return rateGroupAnalyze
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
