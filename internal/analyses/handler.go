package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/shared/server/middleware"
	"resume-match-api/internal/shared/server/respond"
)

// MaxListLimit caps the limit query parameter of the history endpoint.
const MaxListLimit = 100

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/analysis/:id", h.getAnalysis)
	rg.GET("/analyses", h.listAnalyses)
}

func (h *Handler) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Request body must be JSON with resume_text and job_description")
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.Analyze(ctx, req)
	if err != nil {
		var (
			inputErr *InputError
			validErr *ValidationError
		)
		switch {
		case errors.As(err, &inputErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", inputErr.Error())
		case errors.Is(err, ErrUpstream):
			respond.Error(c, http.StatusBadGateway, "upstream_error", "Failed to analyze resume. Please try again.")
		case errors.As(err, &validErr):
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_model_response", "The analysis response could not be used ("+validErr.Error()+"). Please try again.")
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusUnprocessableEntity, "invalid_model_response", "The analysis response could not be used. Please try again.")
		case errors.Is(err, ErrStoreUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "Analysis storage is unavailable. Please try again later.")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to analyze resume")
		}
		return
	}

	c.Set("analysisId", result.ID)
	respond.OK(c, result)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set("analysisId", analysisID)

	result, err := h.Svc.Get(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Analysis not found")
		case errors.Is(err, ErrStoreUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "Analysis storage is unavailable. Please try again later.")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch analysis")
		}
		return
	}

	respond.OK(c, result)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := DefaultListLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be an integer")
			return
		}
		if parsed > 0 {
			limit = parsed
		}
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	results, err := h.Svc.List(c.Request.Context(), limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrStoreUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "Analysis storage is unavailable. Please try again later.")
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to list analyses")
		}
		return
	}

	respond.OK(c, results)
}
