package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

// Handler wires the HTTP transport to the wellbeing service.
type Handler struct {
	svc    wellbeing.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc wellbeing.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Health confirms the API is reachable.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "backend connection ok"})
}

// Index computes the wellbeing index for a coordinate.
func (h *Handler) Index(c *gin.Context) {
	var req wellbeing.AssessmentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Assess(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomain(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summarize narrates scores supplied by the caller.
func (h *Handler) Summarize(c *gin.Context) {
	var req wellbeing.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Summarize(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomain(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FullSummary computes the index and a best-effort narrative in one call.
func (h *Handler) FullSummary(c *gin.Context) {
	var req wellbeing.AssessmentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.AssessWithSummary(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomain(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAssessment returns a previously computed index.
func (h *Handler) GetAssessment(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomain(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
