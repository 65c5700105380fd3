package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/techhbuddy/survey-hub/internal/analytics"
	"github.com/techhbuddy/survey-hub/internal/api/response"
	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
	"github.com/techhbuddy/survey-hub/internal/service"
)

// AnalyticsService defines the interface for report computation and retrieval.
type AnalyticsService interface {
	GetReport(ctx context.Context, surveyID uuid.UUID) (*analytics.Report, error)
	GetFunnel(ctx context.Context, surveyID uuid.UUID) (*service.FunnelReport, error)
	GetSnapshot(ctx context.Context, surveyID uuid.UUID) (*models.ReportSnapshot, error)
}

// AnalyticsHandler handles HTTP requests for survey reports.
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetReport handles GET /v1/surveys/{id}/report
// @Summary Get the current analytics report for a survey
// @Description Computes (or serves from cache) the full report: totals, funnel, and per-question distributions
// @Tags Analytics
// @Produce json
// @Param id path string true "Survey ID (UUID)"
// @Success 200 {object} Report
// @Failure 400 {object} ProblemDetails "Invalid UUID format"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Survey not found"
// @Security BearerAuth
// @Router /v1/surveys/{id}/report [get]
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	report, err := h.service.GetReport(r.Context(), surveyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Survey not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// GetFunnel handles GET /v1/surveys/{id}/funnel
// @Summary Get the drop-off funnel for a survey
// @Tags Analytics
// @Produce json
// @Param id path string true "Survey ID (UUID)"
// @Success 200 {object} FunnelReport
// @Failure 400 {object} ProblemDetails "Invalid UUID format"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Survey not found"
// @Security BearerAuth
// @Router /v1/surveys/{id}/funnel [get]
func (h *AnalyticsHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	funnel, err := h.service.GetFunnel(r.Context(), surveyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Survey not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, funnel)
}

// GetSnapshot handles GET /v1/surveys/{id}/report/snapshot
// @Summary Get the stored report snapshot for a survey
// @Description Returns the last background-computed report without triggering aggregation
// @Tags Analytics
// @Produce json
// @Param id path string true "Survey ID (UUID)"
// @Success 200 {object} ReportSnapshot
// @Failure 400 {object} ProblemDetails "Invalid UUID format"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Snapshot not found"
// @Security BearerAuth
// @Router /v1/surveys/{id}/report/snapshot [get]
func (h *AnalyticsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), surveyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Report snapshot not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}
