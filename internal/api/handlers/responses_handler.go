package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/techhbuddy/survey-hub/internal/api/response"
	"github.com/techhbuddy/survey-hub/internal/api/validation"
	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// ResponsesService defines the interface for response ingestion and listing.
type ResponsesService interface {
	IngestResponse(ctx context.Context, surveyID uuid.UUID, req *models.CreateResponseRequest) (*models.Response, error)
	ListResponses(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) (*models.ListResponsesResponse, error)
}

// ResponsesHandler handles HTTP requests for survey responses.
type ResponsesHandler struct {
	service ResponsesService
}

// NewResponsesHandler creates a new responses handler.
func NewResponsesHandler(service ResponsesService) *ResponsesHandler {
	return &ResponsesHandler{service: service}
}

// Create handles POST /v1/surveys/{id}/responses
// @Summary Ingest a survey response
// @Description Stores a response (complete or partial) and schedules a report refresh
// @Tags Responses
// @Accept json
// @Produce json
// @Param id path string true "Survey ID (UUID)"
// @Param request body CreateResponseRequest true "Response to ingest"
// @Success 201 {object} Response
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Survey not found"
// @Security BearerAuth
// @Router /v1/surveys/{id}/responses [post]
func (h *ResponsesHandler) Create(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	var req models.CreateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	resp, err := h.service.IngestResponse(r.Context(), surveyID, &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Survey not found")
			return
		}
		if errors.Is(err, apperrors.ErrConflict) {
			response.RespondConflict(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusCreated, resp)
}

// List handles GET /v1/surveys/{id}/responses
// @Summary List responses for a survey
// @Tags Responses
// @Produce json
// @Param id path string true "Survey ID (UUID)"
// @Param is_completed query bool false "Filter by completion status"
// @Param since query string false "Filter by submitted_at >= since (ISO 8601 format)"
// @Param until query string false "Filter by submitted_at <= until (ISO 8601 format)"
// @Param limit query int false "Number of results to return (max 1000)"
// @Param offset query int false "Number of results to skip"
// @Success 200 {object} ListResponsesResponse
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Survey not found"
// @Security BearerAuth
// @Router /v1/surveys/{id}/responses [get]
func (h *ResponsesHandler) List(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	filters := &models.ListResponsesFilters{}
	if err := validation.ValidateAndDecodeQueryParams(r, filters); err != nil {
		response.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ListResponses(r.Context(), surveyID, filters)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Survey not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
