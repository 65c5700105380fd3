// Package handlers provides HTTP handlers for the survey hub API.
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

// SurveysService defines the interface for surveys business logic.
type SurveysService interface {
	CreateSurvey(ctx context.Context, req *models.CreateSurveyRequest) (*models.Survey, error)
	GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error)
	ListSurveys(ctx context.Context, filters *models.ListSurveysFilters) (*models.ListSurveysResponse, error)
	DeleteSurvey(ctx context.Context, id uuid.UUID) error
}

// SurveysHandler handles HTTP requests for surveys.
type SurveysHandler struct {
	service SurveysService
}

// NewSurveysHandler creates a new surveys handler.
func NewSurveysHandler(service SurveysService) *SurveysHandler {
	return &SurveysHandler{service: service}
}

// Create handles POST /v1/surveys
// @Summary Create survey
// @Description Create a new survey with its question definitions
// @Tags Surveys
// @Accept json
// @Produce json
// @Param request body CreateSurveyRequest true "Survey to create"
// @Success 201 {object} Survey
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Security BearerAuth
// @Router /v1/surveys [post]
func (h *SurveysHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	survey, err := h.service.CreateSurvey(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.RespondBadRequest(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusCreated, survey)
}

// Get handles GET /v1/surveys/{id}
// @Summary Get a survey by ID
// @Tags Surveys
// @Produce json
// @Param id path string true "Survey ID (UUID)"
// @Success 200 {object} Survey
// @Failure 400 {object} ProblemDetails "Invalid UUID format"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Survey not found"
// @Security BearerAuth
// @Router /v1/surveys/{id} [get]
func (h *SurveysHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	survey, err := h.service.GetSurvey(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Survey not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, survey)
}

// List handles GET /v1/surveys
// @Summary List surveys
// @Tags Surveys
// @Produce json
// @Param name query string false "Filter by name (substring match)"
// @Param limit query int false "Number of results to return (max 1000)"
// @Param offset query int false "Number of results to skip"
// @Success 200 {object} ListSurveysResponse
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Security BearerAuth
// @Router /v1/surveys [get]
func (h *SurveysHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &models.ListSurveysFilters{}
	if err := validation.ValidateAndDecodeQueryParams(r, filters); err != nil {
		response.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ListSurveys(r.Context(), filters)
	if err != nil {
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/surveys/{id}
// @Summary Delete a survey
// @Description Permanently deletes a survey, its responses, and its report snapshot
// @Tags Surveys
// @Param id path string true "Survey ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails "Invalid UUID format"
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Survey not found"
// @Security BearerAuth
// @Router /v1/surveys/{id} [delete]
func (h *SurveysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSurveyID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSurvey(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Survey not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseSurveyID extracts and parses the {id} path value, writing the error
// response itself when the value is missing or malformed.
func parseSurveyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		response.RespondBadRequest(w, "Survey ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")
		return uuid.Nil, false
	}

	return id, true
}
