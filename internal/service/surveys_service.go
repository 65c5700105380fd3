// Package service contains business logic for surveys, responses, and analytics.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// SurveysRepository defines the interface for surveys data access.
type SurveysRepository interface {
	Create(ctx context.Context, req *models.CreateSurveyRequest) (*models.Survey, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error)
	List(ctx context.Context, filters *models.ListSurveysFilters) ([]models.Survey, error)
	Count(ctx context.Context, filters *models.ListSurveysFilters) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SnapshotDeleter removes the stored report snapshot for a survey.
type SnapshotDeleter interface {
	Delete(ctx context.Context, surveyID uuid.UUID) error
}

// ReportInvalidator drops any cached report for a survey.
type ReportInvalidator interface {
	InvalidateReport(surveyID uuid.UUID)
}

// SurveysService handles business logic for surveys.
type SurveysService struct {
	repo        SurveysRepository
	snapshots   SnapshotDeleter
	invalidator ReportInvalidator
}

// NewSurveysService creates a new surveys service.
// snapshots and invalidator may be nil (e.g. in tests without analytics wiring).
func NewSurveysService(repo SurveysRepository, snapshots SnapshotDeleter, invalidator ReportInvalidator) *SurveysService {
	return &SurveysService{repo: repo, snapshots: snapshots, invalidator: invalidator}
}

// CreateSurvey creates a new survey.
func (s *SurveysService) CreateSurvey(ctx context.Context, req *models.CreateSurveyRequest) (*models.Survey, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, req)
}

// GetSurvey retrieves a single survey by ID.
func (s *SurveysService) GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	return s.repo.GetByID(ctx, id)
}

// ListSurveys retrieves a list of surveys with optional filters.
func (s *SurveysService) ListSurveys(ctx context.Context, filters *models.ListSurveysFilters) (*models.ListSurveysResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = 100 // Default limit
	}
	if filters.Limit > 1000 {
		filters.Limit = 1000 // Max limit
	}

	surveys, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListSurveysResponse{
		Data:   surveys,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// DeleteSurvey deletes a survey, its cached report, and its stored snapshot.
// Responses cascade at the schema level.
func (s *SurveysService) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateReport(id)
	}

	if s.snapshots != nil {
		// Best-effort cleanup; the snapshot row also cascades with the survey.
		if err := s.snapshots.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "failed to delete report snapshot for deleted survey",
				"survey_id", id,
				"error", err,
			)
		}
	}

	return nil
}

// validateCreateRequest validates the create request beyond struct tags:
// question types must be known and question ids non-blank.
func (s *SurveysService) validateCreateRequest(req *models.CreateSurveyRequest) error {
	if req.Name == "" {
		return apperrors.NewValidationError("name", "name is required")
	}

	for i, q := range req.Questions {
		if q.ID == "" {
			return apperrors.NewValidationError("questions", fmt.Sprintf("questions[%d].id is required", i))
		}

		if !q.Type.IsValid() {
			return apperrors.NewValidationError("questions",
				fmt.Sprintf("questions[%d].type is invalid: %s. Must be one of: multiple_choice, short_text, long_text, rating, star_rating, ranking", i, q.Type))
		}
	}

	return nil
}
