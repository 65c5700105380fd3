package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/techhbuddy/survey-hub/internal/models"
	"github.com/techhbuddy/survey-hub/internal/observability"
)

// ResponsesRepository defines the interface for responses data access.
type ResponsesRepository interface {
	Create(ctx context.Context, surveyID uuid.UUID, req *models.CreateResponseRequest) (*models.Response, error)
	List(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) ([]models.Response, error)
	Count(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) (int64, error)
}

// SurveyGetter loads a survey by id. Used to turn listing against an unknown
// survey into a not-found error instead of an empty page.
type SurveyGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error)
}

// ReportRefreshEnqueuer inserts background jobs. Satisfied by *river.Client[pgx.Tx].
type ReportRefreshEnqueuer interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// ResponsesService handles business logic for response ingestion and listing.
// Each ingested response invalidates the cached report and enqueues a snapshot
// refresh; job uniqueness collapses bursts into one pending refresh per survey.
type ResponsesService struct {
	repo        ResponsesRepository
	surveys     SurveyGetter
	enqueuer    ReportRefreshEnqueuer
	invalidator ReportInvalidator
	metrics     observability.HubMetrics
}

// NewResponsesService creates a new responses service.
// enqueuer, invalidator, and metrics may be nil (ingestion then skips the
// corresponding side effect).
func NewResponsesService(
	repo ResponsesRepository,
	surveys SurveyGetter,
	enqueuer ReportRefreshEnqueuer,
	invalidator ReportInvalidator,
	metrics observability.HubMetrics,
) *ResponsesService {
	return &ResponsesService{
		repo:        repo,
		surveys:     surveys,
		enqueuer:    enqueuer,
		invalidator: invalidator,
		metrics:     metrics,
	}
}

// IngestResponse stores a response for a survey and schedules a report refresh.
func (s *ResponsesService) IngestResponse(
	ctx context.Context, surveyID uuid.UUID, req *models.CreateResponseRequest,
) (*models.Response, error) {
	resp, err := s.repo.Create(ctx, surveyID, req)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordResponseIngested(ctx, resp.IsCompleted)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateReport(surveyID)
	}

	if s.enqueuer != nil {
		_, err := s.enqueuer.Insert(ctx, ReportRefreshArgs{SurveyID: surveyID}, nil)
		if err != nil {
			// The response is stored; the snapshot catches up on the next ingest
			// or on-demand report.
			slog.ErrorContext(ctx, "failed to enqueue report refresh",
				"survey_id", surveyID,
				"response_id", resp.ID,
				"error", err,
			)
		}
	}

	return resp, nil
}

// ListResponses retrieves responses for a survey with optional filters.
func (s *ResponsesService) ListResponses(
	ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters,
) (*models.ListResponsesResponse, error) {
	if _, err := s.surveys.GetByID(ctx, surveyID); err != nil {
		return nil, err
	}

	if filters.Limit <= 0 {
		filters.Limit = 100 // Default limit
	}
	if filters.Limit > 1000 {
		filters.Limit = 1000 // Max limit
	}

	responses, err := s.repo.List(ctx, surveyID, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, surveyID, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListResponsesResponse{
		Data:   responses,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}
