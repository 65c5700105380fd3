package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// mockResponsesRepo mocks ResponsesRepository with overridable funcs.
type mockResponsesRepo struct {
	createFunc func(ctx context.Context, surveyID uuid.UUID, req *models.CreateResponseRequest) (*models.Response, error)
	listFunc   func(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) ([]models.Response, error)
	countFunc  func(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) (int64, error)
}

func (m *mockResponsesRepo) Create(ctx context.Context, surveyID uuid.UUID, req *models.CreateResponseRequest) (*models.Response, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, surveyID, req)
	}
	return &models.Response{ID: uuid.New(), SurveyID: surveyID, IsCompleted: req.IsCompleted}, nil
}

func (m *mockResponsesRepo) List(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) ([]models.Response, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, surveyID, filters)
	}
	return []models.Response{}, nil
}

func (m *mockResponsesRepo) Count(ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, surveyID, filters)
	}
	return 0, nil
}

// mockSurveyGetter mocks SurveyGetter.
type mockSurveyGetter struct {
	getFunc func(ctx context.Context, id uuid.UUID) (*models.Survey, error)
}

func (m *mockSurveyGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &models.Survey{ID: id}, nil
}

// mockEnqueuer records inserted jobs.
type mockEnqueuer struct {
	inserted []river.JobArgs
	err      error
}

func (m *mockEnqueuer) Insert(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inserted = append(m.inserted, args)
	return &rivertype.JobInsertResult{}, nil
}

func TestResponsesService_IngestResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("stores response, invalidates cache, enqueues refresh", func(t *testing.T) {
		surveyID := uuid.New()
		repo := &mockResponsesRepo{}
		enqueuer := &mockEnqueuer{}
		invalidator := &mockReportInvalidator{}
		svc := NewResponsesService(repo, &mockSurveyGetter{}, enqueuer, invalidator, nil)

		resp, err := svc.IngestResponse(ctx, surveyID, &models.CreateResponseRequest{IsCompleted: true})
		require.NoError(t, err)
		assert.Equal(t, surveyID, resp.SurveyID)

		assert.Equal(t, []uuid.UUID{surveyID}, invalidator.invalidated)
		require.Len(t, enqueuer.inserted, 1)
		args, ok := enqueuer.inserted[0].(ReportRefreshArgs)
		require.True(t, ok)
		assert.Equal(t, surveyID, args.SurveyID)
	})

	t.Run("unknown survey returns not found without side effects", func(t *testing.T) {
		repo := &mockResponsesRepo{
			createFunc: func(_ context.Context, _ uuid.UUID, _ *models.CreateResponseRequest) (*models.Response, error) {
				return nil, apperrors.NewNotFoundError("survey", "survey not found")
			},
		}
		enqueuer := &mockEnqueuer{}
		invalidator := &mockReportInvalidator{}
		svc := NewResponsesService(repo, &mockSurveyGetter{}, enqueuer, invalidator, nil)

		_, err := svc.IngestResponse(ctx, uuid.New(), &models.CreateResponseRequest{})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Empty(t, enqueuer.inserted)
		assert.Empty(t, invalidator.invalidated)
	})

	t.Run("enqueue failure does not fail the ingest", func(t *testing.T) {
		surveyID := uuid.New()
		svc := NewResponsesService(&mockResponsesRepo{}, &mockSurveyGetter{}, &mockEnqueuer{err: assert.AnError}, &mockReportInvalidator{}, nil)

		resp, err := svc.IngestResponse(ctx, surveyID, &models.CreateResponseRequest{})
		require.NoError(t, err)
		assert.NotNil(t, resp)
	})

	t.Run("works without enqueuer and invalidator", func(t *testing.T) {
		svc := NewResponsesService(&mockResponsesRepo{}, &mockSurveyGetter{}, nil, nil, nil)

		_, err := svc.IngestResponse(ctx, uuid.New(), &models.CreateResponseRequest{})
		assert.NoError(t, err)
	})
}

func TestResponsesService_ListResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown survey returns not found", func(t *testing.T) {
		surveys := &mockSurveyGetter{
			getFunc: func(_ context.Context, _ uuid.UUID) (*models.Survey, error) {
				return nil, apperrors.NewNotFoundError("survey", "survey not found")
			},
		}
		svc := NewResponsesService(&mockResponsesRepo{}, surveys, nil, nil, nil)

		_, err := svc.ListResponses(ctx, uuid.New(), &models.ListResponsesFilters{})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("applies default limit and returns data with total", func(t *testing.T) {
		surveyID := uuid.New()
		repo := &mockResponsesRepo{
			listFunc: func(_ context.Context, _ uuid.UUID, filters *models.ListResponsesFilters) ([]models.Response, error) {
				assert.Equal(t, 100, filters.Limit)
				return []models.Response{{ID: uuid.New(), SurveyID: surveyID}}, nil
			},
			countFunc: func(_ context.Context, _ uuid.UUID, _ *models.ListResponsesFilters) (int64, error) {
				return 42, nil
			},
		}
		svc := NewResponsesService(repo, &mockSurveyGetter{}, nil, nil, nil)

		result, err := svc.ListResponses(ctx, surveyID, &models.ListResponsesFilters{})
		require.NoError(t, err)
		assert.Len(t, result.Data, 1)
		assert.Equal(t, int64(42), result.Total)
		assert.Equal(t, 100, result.Limit)
	})
}
