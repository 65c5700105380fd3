package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// mockSurveysService mocks SurveysService for handler tests.
type mockSurveysService struct {
	createFunc func(ctx context.Context, req *models.CreateSurveyRequest) (*models.Survey, error)
	getFunc    func(ctx context.Context, id uuid.UUID) (*models.Survey, error)
	listFunc   func(ctx context.Context, filters *models.ListSurveysFilters) (*models.ListSurveysResponse, error)
	deleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSurveysService) CreateSurvey(ctx context.Context, req *models.CreateSurveyRequest) (*models.Survey, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &models.Survey{ID: uuid.New(), Name: req.Name, Questions: req.Questions}, nil
}

func (m *mockSurveysService) GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return &models.Survey{ID: id}, nil
}

func (m *mockSurveysService) ListSurveys(ctx context.Context, filters *models.ListSurveysFilters) (*models.ListSurveysResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filters)
	}
	return &models.ListSurveysResponse{Data: []models.Survey{}}, nil
}

func (m *mockSurveysService) DeleteSurvey(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// newTestMux registers handler routes with path patterns so r.PathValue works.
func newTestMux(pattern string, handlerFunc http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handlerFunc)
	return mux
}

func TestSurveysHandler_Create(t *testing.T) {
	t.Run("valid request returns 201 with survey", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})

		body := `{"name":"Onboarding","questions":[{"id":"q1","label":"Rate us","order":1,"type":"rating"}]}`
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/surveys", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var survey models.Survey
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &survey))
		assert.Equal(t, "Onboarding", survey.Name)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})

		req := httptest.NewRequest(http.MethodPost, "http://test/v1/surveys", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing name fails validation with 400", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})

		req := httptest.NewRequest(http.MethodPost, "http://test/v1/surveys", strings.NewReader(`{"questions":[]}`))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("unknown question type fails validation with 400", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})

		body := `{"name":"Bad","questions":[{"id":"q1","label":"What","type":"matrix"}]}`
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/surveys", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service validation error returns 400", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{
			createFunc: func(_ context.Context, _ *models.CreateSurveyRequest) (*models.Survey, error) {
				return nil, apperrors.NewValidationError("questions", "questions[0].id is required")
			},
		})

		body := `{"name":"Bad","questions":[]}`
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/surveys", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSurveysHandler_Get(t *testing.T) {
	t.Run("returns survey", func(t *testing.T) {
		id := uuid.New()
		h := NewSurveysHandler(&mockSurveysService{})
		mux := newTestMux("GET /v1/surveys/{id}", h.Get)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+id.String(), http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var survey models.Survey
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &survey))
		assert.Equal(t, id, survey.ID)
	})

	t.Run("invalid UUID returns 400", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})
		mux := newTestMux("GET /v1/surveys/{id}", h.Get)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/not-a-uuid", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown survey returns 404", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{
			getFunc: func(_ context.Context, _ uuid.UUID) (*models.Survey, error) {
				return nil, apperrors.NewNotFoundError("survey", "survey not found")
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}", h.Get)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+uuid.NewString(), http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSurveysHandler_List(t *testing.T) {
	t.Run("passes query filters to service", func(t *testing.T) {
		var captured *models.ListSurveysFilters

		h := NewSurveysHandler(&mockSurveysService{
			listFunc: func(_ context.Context, filters *models.ListSurveysFilters) (*models.ListSurveysResponse, error) {
				captured = filters
				return &models.ListSurveysResponse{Data: []models.Survey{}}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys?name=onboarding&limit=5&offset=10", http.NoBody)
		rec := httptest.NewRecorder()

		h.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		require.NotNil(t, captured.Name)
		assert.Equal(t, "onboarding", *captured.Name)
		assert.Equal(t, 5, captured.Limit)
		assert.Equal(t, 10, captured.Offset)
	})

	t.Run("limit above max fails validation with 400", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys?limit=100000", http.NoBody)
		rec := httptest.NewRecorder()

		h.List(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service error returns 500", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{
			listFunc: func(_ context.Context, _ *models.ListSurveysFilters) (*models.ListSurveysResponse, error) {
				return nil, assert.AnError
			},
		})

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys", http.NoBody)
		rec := httptest.NewRecorder()

		h.List(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestSurveysHandler_Delete(t *testing.T) {
	t.Run("returns 204", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{})
		mux := newTestMux("DELETE /v1/surveys/{id}", h.Delete)

		req := httptest.NewRequest(http.MethodDelete, "http://test/v1/surveys/"+uuid.NewString(), http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown survey returns 404", func(t *testing.T) {
		h := NewSurveysHandler(&mockSurveysService{
			deleteFunc: func(_ context.Context, _ uuid.UUID) error {
				return apperrors.NewNotFoundError("survey", "survey not found")
			},
		})
		mux := newTestMux("DELETE /v1/surveys/{id}", h.Delete)

		req := httptest.NewRequest(http.MethodDelete, "http://test/v1/surveys/"+uuid.NewString(), http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
