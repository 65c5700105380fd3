package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techhbuddy/survey-hub/internal/analytics"
	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
	"github.com/techhbuddy/survey-hub/internal/service"
)

// mockAnalyticsService mocks AnalyticsService for handler tests.
type mockAnalyticsService struct {
	reportFunc   func(ctx context.Context, surveyID uuid.UUID) (*analytics.Report, error)
	funnelFunc   func(ctx context.Context, surveyID uuid.UUID) (*service.FunnelReport, error)
	snapshotFunc func(ctx context.Context, surveyID uuid.UUID) (*models.ReportSnapshot, error)
}

func (m *mockAnalyticsService) GetReport(ctx context.Context, surveyID uuid.UUID) (*analytics.Report, error) {
	if m.reportFunc != nil {
		return m.reportFunc(ctx, surveyID)
	}
	return &analytics.Report{SurveyID: surveyID.String(), Funnel: []analytics.FunnelStep{}, Questions: []analytics.QuestionReport{}}, nil
}

func (m *mockAnalyticsService) GetFunnel(ctx context.Context, surveyID uuid.UUID) (*service.FunnelReport, error) {
	if m.funnelFunc != nil {
		return m.funnelFunc(ctx, surveyID)
	}
	return &service.FunnelReport{SurveyID: surveyID.String(), Steps: []analytics.FunnelStep{}}, nil
}

func (m *mockAnalyticsService) GetSnapshot(ctx context.Context, surveyID uuid.UUID) (*models.ReportSnapshot, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx, surveyID)
	}
	return &models.ReportSnapshot{SurveyID: surveyID, Report: json.RawMessage(`{}`), ComputedAt: time.Now()}, nil
}

func TestAnalyticsHandler_GetReport(t *testing.T) {
	t.Run("returns report JSON", func(t *testing.T) {
		surveyID := uuid.New()
		h := NewAnalyticsHandler(&mockAnalyticsService{
			reportFunc: func(_ context.Context, id uuid.UUID) (*analytics.Report, error) {
				return &analytics.Report{
					SurveyID: id.String(),
					Totals:   analytics.Totals{TotalResponses: 3, CompletedResponses: 2, PartialResponses: 1},
					Funnel:   []analytics.FunnelStep{{QuestionID: "q1", QuestionLabel: "Rate us", Order: 1, Reached: 3}},
					Questions: []analytics.QuestionReport{
						{QuestionID: "q1", QuestionLabel: "Rate us", Order: 1, Kind: analytics.KindRating, Reached: 3, TotalAnswers: 3},
					},
				}, nil
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}/report", h.GetReport)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+surveyID.String()+"/report", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var report analytics.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, surveyID.String(), report.SurveyID)
		assert.Equal(t, 3, report.Totals.TotalResponses)
		require.Len(t, report.Funnel, 1)
		assert.Equal(t, 3, report.Funnel[0].Reached)
	})

	t.Run("unknown survey returns 404", func(t *testing.T) {
		h := NewAnalyticsHandler(&mockAnalyticsService{
			reportFunc: func(_ context.Context, _ uuid.UUID) (*analytics.Report, error) {
				return nil, apperrors.NewNotFoundError("survey", "survey not found")
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}/report", h.GetReport)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+uuid.NewString()+"/report", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid UUID returns 400", func(t *testing.T) {
		h := NewAnalyticsHandler(&mockAnalyticsService{})
		mux := newTestMux("GET /v1/surveys/{id}/report", h.GetReport)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/abc/report", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service error returns 500", func(t *testing.T) {
		h := NewAnalyticsHandler(&mockAnalyticsService{
			reportFunc: func(_ context.Context, _ uuid.UUID) (*analytics.Report, error) {
				return nil, assert.AnError
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}/report", h.GetReport)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+uuid.NewString()+"/report", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAnalyticsHandler_GetFunnel(t *testing.T) {
	t.Run("returns funnel JSON", func(t *testing.T) {
		surveyID := uuid.New()
		h := NewAnalyticsHandler(&mockAnalyticsService{
			funnelFunc: func(_ context.Context, id uuid.UUID) (*service.FunnelReport, error) {
				return &service.FunnelReport{
					SurveyID:       id.String(),
					TotalResponses: 10,
					Steps: []analytics.FunnelStep{
						{QuestionID: "q1", QuestionLabel: "First", Order: 1, Reached: 10},
						{QuestionID: "q2", QuestionLabel: "Second", Order: 2, Reached: 6},
					},
				}, nil
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}/funnel", h.GetFunnel)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+surveyID.String()+"/funnel", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var funnel service.FunnelReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funnel))
		assert.Equal(t, 10, funnel.TotalResponses)
		require.Len(t, funnel.Steps, 2)
		assert.Equal(t, 6, funnel.Steps[1].Reached)
	})

	t.Run("unknown survey returns 404", func(t *testing.T) {
		h := NewAnalyticsHandler(&mockAnalyticsService{
			funnelFunc: func(_ context.Context, _ uuid.UUID) (*service.FunnelReport, error) {
				return nil, apperrors.NewNotFoundError("survey", "survey not found")
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}/funnel", h.GetFunnel)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+uuid.NewString()+"/funnel", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAnalyticsHandler_GetSnapshot(t *testing.T) {
	t.Run("returns stored snapshot", func(t *testing.T) {
		surveyID := uuid.New()
		h := NewAnalyticsHandler(&mockAnalyticsService{})
		mux := newTestMux("GET /v1/surveys/{id}/report/snapshot", h.GetSnapshot)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+surveyID.String()+"/report/snapshot", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var snapshot models.ReportSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, surveyID, snapshot.SurveyID)
	})

	t.Run("missing snapshot returns 404", func(t *testing.T) {
		h := NewAnalyticsHandler(&mockAnalyticsService{
			snapshotFunc: func(_ context.Context, _ uuid.UUID) (*models.ReportSnapshot, error) {
				return nil, apperrors.NewNotFoundError("report snapshot", "report snapshot not found")
			},
		})
		mux := newTestMux("GET /v1/surveys/{id}/report/snapshot", h.GetSnapshot)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/surveys/"+uuid.NewString()+"/report/snapshot", http.NoBody)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
