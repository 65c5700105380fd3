package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techhbuddy/survey-hub/internal/analytics"
	"github.com/techhbuddy/survey-hub/internal/models"
	"github.com/techhbuddy/survey-hub/internal/observability"
	"github.com/techhbuddy/survey-hub/pkg/cache"
)

// ResponsesLister loads the full response set for a survey, oldest first.
type ResponsesLister interface {
	ListAll(ctx context.Context, surveyID uuid.UUID) ([]models.Response, error)
}

// SnapshotsRepository defines the interface for report snapshot persistence.
type SnapshotsRepository interface {
	Upsert(ctx context.Context, surveyID uuid.UUID, report json.RawMessage, computedAt time.Time) error
	GetBySurveyID(ctx context.Context, surveyID uuid.UUID) (*models.ReportSnapshot, error)
}

// FunnelReport is the drop-off view of a survey's report: the per-question
// reach counts against the total response count.
type FunnelReport struct {
	SurveyID       string                 `json:"survey_id"`
	TotalResponses int                    `json:"total_responses"`
	Steps          []analytics.FunnelStep `json:"steps"`
}

// Report triggers, used as the metrics label for computed reports.
const (
	TriggerOnDemand        = "on_demand"
	TriggerSnapshotRefresh = "snapshot_refresh"
)

// AnalyticsService computes survey reports. On-demand reads go through an LRU
// read-through cache keyed by survey id; the cache entry is invalidated on
// every ingest, so a hit is always current.
type AnalyticsService struct {
	surveys   SurveyGetter
	responses ResponsesLister
	snapshots SnapshotsRepository
	cache     *cache.ReadThrough[*analytics.Report]
	metrics   observability.HubMetrics
}

// NewAnalyticsService creates a new analytics service.
// snapshots and metrics may be nil (snapshot operations then fail and metrics
// recording is skipped); reportCache must not be nil.
func NewAnalyticsService(
	surveys SurveyGetter,
	responses ResponsesLister,
	snapshots SnapshotsRepository,
	reportCache *cache.ReadThrough[*analytics.Report],
	metrics observability.HubMetrics,
) *AnalyticsService {
	return &AnalyticsService{
		surveys:   surveys,
		responses: responses,
		snapshots: snapshots,
		cache:     reportCache,
		metrics:   metrics,
	}
}

// GetReport returns the current report for a survey, computing it on cache miss.
func (s *AnalyticsService) GetReport(ctx context.Context, surveyID uuid.UUID) (*analytics.Report, error) {
	report, hit, err := s.cache.Get(ctx, surveyID.String(), func(ctx context.Context) (*analytics.Report, error) {
		return s.computeReport(ctx, surveyID, TriggerOnDemand)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordReportCacheLookup(ctx, hit)
	}

	return report, nil
}

// GetFunnel returns the drop-off view derived from the current report.
func (s *AnalyticsService) GetFunnel(ctx context.Context, surveyID uuid.UUID) (*FunnelReport, error) {
	report, err := s.GetReport(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return &FunnelReport{
		SurveyID:       report.SurveyID,
		TotalResponses: report.Totals.TotalResponses,
		Steps:          report.Funnel,
	}, nil
}

// GetSnapshot returns the stored snapshot for a survey. It does not compute:
// a survey with no ingests since startup and no refresh yet has no snapshot.
func (s *AnalyticsService) GetSnapshot(ctx context.Context, surveyID uuid.UUID) (*models.ReportSnapshot, error) {
	return s.snapshots.GetBySurveyID(ctx, surveyID)
}

// RefreshSnapshot recomputes the report for a survey and stores it as the
// snapshot. Called by the background refresh worker. A not-found error from
// the survey load propagates so the caller can treat the survey as deleted.
func (s *AnalyticsService) RefreshSnapshot(ctx context.Context, surveyID uuid.UUID) error {
	report, err := s.computeReport(ctx, surveyID, TriggerSnapshotRefresh)
	if err != nil {
		return err
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := s.snapshots.Upsert(ctx, surveyID, reportJSON, time.Now()); err != nil {
		return err
	}

	// The freshly computed report is at least as current as any cached entry.
	s.cache.Invalidate(surveyID.String())

	return nil
}

// InvalidateReport drops the cached report for a survey.
func (s *AnalyticsService) InvalidateReport(surveyID uuid.UUID) {
	s.cache.Invalidate(surveyID.String())
}

// computeReport loads the survey and its responses and aggregates them.
func (s *AnalyticsService) computeReport(ctx context.Context, surveyID uuid.UUID, trigger string) (*analytics.Report, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responses.ListAll(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := analytics.Aggregate(survey, responses)

	if s.metrics != nil {
		s.metrics.RecordReportComputed(ctx, trigger, time.Since(start))
	}

	return report, nil
}
