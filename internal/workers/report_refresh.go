// Package workers provides River job workers (report snapshot refresh).
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/observability"
	"github.com/techhbuddy/survey-hub/internal/service"
)

// ReportRefreshWorker recomputes and stores the report snapshot for one survey.
type ReportRefreshWorker struct {
	river.WorkerDefaults[service.ReportRefreshArgs]

	refresher snapshotRefresher
	limiter   *rate.Limiter
	metrics   observability.HubMetrics
}

// snapshotRefresher is the minimal interface needed by the worker.
type snapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, surveyID uuid.UUID) error
}

// NewReportRefreshWorker creates a worker that recomputes snapshots at most
// refreshesPerSecond times per second across all jobs.
// metrics may be nil when metrics are disabled.
func NewReportRefreshWorker(
	refresher snapshotRefresher, refreshesPerSecond float64, metrics observability.HubMetrics,
) *ReportRefreshWorker {
	burst := int(refreshesPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &ReportRefreshWorker{
		refresher: refresher,
		limiter:   rate.NewLimiter(rate.Limit(refreshesPerSecond), burst),
		metrics:   metrics,
	}
}

const reportRefreshTimeout = 60 * time.Second

// Timeout limits how long a single refresh can run, including limiter wait.
func (w *ReportRefreshWorker) Timeout(*river.Job[service.ReportRefreshArgs]) time.Duration {
	return reportRefreshTimeout
}

// Work recomputes the survey's report and stores it as the snapshot.
func (w *ReportRefreshWorker) Work(ctx context.Context, job *river.Job[service.ReportRefreshArgs]) error {
	args := job.Args

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("report refresh rate limit: %w", err)
	}

	start := time.Now()

	err := w.refresher.RefreshSnapshot(ctx, args.SurveyID)
	if err == nil {
		if w.metrics != nil {
			w.metrics.RecordSnapshotRefresh(ctx, "success")
		}

		slog.Info("report refresh: snapshot stored",
			"survey_id", args.SurveyID,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		return nil
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		if w.metrics != nil {
			w.metrics.RecordSnapshotRefresh(ctx, "survey_deleted")
		}

		slog.Info("report refresh: survey deleted, skipping",
			"survey_id", args.SurveyID,
		)

		return nil // no retry when the survey is gone
	}

	if w.metrics != nil {
		w.metrics.RecordSnapshotRefresh(ctx, "failed")
	}

	isLastAttempt := job.Attempt >= job.MaxAttempts
	if isLastAttempt {
		slog.Error("report refresh failed (final attempt)",
			"survey_id", args.SurveyID,
			"error", err,
		)
	} else {
		slog.Warn("report refresh failed, will retry",
			"survey_id", args.SurveyID,
			"error", err,
		)
	}

	return fmt.Errorf("refresh snapshot: %w", err)
}
