package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// ReportSnapshotsRepository handles data access for precomputed report snapshots.
// There is at most one snapshot per survey; Upsert replaces it in place.
type ReportSnapshotsRepository struct {
	db *pgxpool.Pool
}

// NewReportSnapshotsRepository creates a new report snapshots repository.
func NewReportSnapshotsRepository(db *pgxpool.Pool) *ReportSnapshotsRepository {
	return &ReportSnapshotsRepository{db: db}
}

// Upsert stores the report for a survey, replacing any previous snapshot.
func (r *ReportSnapshotsRepository) Upsert(
	ctx context.Context, surveyID uuid.UUID, report json.RawMessage, computedAt time.Time,
) error {
	query := `
		INSERT INTO report_snapshots (survey_id, report, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (survey_id)
		DO UPDATE SET report = EXCLUDED.report, computed_at = EXCLUDED.computed_at
	`

	if _, err := r.db.Exec(ctx, query, surveyID, []byte(report), computedAt); err != nil {
		return fmt.Errorf("failed to upsert report snapshot: %w", err)
	}

	return nil
}

// GetBySurveyID retrieves the stored snapshot for a survey.
func (r *ReportSnapshotsRepository) GetBySurveyID(ctx context.Context, surveyID uuid.UUID) (*models.ReportSnapshot, error) {
	query := `
		SELECT survey_id, report, computed_at
		FROM report_snapshots
		WHERE survey_id = $1
	`

	var snapshot models.ReportSnapshot

	var reportJSON []byte

	err := r.db.QueryRow(ctx, query, surveyID).Scan(&snapshot.SurveyID, &reportJSON, &snapshot.ComputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("report snapshot", "report snapshot not found")
		}

		return nil, fmt.Errorf("failed to get report snapshot: %w", err)
	}

	snapshot.Report = reportJSON

	return &snapshot, nil
}

// Delete removes the snapshot for a survey. Missing snapshots are not an error:
// deletion is best-effort cleanup when a survey goes away.
func (r *ReportSnapshotsRepository) Delete(ctx context.Context, surveyID uuid.UUID) error {
	query := `DELETE FROM report_snapshots WHERE survey_id = $1`

	if _, err := r.db.Exec(ctx, query, surveyID); err != nil {
		return fmt.Errorf("failed to delete report snapshot: %w", err)
	}

	return nil
}
