// Package repository provides data access for surveys, responses, and report snapshots.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// SurveysRepository handles data access for surveys.
// Questions are stored as a JSONB document per survey row.
type SurveysRepository struct {
	db *pgxpool.Pool
}

// NewSurveysRepository creates a new surveys repository.
func NewSurveysRepository(db *pgxpool.Pool) *SurveysRepository {
	return &SurveysRepository{db: db}
}

// Create inserts a new survey.
func (r *SurveysRepository) Create(ctx context.Context, req *models.CreateSurveyRequest) (*models.Survey, error) {
	questions := req.Questions
	if questions == nil {
		questions = []models.Question{}
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO surveys (name, description, questions)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, questions, created_at, updated_at
	`

	return r.scanSurvey(r.db.QueryRow(ctx, query, req.Name, req.Description, questionsJSON))
}

// GetByID retrieves a single survey by ID.
func (r *SurveysRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	query := `
		SELECT id, name, description, questions, created_at, updated_at
		FROM surveys
		WHERE id = $1
	`

	survey, err := r.scanSurvey(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("survey", "survey not found")
		}

		return nil, err
	}

	return survey, nil
}

// buildSurveyFilterConditions builds WHERE clause conditions and arguments from filters.
// Returns the WHERE clause (including " WHERE " prefix if conditions exist) and the args slice.
func buildSurveyFilterConditions(filters *models.ListSurveysFilters) (whereClause string, args []any) {
	var conditions []string

	argCount := 1

	if filters.Name != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", argCount))
		args = append(args, *filters.Name)
	}

	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

// List retrieves surveys with optional filters, newest first.
func (r *SurveysRepository) List(ctx context.Context, filters *models.ListSurveysFilters) ([]models.Survey, error) {
	query := `
		SELECT id, name, description, questions, created_at, updated_at
		FROM surveys
	`

	whereClause, args := buildSurveyFilterConditions(filters)
	query += whereClause
	argCount := len(args) + 1

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)

		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)

		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	surveys := []models.Survey{} // Initialize as empty slice, not nil

	for rows.Next() {
		survey, err := r.scanSurvey(rows)
		if err != nil {
			return nil, err
		}

		surveys = append(surveys, *survey)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surveys: %w", err)
	}

	return surveys, nil
}

// Count returns the total count of surveys matching the filters.
func (r *SurveysRepository) Count(ctx context.Context, filters *models.ListSurveysFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM surveys`

	whereClause, args := buildSurveyFilterConditions(filters)
	query += whereClause

	var count int64

	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count surveys: %w", err)
	}

	return count, nil
}

// Delete removes a survey. Responses and snapshots cascade at the schema level.
func (r *SurveysRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM surveys WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("survey", "survey not found")
	}

	return nil
}

// scanSurvey scans a survey row, unmarshalling the questions JSONB document.
func (r *SurveysRepository) scanSurvey(row pgx.Row) (*models.Survey, error) {
	var survey models.Survey

	var questionsJSON []byte

	var createdAt, updatedAt time.Time

	err := row.Scan(
		&survey.ID, &survey.Name, &survey.Description, &questionsJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}

		return nil, fmt.Errorf("failed to scan survey: %w", err)
	}

	survey.CreatedAt = createdAt
	survey.UpdatedAt = updatedAt
	survey.Questions = []models.Question{}

	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &survey.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal survey questions: %w", err)
		}
	}

	return &survey, nil
}
