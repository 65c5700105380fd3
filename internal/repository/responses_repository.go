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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techhbuddy/survey-hub/internal/apperrors"
	"github.com/techhbuddy/survey-hub/internal/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// pgForeignKeyViolation is the PostgreSQL error code for foreign key violations.
const pgForeignKeyViolation = "23503"

// ResponsesRepository handles data access for survey responses.
// Answers are stored as a JSONB document per response row.
type ResponsesRepository struct {
	db *pgxpool.Pool
}

// NewResponsesRepository creates a new responses repository.
func NewResponsesRepository(db *pgxpool.Pool) *ResponsesRepository {
	return &ResponsesRepository{db: db}
}

// Create inserts a new response for a survey.
func (r *ResponsesRepository) Create(
	ctx context.Context, surveyID uuid.UUID, req *models.CreateResponseRequest,
) (*models.Response, error) {
	answers := req.Answers
	if answers == nil {
		answers = []models.Answer{}
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	submittedAt := req.SubmittedAt
	if submittedAt == nil {
		now := time.Now()
		submittedAt = &now
	}

	query := `
		INSERT INTO responses (survey_id, is_completed, time_spent_seconds, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, survey_id, is_completed, time_spent_seconds, answers, submitted_at, created_at
	`

	resp, err := scanResponse(r.db.QueryRow(ctx, query,
		surveyID, req.IsCompleted, req.TimeSpentSeconds, answersJSON, submittedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				return nil, apperrors.NewNotFoundError("survey", "survey not found")
			case pgUniqueViolation:
				return nil, apperrors.NewConflictError("response already exists")
			}
		}

		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	return resp, nil
}

// buildResponseFilterConditions builds WHERE clause conditions and arguments from filters.
// The survey_id condition is always present.
func buildResponseFilterConditions(
	surveyID uuid.UUID, filters *models.ListResponsesFilters,
) (whereClause string, args []any) {
	conditions := []string{"survey_id = $1"}
	args = append(args, surveyID)

	argCount := 2

	if filters.IsCompleted != nil {
		conditions = append(conditions, fmt.Sprintf("is_completed = $%d", argCount))
		args = append(args, *filters.IsCompleted)
		argCount++
	}

	if filters.Since != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at >= $%d", argCount))
		args = append(args, *filters.Since)
		argCount++
	}

	if filters.Until != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at <= $%d", argCount))
		args = append(args, *filters.Until)
	}

	whereClause = " WHERE " + strings.Join(conditions, " AND ")

	return whereClause, args
}

// List retrieves responses for a survey with optional filters, newest first.
func (r *ResponsesRepository) List(
	ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters,
) ([]models.Response, error) {
	query := `
		SELECT id, survey_id, is_completed, time_spent_seconds, answers, submitted_at, created_at
		FROM responses
	`

	whereClause, args := buildResponseFilterConditions(surveyID, filters)
	query += whereClause
	argCount := len(args) + 1

	query += " ORDER BY submitted_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)

		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)

		args = append(args, filters.Offset)
	}

	return r.queryResponses(ctx, query, args)
}

// ListAll retrieves every response for a survey in submission order, oldest
// first. Used by report aggregation, which needs the full set and a stable order.
func (r *ResponsesRepository) ListAll(ctx context.Context, surveyID uuid.UUID) ([]models.Response, error) {
	query := `
		SELECT id, survey_id, is_completed, time_spent_seconds, answers, submitted_at, created_at
		FROM responses
		WHERE survey_id = $1
		ORDER BY submitted_at ASC, id ASC
	`

	return r.queryResponses(ctx, query, []any{surveyID})
}

// Count returns the total count of responses matching the filters.
func (r *ResponsesRepository) Count(
	ctx context.Context, surveyID uuid.UUID, filters *models.ListResponsesFilters,
) (int64, error) {
	query := `SELECT COUNT(*) FROM responses`

	whereClause, args := buildResponseFilterConditions(surveyID, filters)
	query += whereClause

	var count int64

	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}

	return count, nil
}

func (r *ResponsesRepository) queryResponses(ctx context.Context, query string, args []any) ([]models.Response, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{} // Initialize as empty slice, not nil

	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}

		responses = append(responses, *resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating responses: %w", err)
	}

	return responses, nil
}

// scanResponse scans a response row, unmarshalling the answers JSONB document.
func scanResponse(row pgx.Row) (*models.Response, error) {
	var resp models.Response

	var answersJSON []byte

	err := row.Scan(
		&resp.ID, &resp.SurveyID, &resp.IsCompleted, &resp.TimeSpentSeconds,
		&answersJSON, &resp.SubmittedAt, &resp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	resp.Answers = []models.Answer{}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &resp.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response answers: %w", err)
		}
	}

	return &resp, nil
}
