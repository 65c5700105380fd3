package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Answer is one question's value within a response. Value is kept raw: its
// shape (string, number, or list) depends on the question type and is decoded
// by the analytics pipeline, which tolerates mismatched shapes.
type Answer struct {
	QuestionID string          `json:"question_id" validate:"required,min=1,max=255,no_null_bytes"`
	Value      json.RawMessage `json:"value,omitempty"`
}

// Response is one respondent's submission to a survey. Partial submissions
// (IsCompleted false) still contribute to distributions and funnel counts for
// whatever they answered.
type Response struct {
	ID               uuid.UUID  `json:"id"`
	SurveyID         uuid.UUID  `json:"survey_id"`
	IsCompleted      bool       `json:"is_completed"`
	TimeSpentSeconds *float64   `json:"time_spent_seconds,omitempty"`
	Answers          []Answer   `json:"answers"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateResponseRequest is the payload for ingesting a response.
type CreateResponseRequest struct {
	IsCompleted      bool       `json:"is_completed"`
	TimeSpentSeconds *float64   `json:"time_spent_seconds,omitempty" validate:"omitempty,gte=0"`
	Answers          []Answer   `json:"answers" validate:"omitempty,dive"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
}

// ListResponsesFilters are the query parameters for listing responses of a survey.
type ListResponsesFilters struct {
	IsCompleted *bool      `form:"is_completed"`
	Since       *time.Time `form:"since"`
	Until       *time.Time `form:"until"`
	Limit       int        `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset      int        `form:"offset" validate:"omitempty,min=0,max=2147483647"`
}

// ListResponsesResponse is the paginated listing envelope for responses.
type ListResponsesResponse struct {
	Data   []Response `json:"data"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// ReportSnapshot is a precomputed analytics report stored per survey by the
// background refresh worker.
type ReportSnapshot struct {
	SurveyID   uuid.UUID       `json:"survey_id"`
	Report     json.RawMessage `json:"report"`
	ComputedAt time.Time       `json:"computed_at"`
}
