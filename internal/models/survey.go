package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionOption is one declared choice for a multiple_choice or ranking question.
// Value is the stable identifier recorded in answers; it defaults to Label when absent.
type QuestionOption struct {
	Value string `json:"value,omitempty"`
	Label string `json:"label" validate:"required,min=1,no_null_bytes"`
}

// ResolvedValue returns the option value, falling back to the label.
func (o QuestionOption) ResolvedValue() string {
	if o.Value != "" {
		return o.Value
	}

	return o.Label
}

// Question is a single prompt within a survey. ID is an opaque identifier
// unique within the survey; Order defines report order (ties broken by array position).
type Question struct {
	ID      string           `json:"id" validate:"required,min=1,max=255,no_null_bytes"`
	Label   string           `json:"label" validate:"required,min=1,no_null_bytes"`
	Order   int              `json:"order"`
	Type    QuestionType     `json:"type" validate:"required,question_type"`
	Options []QuestionOption `json:"options,omitempty" validate:"omitempty,dive"`
}

// Survey is an ordered set of questions authored by a creator.
// Questions are stored as a single JSONB document, matching the document shape
// the responses reference by question id.
type Survey struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateSurveyRequest is the payload for creating a survey.
type CreateSurveyRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255,no_null_bytes"`
	Description *string    `json:"description,omitempty" validate:"omitempty,no_null_bytes"`
	Questions   []Question `json:"questions" validate:"omitempty,dive"`
}

// ListSurveysFilters are the query parameters for listing surveys.
type ListSurveysFilters struct {
	Name   *string `form:"name" validate:"omitempty,no_null_bytes"`
	Limit  int     `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset int     `form:"offset" validate:"omitempty,min=0,max=2147483647"`
}

// ListSurveysResponse is the paginated listing envelope for surveys.
type ListSurveysResponse struct {
	Data   []Survey `json:"data"`
	Total  int64    `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}
