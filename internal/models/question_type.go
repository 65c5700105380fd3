package models

import "fmt"

// QuestionType determines the allowed answer shape for a question.
type QuestionType string

// Known question types. Unknown values are tolerated by the aggregation
// pipeline (they degrade to a report entry without a distribution), but are
// rejected when authoring a survey.
const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeShortText      QuestionType = "short_text"
	QuestionTypeLongText       QuestionType = "long_text"
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeStarRating     QuestionType = "star_rating"
	QuestionTypeRanking        QuestionType = "ranking"
)

// ValidQuestionTypes is the set of question types accepted at survey creation.
var ValidQuestionTypes = map[QuestionType]struct{}{
	QuestionTypeMultipleChoice: {},
	QuestionTypeShortText:      {},
	QuestionTypeLongText:       {},
	QuestionTypeRating:         {},
	QuestionTypeStarRating:     {},
	QuestionTypeRanking:        {},
}

// IsValid reports whether t is a known question type.
func (t QuestionType) IsValid() bool {
	_, ok := ValidQuestionTypes[t]

	return ok
}

// HasOptions reports whether the type carries declared answer options.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeRanking
}

// ParseQuestionType parses s into a QuestionType, rejecting unknown values.
func ParseQuestionType(s string) (QuestionType, error) {
	t := QuestionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid question type: %q", s)
	}

	return t, nil
}
