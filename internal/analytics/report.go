package analytics

// QuestionKind classifies a question's report entry; consumers dispatch on it
// to interpret the distribution payload.
type QuestionKind string

// Report entry kinds.
const (
	KindChoice  QuestionKind = "choice"
	KindRating  QuestionKind = "rating"
	KindText    QuestionKind = "text"
	KindUnknown QuestionKind = "unknown"
)

// Totals are the survey-wide summary counts.
type Totals struct {
	TotalResponses               int     `json:"total_responses"`
	CompletedResponses           int     `json:"completed_responses"`
	PartialResponses             int     `json:"partial_responses"`
	AverageCompletionTimeSeconds float64 `json:"average_completion_time_seconds"`
}

// FunnelStep is one question's reach count, in question order. Reached counts
// distinct responses with at least one non-empty answer for the question.
type FunnelStep struct {
	QuestionID    string `json:"question_id"`
	QuestionLabel string `json:"question_label"`
	Order         int    `json:"order"`
	Reached       int    `json:"reached"`
}

// DistributionEntry is one bucket of a question's answer distribution.
// Value is a string (option value) for choice kinds and a number for rating
// kinds; Label is set only for choice kinds.
type DistributionEntry struct {
	Value      any     `json:"value"`
	Label      string  `json:"label,omitempty"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QuestionReport is the per-question analytics entry. Distribution is present
// for choice and rating kinds, TextCount for text kinds; unknown kinds carry
// base fields only.
type QuestionReport struct {
	QuestionID    string              `json:"question_id"`
	QuestionLabel string              `json:"question_label"`
	Order         int                 `json:"order"`
	Kind          QuestionKind        `json:"kind"`
	Reached       int                 `json:"reached"`
	TotalAnswers  int                 `json:"total_answers"`
	Distribution  []DistributionEntry `json:"distribution,omitempty"`
	TextCount     *int                `json:"text_count,omitempty"`
}

// Report is the full aggregation output for one survey. Re-running with
// identical inputs yields byte-identical JSON.
type Report struct {
	SurveyID  string           `json:"survey_id"`
	Totals    Totals           `json:"totals"`
	Funnel    []FunnelStep     `json:"funnel"`
	Questions []QuestionReport `json:"questions"`
}
