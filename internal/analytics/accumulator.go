package analytics

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/techhbuddy/survey-hub/internal/models"
)

// answerKind tags the decoded answer union.
type answerKind int

const (
	answerChoice answerKind = iota
	answerRating
	answerText
	answerPresence // unknown question types: only "answered" is tracked
)

// answerValue is the decoded form of an answer, resolved once per answer via
// the question metadata so the main loop never inspects raw shapes.
type answerValue struct {
	kind       answerKind
	selections []string // answerChoice
	rating     float64  // answerRating
}

// decodeAnswer decodes a raw answer value according to the question type.
// It returns ok == false for empty values (null, blank string, empty list) and
// for shapes that do not match the question type; such answers are skipped
// entirely and count toward neither reached nor the tallies.
func decodeAnswer(qtype models.QuestionType, raw json.RawMessage) (answerValue, bool) {
	if len(raw) == 0 {
		return answerValue{}, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return answerValue{}, false
	}

	if v == nil {
		return answerValue{}, false
	}

	switch qtype {
	case models.QuestionTypeMultipleChoice, models.QuestionTypeRanking:
		return decodeChoice(v)
	case models.QuestionTypeRating, models.QuestionTypeStarRating:
		return decodeRating(v)
	case models.QuestionTypeShortText, models.QuestionTypeLongText:
		return decodeText(v)
	default:
		return decodePresence(v)
	}
}

// decodeChoice accepts a single value or a list; a list contributes one
// selection per element (multi-select). Blank elements are dropped; an
// all-blank list is an empty answer.
func decodeChoice(v any) (answerValue, bool) {
	var selections []string

	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			selections = []string{s}
		}
	case float64:
		selections = []string{formatNumber(val)}
	case []any:
		for _, elem := range val {
			switch e := elem.(type) {
			case string:
				if s := strings.TrimSpace(e); s != "" {
					selections = append(selections, s)
				}
			case float64:
				selections = append(selections, formatNumber(e))
			}
		}
	default:
		return answerValue{}, false
	}

	if len(selections) == 0 {
		return answerValue{}, false
	}

	return answerValue{kind: answerChoice, selections: selections}, true
}

// decodeRating accepts a number or a numeric string. Anything else is dropped.
func decodeRating(v any) (answerValue, bool) {
	switch val := v.(type) {
	case float64:
		return answerValue{kind: answerRating, rating: val}, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return answerValue{}, false
		}

		return answerValue{kind: answerRating, rating: f}, true
	default:
		return answerValue{}, false
	}
}

// decodeText accepts a non-blank string; content is never analyzed here.
func decodeText(v any) (answerValue, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return answerValue{}, false
	}

	return answerValue{kind: answerText}, true
}

// decodePresence records that an unknown-typed question was answered with a
// non-empty value, without producing a distribution.
func decodePresence(v any) (answerValue, bool) {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return answerValue{}, false
		}
	case []any:
		if len(val) == 0 {
			return answerValue{}, false
		}
	}

	return answerValue{kind: answerPresence}, true
}

// formatNumber renders a numeric value with the minimal digits needed (4 -> "4", 4.5 -> "4.5").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// choiceTally counts selections per option value and remembers each value's
// first-seen sequence so distribution ties sort deterministically.
type choiceTally struct {
	counts map[string]int
	seq    map[string]int
	next   int
}

func newChoiceTally() *choiceTally {
	return &choiceTally{counts: make(map[string]int), seq: make(map[string]int)}
}

func (t *choiceTally) add(value string) {
	if _, seen := t.seq[value]; !seen {
		t.seq[value] = t.next
		t.next++
	}

	t.counts[value]++
}

// accumulator holds the transient per-question state for one aggregation call.
type accumulator struct {
	meta         *questionMeta
	reached      int
	totalAnswers int

	choices   *choiceTally    // multiple_choice, ranking
	ratings   map[float64]int // rating, star_rating
	textCount int             // short_text, long_text
}

func newAccumulator(meta *questionMeta) *accumulator {
	acc := &accumulator{meta: meta}

	switch meta.qtype {
	case models.QuestionTypeMultipleChoice, models.QuestionTypeRanking:
		acc.choices = newChoiceTally()
	case models.QuestionTypeRating, models.QuestionTypeStarRating:
		acc.ratings = make(map[float64]int)
	}

	return acc
}

// record applies one decoded answer to the tallies. A list-valued choice
// answer increments totalAnswers once per selection so percentages over the
// distribution always sum to 100.
func (a *accumulator) record(v answerValue) {
	switch v.kind {
	case answerChoice:
		for _, sel := range v.selections {
			a.choices.add(sel)
			a.totalAnswers++
		}
	case answerRating:
		a.ratings[v.rating]++
		a.totalAnswers++
	case answerText:
		a.textCount++
		a.totalAnswers++
	case answerPresence:
		a.totalAnswers++
	}
}
