package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techhbuddy/survey-hub/internal/models"
)

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		name  string
		qtype models.QuestionType
		raw   string
		ok    bool
		check func(t *testing.T, v answerValue)
	}{
		{
			name: "choice single string", qtype: models.QuestionTypeMultipleChoice,
			raw: `"blue"`, ok: true,
			check: func(t *testing.T, v answerValue) {
				assert.Equal(t, []string{"blue"}, v.selections)
			},
		},
		{
			name: "choice list", qtype: models.QuestionTypeRanking,
			raw: `["first","second"]`, ok: true,
			check: func(t *testing.T, v answerValue) {
				assert.Equal(t, []string{"first", "second"}, v.selections)
			},
		},
		{
			name: "choice numeric value stringified", qtype: models.QuestionTypeMultipleChoice,
			raw: `[1, 2.5]`, ok: true,
			check: func(t *testing.T, v answerValue) {
				assert.Equal(t, []string{"1", "2.5"}, v.selections)
			},
		},
		{
			name: "choice blank elements dropped", qtype: models.QuestionTypeMultipleChoice,
			raw: `["", "  ", "kept"]`, ok: true,
			check: func(t *testing.T, v answerValue) {
				assert.Equal(t, []string{"kept"}, v.selections)
			},
		},
		{name: "choice all blank is empty", qtype: models.QuestionTypeMultipleChoice, raw: `["", "  "]`},
		{name: "choice empty list", qtype: models.QuestionTypeMultipleChoice, raw: `[]`},
		{name: "choice object rejected", qtype: models.QuestionTypeMultipleChoice, raw: `{"a":1}`},
		{
			name: "rating number", qtype: models.QuestionTypeRating,
			raw: `4`, ok: true,
			check: func(t *testing.T, v answerValue) {
				assert.Equal(t, float64(4), v.rating)
			},
		},
		{
			name: "rating numeric string", qtype: models.QuestionTypeStarRating,
			raw: `" 3.5 "`, ok: true,
			check: func(t *testing.T, v answerValue) {
				assert.Equal(t, 3.5, v.rating)
			},
		},
		{name: "rating non-numeric dropped", qtype: models.QuestionTypeRating, raw: `"great"`},
		{name: "rating list rejected", qtype: models.QuestionTypeRating, raw: `[4]`},
		{name: "text non-empty", qtype: models.QuestionTypeShortText, raw: `"hi"`, ok: true},
		{name: "text blank is empty", qtype: models.QuestionTypeLongText, raw: `"   "`},
		{name: "text number rejected", qtype: models.QuestionTypeShortText, raw: `42`},
		{name: "unknown type presence", qtype: "matrix", raw: `{"row":"col"}`, ok: true},
		{name: "unknown type blank string empty", qtype: "matrix", raw: `"  "`},
		{name: "null is empty", qtype: models.QuestionTypeRating, raw: `null`},
		{name: "missing value is empty", qtype: models.QuestionTypeRating, raw: ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var raw json.RawMessage
			if tc.raw != "" {
				raw = json.RawMessage(tc.raw)
			}

			v, ok := decodeAnswer(tc.qtype, raw)
			require.Equal(t, tc.ok, ok)

			if tc.check != nil {
				tc.check(t, v)
			}
		})
	}
}

func TestChoiceTally_InsertionSequence(t *testing.T) {
	tally := newChoiceTally()
	tally.add("z")
	tally.add("a")
	tally.add("z")

	assert.Equal(t, 2, tally.counts["z"])
	assert.Equal(t, 1, tally.counts["a"])
	assert.Equal(t, 0, tally.seq["z"])
	assert.Equal(t, 1, tally.seq["a"])
}

func TestAccumulator_RecordMultiSelect(t *testing.T) {
	meta := buildIndex([]models.Question{
		{ID: "q", Label: "Pick", Type: models.QuestionTypeMultipleChoice},
	}).byID["q"]
	acc := newAccumulator(meta)

	acc.record(answerValue{kind: answerChoice, selections: []string{"a", "b", "a"}})

	assert.Equal(t, 3, acc.totalAnswers)
	assert.Equal(t, 2, acc.choices.counts["a"])
	assert.Equal(t, 1, acc.choices.counts["b"])
}
