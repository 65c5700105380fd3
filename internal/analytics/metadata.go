// Package analytics computes batch response analytics for one survey: a
// per-question funnel, answer distributions, and summary totals. It is a pure
// function of a survey definition and a snapshot of its responses; it performs
// no I/O and never mutates its inputs, so concurrent calls need no coordination.
package analytics

import (
	"sort"

	"github.com/techhbuddy/survey-hub/internal/models"
)

// questionMeta is the per-question lookup entry: report order, type, and
// resolved option labels.
type questionMeta struct {
	id      string
	label   string
	order   int
	index   int // position in the survey's question array, breaks order ties
	qtype   models.QuestionType
	options map[string]string // option value -> label
}

// metadataIndex maps question ids to their metadata and keeps the questions in
// report order (order asc, original array position asc).
type metadataIndex struct {
	byID    map[string]*questionMeta
	ordered []*questionMeta
}

// buildIndex builds the metadata index from a survey's question list.
// Duplicate question ids keep the last occurrence. A survey with zero
// questions yields an empty index.
func buildIndex(questions []models.Question) *metadataIndex {
	idx := &metadataIndex{byID: make(map[string]*questionMeta, len(questions))}

	for i, q := range questions {
		meta := &questionMeta{
			id:    q.ID,
			label: q.Label,
			order: q.Order,
			index: i,
			qtype: q.Type,
		}

		if len(q.Options) > 0 {
			meta.options = make(map[string]string, len(q.Options))
			for _, opt := range q.Options {
				meta.options[opt.ResolvedValue()] = opt.Label
			}
		}

		idx.byID[q.ID] = meta
	}

	idx.ordered = make([]*questionMeta, 0, len(idx.byID))
	for _, meta := range idx.byID {
		idx.ordered = append(idx.ordered, meta)
	}

	sort.Slice(idx.ordered, func(i, j int) bool {
		a, b := idx.ordered[i], idx.ordered[j]
		if a.order != b.order {
			return a.order < b.order
		}

		return a.index < b.index
	})

	return idx
}

// optionLabel resolves the display label for an observed option value. Values
// with no declared option fall back to the raw value.
func (m *questionMeta) optionLabel(value string) string {
	if label, ok := m.options[value]; ok {
		return label
	}

	return value
}
