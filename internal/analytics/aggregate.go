package analytics

import (
	"sort"

	"github.com/techhbuddy/survey-hub/internal/models"
)

// Aggregate computes the analytics report for one survey from a snapshot of
// its responses. It processes every response exactly once; malformed input
// (unknown question ids, unknown question types, mismatched value shapes) is
// skipped, never fatal. Zero questions or zero responses produce a
// structurally valid zero-filled report.
func Aggregate(survey *models.Survey, responses []models.Response) *Report {
	idx := buildIndex(survey.Questions)

	accs := make(map[string]*accumulator, len(idx.byID))
	for id, meta := range idx.byID {
		accs[id] = newAccumulator(meta)
	}

	var (
		totals     Totals
		timeSum    float64
		timedCount int
	)

	for i := range responses {
		resp := &responses[i]
		totals.TotalResponses++

		if resp.IsCompleted {
			totals.CompletedResponses++

			if resp.TimeSpentSeconds != nil {
				timeSum += *resp.TimeSpentSeconds
				timedCount++
			}
		} else {
			totals.PartialResponses++
		}

		// Track which questions got a non-empty answer within this response so
		// duplicate answers cannot double-count reached.
		reachedHere := make(map[string]struct{})

		for _, ans := range resp.Answers {
			acc, ok := accs[ans.QuestionID]
			if !ok {
				continue
			}

			val, ok := decodeAnswer(acc.meta.qtype, ans.Value)
			if !ok {
				continue
			}

			acc.record(val)
			reachedHere[ans.QuestionID] = struct{}{}
		}

		for id := range reachedHere {
			accs[id].reached++
		}
	}

	if timedCount > 0 {
		totals.AverageCompletionTimeSeconds = timeSum / float64(timedCount)
	}

	return &Report{
		SurveyID:  survey.ID.String(),
		Totals:    totals,
		Funnel:    buildFunnel(idx, accs),
		Questions: buildQuestionReports(idx, accs),
	}
}

// buildFunnel projects reached counts in question order.
func buildFunnel(idx *metadataIndex, accs map[string]*accumulator) []FunnelStep {
	funnel := make([]FunnelStep, 0, len(idx.ordered))

	for _, meta := range idx.ordered {
		funnel = append(funnel, FunnelStep{
			QuestionID:    meta.id,
			QuestionLabel: meta.label,
			Order:         meta.order,
			Reached:       accs[meta.id].reached,
		})
	}

	return funnel
}

// buildQuestionReports renders one report entry per question, in question order.
func buildQuestionReports(idx *metadataIndex, accs map[string]*accumulator) []QuestionReport {
	reports := make([]QuestionReport, 0, len(idx.ordered))

	for _, meta := range idx.ordered {
		acc := accs[meta.id]

		entry := QuestionReport{
			QuestionID:    meta.id,
			QuestionLabel: meta.label,
			Order:         meta.order,
			Kind:          kindForType(meta.qtype),
			Reached:       acc.reached,
			TotalAnswers:  acc.totalAnswers,
		}

		switch entry.Kind {
		case KindChoice:
			entry.Distribution = choiceDistribution(acc)
		case KindRating:
			entry.Distribution = ratingDistribution(acc)
		case KindText:
			textCount := acc.textCount
			entry.TextCount = &textCount
		case KindUnknown:
			// base fields only
		}

		reports = append(reports, entry)
	}

	return reports
}

func kindForType(t models.QuestionType) QuestionKind {
	switch t {
	case models.QuestionTypeMultipleChoice, models.QuestionTypeRanking:
		return KindChoice
	case models.QuestionTypeRating, models.QuestionTypeStarRating:
		return KindRating
	case models.QuestionTypeShortText, models.QuestionTypeLongText:
		return KindText
	default:
		return KindUnknown
	}
}

// choiceDistribution renders observed option values sorted by count descending,
// ties broken by first-seen order. Options never selected are omitted.
func choiceDistribution(acc *accumulator) []DistributionEntry {
	tally := acc.choices

	values := make([]string, 0, len(tally.counts))
	for value := range tally.counts {
		values = append(values, value)
	}

	sort.Slice(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if tally.counts[a] != tally.counts[b] {
			return tally.counts[a] > tally.counts[b]
		}

		return tally.seq[a] < tally.seq[b]
	})

	entries := make([]DistributionEntry, 0, len(values))
	for _, value := range values {
		count := tally.counts[value]
		entries = append(entries, DistributionEntry{
			Value:      value,
			Label:      acc.meta.optionLabel(value),
			Count:      count,
			Percentage: percentage(count, acc.totalAnswers),
		})
	}

	return entries
}

// ratingDistribution renders rating occurrence counts sorted by value ascending.
func ratingDistribution(acc *accumulator) []DistributionEntry {
	values := make([]float64, 0, len(acc.ratings))
	for value := range acc.ratings {
		values = append(values, value)
	}

	sort.Float64s(values)

	entries := make([]DistributionEntry, 0, len(values))
	for _, value := range values {
		count := acc.ratings[value]
		entries = append(entries, DistributionEntry{
			Value:      value,
			Count:      count,
			Percentage: percentage(count, acc.totalAnswers),
		})
	}

	return entries
}

// percentage is count/total*100, defined as 0 when total is 0.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(count) / float64(total) * 100
}
