package service

import (
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

const reportRefreshKind = "report_refresh"

// ReportRefreshArgs is the job payload for recomputing one survey's report
// snapshot. SurveyID is the only uniqueness key (river:"unique") so repeated
// ingests for the same survey coalesce into a single pending refresh.
type ReportRefreshArgs struct {
	SurveyID uuid.UUID `json:"survey_id" river:"unique"`
}

// Kind returns the River job kind.
func (ReportRefreshArgs) Kind() string { return reportRefreshKind }

var _ river.JobArgs = ReportRefreshArgs{}
