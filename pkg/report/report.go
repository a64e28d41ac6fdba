// Package report assembles the four-box session report produced
// asynchronously by the platform backend.
package report

import "strings"

// Report is the four-box summary of a working session.
type Report struct {
	Accomplishments string `json:"accomplishments"`
	Insights        string `json:"insights"`
	Decisions       string `json:"decisions"`
	NextSteps       string `json:"nextSteps"`
}

// Complete reports whether every box has content.
func (r Report) Complete() bool {
	return r.Accomplishments != "" && r.Insights != "" && r.Decisions != "" && r.NextSteps != ""
}

// Empty reports whether no box has content.
func (r Report) Empty() bool {
	return r.Accomplishments == "" && r.Insights == "" && r.Decisions == "" && r.NextSteps == ""
}

// Merge folds a newer partial into r. Boxes already filled are only
// replaced by non-empty updates, so partial progress is never lost.
func (r *Report) Merge(update Report) {
	if s := strings.TrimSpace(update.Accomplishments); s != "" {
		r.Accomplishments = s
	}
	if s := strings.TrimSpace(update.Insights); s != "" {
		r.Insights = s
	}
	if s := strings.TrimSpace(update.Decisions); s != "" {
		r.Decisions = s
	}
	if s := strings.TrimSpace(update.NextSteps); s != "" {
		r.NextSteps = s
	}
}

// Status describes where report generation stands.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Update is one poll result from the generation backend.
type Update struct {
	Status Status `json:"status"`
	Report Report `json:"report"`
	Error  string `json:"error,omitempty"`
}
