package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusOK          Status = "ok"
	StatusTimeout     Status = "timeout"
	StatusRateLimited Status = "rateLimited"
	StatusError       Status = "error"
	StatusSkipped     Status = "skipped"
)

// SourceOutcome reports one adapter invocation. It is never mutated after
// the orchestrator emits it.
type SourceOutcome struct {
	Source         SourceID `json:"source"`
	Status         Status   `json:"status"`
	RecordCount    int      `json:"record_count"`
	ErrorDetail    string   `json:"error,omitempty"`
	IgnoredFilters []string `json:"ignored_filters,omitempty"`
	Attempts       int      `json:"attempts"`
	DurationMS     int64    `json:"duration_ms"`
}

func (o SourceOutcome) OK() bool { return o.Status == StatusOK }

type AggregateResult struct {
	Postings   []JobPosting    `json:"postings"`
	TotalFound int             `json:"total_found"`
	Outcomes   []SourceOutcome `json:"outcomes"`
	Skipped    int             `json:"skipped"`
}

// AggregateFailure is returned when no source produced an ok outcome.
type AggregateFailure struct {
	Outcomes []SourceOutcome
}

func (e *AggregateFailure) Error() string {
	parts := make([]string, 0, len(e.Outcomes))
	for _, o := range e.Outcomes {
		if o.ErrorDetail != "" {
			parts = append(parts, fmt.Sprintf("%s=%s (%s)", o.Source, o.Status, o.ErrorDetail))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", o.Source, o.Status))
		}
	}
	return "all sources failed: " + strings.Join(parts, "; ")
}
