// Package events carries server-sent notifications to connected UI clients.
package events

import (
	"encoding/json"
	"time"

	"jobsearch-engine/internal/domain"
)

const (
	TypeSearchCompleted = "search_completed"
	TypePing            = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SearchCompleted is published after every successful search.
type SearchCompleted struct {
	SearchTerm string                 `json:"search_term"`
	TotalJobs  int                    `json:"total_jobs"`
	Cached     bool                   `json:"cached"`
	Sources    []domain.SourceOutcome `json:"sources"`
}

// Encode renders an event as one JSON line ready for an SSE data field.
func Encode(reqID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}

func NewSearchCompleted(reqID string, q domain.SearchQuery, res domain.AggregateResult, cached bool) string {
	return Encode(reqID, TypeSearchCompleted, SearchCompleted{
		SearchTerm: q.SearchTerm,
		TotalJobs:  res.TotalFound,
		Cached:     cached,
		Sources:    res.Outcomes,
	})
}
