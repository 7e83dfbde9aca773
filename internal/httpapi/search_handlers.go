package httpapi

import (
	"errors"
	"net/http"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
)

type SearchHandler struct {
	Deps Deps
}

type searchMetadata struct {
	SearchTerm    string                 `json:"search_term"`
	Location      string                 `json:"location"`
	SitesSearched []domain.SourceID      `json:"sites_searched"`
	Timestamp     string                 `json:"timestamp"`
	ResultsWanted int                    `json:"results_wanted"`
	ActualResults int                    `json:"actual_results"`
	TotalFound    int                    `json:"total_found"`
	Sources       []domain.SourceOutcome `json:"sources"`
	Cached        bool                   `json:"cached"`
}

type searchResponse struct {
	Success   bool                `json:"success"`
	TotalJobs int                 `json:"total_jobs"`
	Jobs      []domain.JobPosting `json:"jobs"`
	Metadata  searchMetadata      `json:"metadata"`
}

func (h SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	// an empty body falls through to the search_term check
	if err := decodeBody(r, &req, false); err != nil && !errors.Is(err, errEmptyBody) {
		WriteJSON(w, http.StatusBadRequest, searchFailure{Error: err.Error()})
		return
	}
	q, err := domain.NewSearchQuery(req, h.Deps.config().QueryDefaults())
	if err != nil {
		writeSearchError(w, r, err)
		return
	}

	res, cached, err := h.Deps.Engine().Search(r.Context(), q)
	if err != nil {
		writeSearchError(w, r, err)
		return
	}

	if h.Deps.Hub != nil {
		h.Deps.Hub.Publish(events.NewSearchCompleted(RequestIDFrom(r.Context()), q, res, cached))
	}

	WriteJSON(w, http.StatusOK, searchResponse{
		Success:   true,
		TotalJobs: len(res.Postings),
		Jobs:      res.Postings,
		Metadata: searchMetadata{
			SearchTerm:    q.SearchTerm,
			Location:      q.Location,
			SitesSearched: q.Sources,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			ResultsWanted: q.ResultsWanted,
			ActualResults: len(res.Postings),
			TotalFound:    res.TotalFound,
			Sources:       res.Outcomes,
			Cached:        cached,
		},
	})
}
