package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/logging"
)

// APIError is the envelope for every non-search endpoint.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// searchFailure is the /scrape-jobs error body: {success:false, error}.
type searchFailure struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Sources []domain.SourceOutcome `json:"sources,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeSearchError maps a search error onto the search contract. Only
// validation messages and the per-source failure summary reach the
// client; anything else is logged and reported generically.
func writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())

	var ve *domain.ValidationError
	var af *domain.AggregateFailure
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusBadRequest, searchFailure{Error: ve.Message})
	case errors.As(err, &af):
		log.WithError(err).Warn("search failed on every source")
		WriteJSON(w, http.StatusBadGateway, searchFailure{Error: af.Error(), Sources: af.Outcomes})
	default:
		log.WithError(err).Error("search")
		WriteJSON(w, http.StatusInternalServerError, searchFailure{Error: "internal server error"})
	}
}
