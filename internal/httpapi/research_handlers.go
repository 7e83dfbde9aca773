package httpapi

import (
	"errors"
	"net/http"

	"jobsearch-engine/internal/logging"
	"jobsearch-engine/internal/research"
)

type ResearchHandler struct {
	Deps Deps
}

type researchReq struct {
	CompanyName string `json:"company_name"`
}

func (h ResearchHandler) Research(w http.ResponseWriter, r *http.Request) {
	if h.Deps.Research == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "research_disabled", "company research is disabled")
		return
	}

	var req researchReq
	if err := decodeBody(r, &req, false); err != nil && !errors.Is(err, errEmptyBody) {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	p, err := h.Deps.Research.Research(r.Context(), req.CompanyName)
	switch {
	case errors.Is(err, research.ErrCompanyRequired):
		WriteError(w, r, http.StatusBadRequest, "missing_company", err.Error())
	case err != nil:
		logging.FromContext(r.Context()).WithError(err).Warn("company research failed")
		WriteError(w, r, http.StatusBadGateway, "research_failed", "company lookup failed")
	default:
		WriteJSON(w, http.StatusOK, p)
	}
}
