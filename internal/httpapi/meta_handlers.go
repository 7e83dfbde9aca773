package httpapi

import (
	"net/http"
	"time"

	"jobsearch-engine/internal/domain"
)

const serviceName = "jobsearch-engine"

type MetaHandler struct {
	Deps Deps
}

// Index lists the public routes. Optional ones appear only when wired.
func (h MetaHandler) Index(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"health":              "/health",
		"scrape_jobs":         "/scrape-jobs",
		"sites":               "/sites",
		"countries":           "/countries",
		"job_types":           "/job-types",
		"description_formats": "/description-formats",
		"config":              "/config",
		"metrics":             "/metrics",
	}
	if h.Deps.Research != nil {
		endpoints["company_research"] = "/company-research"
	}
	if h.Deps.Hub != nil {
		endpoints["events"] = "/events"
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"service":   serviceName,
		"status":    "running",
		"endpoints": endpoints,
	})
}

func (h MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}

type siteOption struct {
	Value   domain.SourceID `json:"value"`
	Name    string          `json:"name"`
	Enabled bool            `json:"enabled"`
}

// Sites lists every known source; enabled means it has a usable adapter.
func (h MetaHandler) Sites(w http.ResponseWriter, r *http.Request) {
	available := map[domain.SourceID]bool{}
	for _, s := range h.Deps.Engine().Available() {
		available[s] = true
	}
	sites := make([]siteOption, 0, len(domain.AllSources))
	for _, s := range domain.AllSources {
		sites = append(sites, siteOption{Value: s, Name: s.DisplayName(), Enabled: available[s]})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"sites": sites})
}

func (h MetaHandler) Countries(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"countries": domain.Countries})
}

func (h MetaHandler) JobTypes(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"job_types": domain.JobTypes})
}

func (h MetaHandler) DescriptionFormats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"formats": domain.DescriptionFormats})
}
