package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux registers every route on a fresh mux.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	sh := SearchHandler{Deps: d}
	mux.HandleFunc("/scrape-jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Search,
	}))

	mh := MetaHandler{Deps: d}
	// {$} keeps the index from swallowing unknown paths
	mux.HandleFunc("/{$}", methodMux(map[string]http.HandlerFunc{http.MethodGet: mh.Index}))
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{http.MethodGet: mh.Health}))
	mux.HandleFunc("/sites", methodMux(map[string]http.HandlerFunc{http.MethodGet: mh.Sites}))
	mux.HandleFunc("/countries", methodMux(map[string]http.HandlerFunc{http.MethodGet: mh.Countries}))
	mux.HandleFunc("/job-types", methodMux(map[string]http.HandlerFunc{http.MethodGet: mh.JobTypes}))
	mux.HandleFunc("/description-formats", methodMux(map[string]http.HandlerFunc{http.MethodGet: mh.DescriptionFormats}))

	rh := ResearchHandler{Deps: d}
	mux.HandleFunc("/company-research", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Research,
	}))

	// Config
	ch := ConfigHandler{Deps: d}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{http.MethodGet: ch.Path}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{http.MethodGet: ch.Validate}))

	// Secrets
	sec := SecretsHandler{Deps: d}
	mux.HandleFunc("/api/secrets/adzuna", methodMux(map[string]http.HandlerFunc{http.MethodPost: sec.SetAdzunaKey}))
	mux.HandleFunc("/api/secrets/hunter", methodMux(map[string]http.HandlerFunc{http.MethodPost: sec.SetHunterKey}))

	// SSE events
	if d.Hub != nil {
		eh := EventsHandler{Deps: d}
		mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{http.MethodGet: eh.ServeSSE}))
	}

	g := d.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	return mux
}

// NewHandler is the mux wrapped in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID(d.Logger), Recover, AccessLog, Cors)
}
