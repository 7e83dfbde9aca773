package aggregate

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	SourceRequests *prometheus.CounterVec
	SourceDuration *prometheus.HistogramVec
	SourceRetries  *prometheus.CounterVec
	Searches       *prometheus.CounterVec
}

// NewMetrics registers the aggregation metrics on reg. A nil reg yields
// unregistered collectors, which tests use to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsearch_source_requests_total",
			Help: "Source adapter invocations by outcome status.",
		}, []string{"source", "status"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobsearch_source_duration_seconds",
			Help:    "Wall time of one source invocation including retries.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"source"}),
		SourceRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsearch_source_retries_total",
			Help: "Retries issued after a rate-limited response.",
		}, []string{"source"}),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobsearch_searches_total",
			Help: "Searches by result (ok, failed, cached).",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.SourceRequests, m.SourceDuration, m.SourceRetries, m.Searches)
	}
	return m
}

func (m *Metrics) observeSource(source, status string, seconds float64, retries int) {
	if m == nil {
		return
	}
	m.SourceRequests.WithLabelValues(source, status).Inc()
	m.SourceDuration.WithLabelValues(source).Observe(seconds)
	if retries > 0 {
		m.SourceRetries.WithLabelValues(source).Add(float64(retries))
	}
}

func (m *Metrics) IncSearch(result string) {
	if m == nil || m.Searches == nil {
		return
	}
	m.Searches.WithLabelValues(result).Inc()
}
