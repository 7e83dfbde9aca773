package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/research"
	"jobsearch-engine/internal/secrets"

	"github.com/prometheus/client_golang/prometheus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type fakeEngine struct {
	res    domain.AggregateResult
	cached bool
	err    error
	panic  bool
	got    domain.SearchQuery
}

func (f *fakeEngine) Search(_ context.Context, q domain.SearchQuery) (domain.AggregateResult, bool, error) {
	if f.panic {
		panic("engine exploded")
	}
	f.got = q
	return f.res, f.cached, f.err
}

func (f *fakeEngine) Available() []domain.SourceID {
	return []domain.SourceID{domain.SourceRemotive, domain.SourceJobicy}
}

type fakeResearcher struct{}

func (fakeResearcher) Research(_ context.Context, company string) (domain.CompanyProfile, error) {
	if strings.TrimSpace(company) == "" {
		return domain.CompanyProfile{}, research.ErrCompanyRequired
	}
	return domain.CompanyProfile{CompanyName: company, Domain: "acme.com", Source: "derived"}, nil
}

func newDeps(t *testing.T, eng *fakeEngine) Deps {
	t.Helper()
	logger, _ := logrustest.NewNullLogger()
	var cfgVal atomic.Value
	cfgVal.Store(config.Default())
	path := filepath.Join(t.TempDir(), "config.yml")
	return Deps{
		Logger:      logger,
		Hub:         events.NewHub(),
		Engine:      func() Engine { return eng },
		CfgVal:      &cfgVal,
		UserCfgPath: path,
		LoadCfg:     func() (config.Config, error) { return config.Load(path) },
		Research:    fakeResearcher{},
		Gatherer:    prometheus.NewRegistry(),
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSearchSuccess(t *testing.T) {
	eng := &fakeEngine{res: domain.AggregateResult{
		Postings:   []domain.JobPosting{{ID: "1", Title: "Go Dev", Company: "Acme", Source: domain.SourceRemotive}},
		TotalFound: 4,
		Outcomes:   []domain.SourceOutcome{{Source: domain.SourceRemotive, Status: domain.StatusOK, RecordCount: 4}},
	}}
	d := newDeps(t, eng)
	sub, cancel := d.Hub.Subscribe()
	defer cancel()

	rec := do(t, NewHandler(d), http.MethodPost, "/scrape-jobs",
		`{"search_term":"go dev","site_name":["remotive"],"results_wanted":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["total_jobs"])
	meta := body["metadata"].(map[string]any)
	assert.Equal(t, "go dev", meta["search_term"])
	assert.EqualValues(t, 4, meta["total_found"])
	assert.EqualValues(t, 1, meta["actual_results"])
	assert.Equal(t, []any{"remotive"}, meta["sites_searched"])
	assert.Equal(t, false, meta["cached"])

	assert.Equal(t, []domain.SourceID{domain.SourceRemotive}, eng.got.Sources)

	select {
	case msg := <-sub:
		assert.Contains(t, msg, events.TypeSearchCompleted)
	case <-time.After(time.Second):
		t.Fatal("no search_completed event")
	}
}

func TestSearchValidation(t *testing.T) {
	h := NewHandler(newDeps(t, &fakeEngine{}))

	rec := do(t, h, http.MethodPost, "/scrape-jobs", `{"location":"Austin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "search_term is required", body["error"])

	rec = do(t, h, http.MethodPost, "/scrape-jobs", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "search_term is required", decode(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/scrape-jobs", `{"search_term":"go","site_name":["myspace"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "myspace")

	rec = do(t, h, http.MethodPost, "/scrape-jobs", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/scrape-jobs", ``)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearchAggregateFailure(t *testing.T) {
	outs := []domain.SourceOutcome{
		{Source: domain.SourceRemotive, Status: domain.StatusError, ErrorDetail: "status 500"},
		{Source: domain.SourceJobicy, Status: domain.StatusTimeout},
	}
	eng := &fakeEngine{err: &domain.AggregateFailure{Outcomes: outs}}

	rec := do(t, NewHandler(newDeps(t, eng)), http.MethodPost, "/scrape-jobs", `{"search_term":"go"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "all sources failed")
	assert.Len(t, body["sources"], 2)
}

func TestSearchInternalErrorIsGeneric(t *testing.T) {
	eng := &fakeEngine{err: errors.New("nil pointer in normalizer at 0xdeadbeef")}
	rec := do(t, NewHandler(newDeps(t, eng)), http.MethodPost, "/scrape-jobs", `{"search_term":"go"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode(t, rec)["error"])
}

func TestRecoverMiddleware(t *testing.T) {
	rec := do(t, NewHandler(newDeps(t, &fakeEngine{panic: true})), http.MethodPost, "/scrape-jobs", `{"search_term":"go"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "internal_error", errObj["code"])
	assert.NotEmpty(t, errObj["request_id"])
}

func TestRequestIDPropagatesAndLogs(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	logger, hook := logrustest.NewNullLogger()
	d.Logger = logger

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	NewHandler(d).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "abc-123", hook.LastEntry().Data["request_id"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

func TestMetaEndpoints(t *testing.T) {
	h := NewHandler(newDeps(t, &fakeEngine{}))

	body := decode(t, do(t, h, http.MethodGet, "/health", ""))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "jobsearch-engine", body["service"])

	sites := decode(t, do(t, h, http.MethodGet, "/sites", ""))["sites"].([]any)
	require.Len(t, sites, len(domain.AllSources))
	enabled := map[string]bool{}
	for _, s := range sites {
		m := s.(map[string]any)
		enabled[m["value"].(string)] = m["enabled"].(bool)
	}
	assert.True(t, enabled["remotive"])
	assert.False(t, enabled["adzuna"])

	assert.Len(t, decode(t, do(t, h, http.MethodGet, "/countries", ""))["countries"], len(domain.Countries))
	assert.Len(t, decode(t, do(t, h, http.MethodGet, "/job-types", ""))["job_types"], len(domain.JobTypes))
	assert.Len(t, decode(t, do(t, h, http.MethodGet, "/description-formats", ""))["formats"], 3)
}

func TestIndexListsRoutes(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	h := NewHandler(d)

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	endpoints := decode(t, rec)["endpoints"].(map[string]any)
	assert.Equal(t, "/scrape-jobs", endpoints["scrape_jobs"])
	assert.Equal(t, "/events", endpoints["events"])
	assert.Equal(t, "/company-research", endpoints["company_research"])

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/", "").Code)

	d.Research = nil
	endpoints = decode(t, do(t, NewHandler(d), http.MethodGet, "/", ""))["endpoints"].(map[string]any)
	assert.NotContains(t, endpoints, "company_research")
}

func TestSearchErrorMapping(t *testing.T) {
	wrapped := fmt.Errorf("build query: %w", &domain.ValidationError{Field: "job_type", Message: "unknown job_type \"gig\""})
	rec := httptest.NewRecorder()
	writeSearchError(rec, httptest.NewRequest(http.MethodPost, "/scrape-jobs", nil), wrapped)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `unknown job_type "gig"`, decode(t, rec)["error"])
}

func TestCorsPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/scrape-jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	NewHandler(newDeps(t, &fakeEngine{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCompanyResearch(t *testing.T) {
	h := NewHandler(newDeps(t, &fakeEngine{}))

	rec := do(t, h, http.MethodPost, "/company-research", `{"company_name":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme.com", decode(t, rec)["domain"])

	rec = do(t, h, http.MethodPost, "/company-research", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyResearchDisabled(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	d.Research = nil
	rec := do(t, NewHandler(d), http.MethodPost, "/company-research", `{"company_name":"Acme"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConfigPutReloadsAndNotifies(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	var notified atomic.Int32
	d.OnConfig = func(config.Config) { notified.Add(1) }
	h := NewHandler(d)

	cfg := config.Default()
	cfg.Search.DefaultResults = 25
	b, err := json.Marshal(cfg)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPut, "/config", string(b))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 25, d.CfgVal.Load().(config.Config).Search.DefaultResults)
	assert.EqualValues(t, 1, notified.Load())

	got := decode(t, do(t, h, http.MethodGet, "/config", ""))
	assert.EqualValues(t, 25, got["search"].(map[string]any)["default_results"])
}

func TestConfigPutRejectsInvalid(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	h := NewHandler(d)

	cfg := config.Default()
	cfg.App.Port = 0
	b, _ := json.Marshal(cfg)
	rec := do(t, h, http.MethodPut, "/config", string(b))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["errors"])

	rec = do(t, h, http.MethodPut, "/config", `{"surprise":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 8000, d.CfgVal.Load().(config.Config).App.Port)
}

func TestConfigValidate(t *testing.T) {
	rec := do(t, NewHandler(newDeps(t, &fakeEngine{})), http.MethodGet, "/config/validate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["errors"])
}

func TestSetAdzunaKey(t *testing.T) {
	keyring.MockInit()
	t.Setenv("ADZUNA_APP_KEY", "")
	d := newDeps(t, &fakeEngine{})
	var rebuilt atomic.Int32
	d.OnConfig = func(config.Config) { rebuilt.Add(1) }
	h := NewHandler(d)

	rec := do(t, h, http.MethodPost, "/api/secrets/adzuna", `{"app_key":"s3cret"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	key, err := secrets.AdzunaAppKey()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", key)
	assert.EqualValues(t, 1, rebuilt.Load())

	rec = do(t, h, http.MethodPost, "/api/secrets/adzuna", `{"app_key":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "jobsearch_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	d.Gatherer = reg

	rec := do(t, NewHandler(d), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobsearch_test_total 1")
}

func TestEventsStream(t *testing.T) {
	d := newDeps(t, &fakeEngine{})
	srv := httptest.NewServer(NewHandler(d))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}
	assert.Contains(t, readData(), `"type":"ping"`)

	require.Eventually(t, func() bool { return d.Hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	d.Hub.Publish(`{"type":"search_completed"}`)
	assert.Equal(t, `{"type":"search_completed"}`, readData())
}
