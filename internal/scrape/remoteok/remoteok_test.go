package remoteok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `[
 {"legal":"API Terms of Service: ..."},
 {"slug":"a","epoch":1746860400,"company":"Rusty","position":"Senior Rust Engineer","tags":["rust","backend"],
  "description":"<p>Rust</p>","location":"Worldwide","salary_min":100000,"salary_max":140000,"url":"https://remoteok.com/remote-jobs/a"},
 {"slug":"b","epoch":1745000000,"company":"Old","position":"Rust Engineer","tags":["rust","contract"],
  "url":"https://remoteok.com/remote-jobs/b"},
 {"slug":"c","epoch":1746860400,"company":"Web","position":"Frontend Dev","tags":["react"],
  "url":"https://remoteok.com/remote-jobs/c"}
]`

func newScraper(t *testing.T) *Scraper {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api", r.URL.Path)
		_, _ = w.Write([]byte(feed))
	}))
	t.Cleanup(srv.Close)
	s := New(Config{BaseURL: srv.URL}, srv.Client(), nil)
	s.now = func() time.Time { return time.Unix(1746864000, 0) }
	return s
}

func TestFetchSkipsNoticeAndFiltersTerm(t *testing.T) {
	s := newScraper(t)
	recs, err := s.Fetch(context.Background(), domain.SearchQuery{SearchTerm: "rust", ResultsWanted: 10})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Senior Rust Engineer", recs[0][types.KeyTitle])
	assert.Equal(t, "Worldwide", recs[0][types.KeyLocation])
	assert.Equal(t, time.Unix(1746860400, 0).UTC(), recs[0][types.KeyDatePosted])
	assert.Equal(t, "USD", recs[0][types.KeySalaryCurrency])
	assert.Equal(t, "contract", recs[1][types.KeyJobType])
}

func TestFetchHoursOld(t *testing.T) {
	s := newScraper(t)
	hours := 24
	recs, err := s.Fetch(context.Background(), domain.SearchQuery{SearchTerm: "rust", HoursOld: &hours, ResultsWanted: 10})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Rusty", recs[0][types.KeyCompany])
}

func TestFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL}, srv.Client(), nil)
	_, err := s.Fetch(context.Background(), domain.SearchQuery{SearchTerm: "rust", ResultsWanted: 10})
	assert.Equal(t, types.KindMalformed, types.KindOf(err))
}
