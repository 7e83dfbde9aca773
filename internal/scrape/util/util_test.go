package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeURL(t *testing.T) {
	a := CanonicalizeURL("HTTPS://Jobs.Example.com/a/1?utm_source=x&b=2&a=1#apply")
	b := CanonicalizeURL("https://jobs.example.com/a/1?a=1&b=2")
	assert.Equal(t, b, a)
	assert.Equal(t, "https://jobs.example.com/a/1?a=1&b=2", a)
	assert.Equal(t, "", CanonicalizeURL("  "))
}

func TestCityAndLocationHelpers(t *testing.T) {
	assert.Equal(t, "austin", City("Austin, TX"))
	assert.Equal(t, "austin", City(" austin ,  Texas, United States"))
	assert.Equal(t, "", City(""))
	assert.Equal(t, "Austin, TX", NormalizeLocation("Location: Austin,  TX, austin"))

	assert.True(t, MatchesLocation("Austin, TX", "Austin, Texas"))
	assert.True(t, MatchesLocation("Austin, TX", "Remote - US"))
	assert.False(t, MatchesLocation("Austin, TX", "Berlin"))
	assert.True(t, MatchesLocation("", "Berlin"))
}

func TestMatchesTerms(t *testing.T) {
	assert.True(t, MatchesTerms("software engineer", "Senior Software Engineer, Platform"))
	assert.False(t, MatchesTerms("software engineer", "Product Designer"))
	assert.True(t, MatchesTerms("", "anything"))
}

func TestLocationFromDescription(t *testing.T) {
	html := `<div><p>About us</p><p><strong>Location:</strong> Denver, CO</p></div>`
	assert.Equal(t, "Denver, CO", LocationFromDescription(html))
	assert.Equal(t, "Toronto", LocationFromDescription(`<span class="location">Toronto</span>`))
	assert.Equal(t, "", LocationFromDescription("no hints here"))
}

func TestExtractLocationFromLabeledText(t *testing.T) {
	assert.Equal(t, "Lisbon, PT", ExtractLocationFromLabeledText("Role\nJob Location: Lisbon, PT\nPerks"))
	assert.Equal(t, "Zürich", ExtractLocationFromLabeledText("İİİİ LOCATION: Zürich | hybrid"))
	// label with nothing after it
	assert.Equal(t, "", ExtractLocationFromLabeledText(strings.Repeat("İ", 20)+"location:"))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 3*time.Second, ParseRetryAfter("3", now))
	assert.Equal(t, 10*time.Second, ParseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("soon", now))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("", now))
}

func TestClientClassifiesFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/limited", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json"))
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"n":3}`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(domain.SourceRemotive, srv.Client(), NewHostLimiter(1000, 10))
	ctx := context.Background()

	var out struct{ N int }
	require.NoError(t, c.GetJSON(ctx, srv.URL+"/ok", nil, &out))
	assert.Equal(t, 3, out.N)

	err := c.GetJSON(ctx, srv.URL+"/limited", nil, &out)
	var ae *types.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, types.KindRateLimited, ae.Kind)
	assert.Equal(t, 2*time.Second, ae.RetryAfter)
	assert.Equal(t, domain.SourceRemotive, ae.Source)

	assert.Equal(t, types.KindUnreachable, types.KindOf(c.GetJSON(ctx, srv.URL+"/down", nil, &out)))
	assert.Equal(t, types.KindMalformed, types.KindOf(c.GetJSON(ctx, srv.URL+"/garbage", nil, &out)))

	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Equal(t, types.KindTimeout, types.KindOf(c.GetJSON(tctx, srv.URL+"/slow", nil, &out)))
}

func TestHostLimiterNilIsNoop(t *testing.T) {
	var hl *HostLimiter
	assert.NoError(t, hl.WaitURL(context.Background(), "https://example.com"))
}
