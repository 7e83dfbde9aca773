package workday

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostedOn(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 30, 0, 0, time.UTC)
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, day, *parsePostedOn("Posted Today", now))
	assert.Equal(t, day.AddDate(0, 0, -1), *parsePostedOn("Posted Yesterday", now))
	assert.Equal(t, day.AddDate(0, 0, -3), *parsePostedOn("Posted 3 Days Ago", now))
	assert.Equal(t, day.AddDate(0, 0, -30), *parsePostedOn("Posted 30+ Days Ago", now))
	assert.Nil(t, parsePostedOn("", now))
	assert.Nil(t, parsePostedOn("soon", now))
}

func TestFetchUsesCSRFAndMaps(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/External", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "CALYPSO_CSRF_TOKEN", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/wday/cxs/acme/External/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok", r.Header.Get("x-calypso-csrf-token"))
		assert.Equal(t, srvURL, r.Header.Get("Origin"))

		var body wdRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nurse", body.SearchText)
		if body.Offset > 0 {
			_, _ = w.Write([]byte(`{"total":2,"jobPostings":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"total":2,"jobPostings":[
		 {"title":"Registered Nurse","externalPath":"/job/Austin/RN_1","locationsText":"Austin, TX","postedOn":"Posted Today"},
		 {"title":"Nurse Manager","externalPath":"/job/Remote/NM_2","locationsText":"Remote","postedOn":"Posted 10 Days Ago"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	s := New(Config{Companies: []Company{{Name: "Acme Health", Host: srv.URL, Tenant: "acme", Site: "External"}}}, srv.Client(), nil)
	s.now = func() time.Time { return time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC) }

	recs, err := s.Fetch(context.Background(), domain.SearchQuery{SearchTerm: "nurse", ResultsWanted: 10})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Acme Health", recs[0][types.KeyCompany])
	assert.Equal(t, srv.URL+"/External/job/Austin/RN_1", recs[0][types.KeyURL])
	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), recs[0][types.KeyDatePosted])
	assert.Equal(t, true, recs[1][types.KeyIsRemote])

	hours := 48
	recs, err = s.Fetch(context.Background(), domain.SearchQuery{SearchTerm: "nurse", HoursOld: &hours, ResultsWanted: 10})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Registered Nurse", recs[0][types.KeyTitle])
}

func TestFetchCloudflareBlockIsRemembered(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Server", "cloudflare")
		w.Header().Set("CF-RAY", "abc")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(Config{Companies: []Company{{Host: srv.URL, Tenant: "t", Site: "s"}}}, srv.Client(), nil)
	q := domain.SearchQuery{SearchTerm: "x", ResultsWanted: 5}

	_, err := s.Fetch(context.Background(), q)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkdayBlocked)
	assert.Equal(t, types.KindUnreachable, types.KindOf(err))

	_, err = s.Fetch(context.Background(), q)
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}
