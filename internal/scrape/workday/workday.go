package workday

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

var ErrWorkdayBlocked = errors.New("workday blocked by bot protection")

type Config struct {
	Companies []Company
	Workers   int
	PageSize  int
}

// Company is one career site: <Host>/wday/cxs/<Tenant>/<Site>/jobs
type Company struct {
	Name   string
	Host   string // https://acme.wd5.myworkdayjobs.com
	Tenant string
	Site   string
}

func (c Company) jobsEndpoint() string {
	return fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", c.Host, c.Tenant, c.Site)
}

func (c Company) boardURL() string {
	return fmt.Sprintf("%s/%s", c.Host, c.Site)
}

func (c Company) absoluteJobURL(p wdPosting) string {
	if p.ExternalURL != "" {
		return p.ExternalURL
	}
	if p.ExternalPath == "" {
		return ""
	}
	return c.boardURL() + "/" + strings.TrimLeft(p.ExternalPath, "/")
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	now     func() time.Time

	mu          sync.Mutex
	blockedHost map[string]bool
}

var _ types.Adapter = (*Scraper)(nil)

func New(cfg Config, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if hc == nil {
		hc = &http.Client{Timeout: 25 * time.Second}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return &Scraper{
		cfg:         cfg,
		hc:          hc,
		limiter:     limiter,
		now:         time.Now,
		blockedHost: map[string]bool{},
	}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceWorkday }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterLocation, types.FilterRemoteOnly, types.FilterHoursOld:
		return true
	}
	return false
}

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	ExternalURL   string   `json:"externalUrl"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	return util.FanOut(ctx, s.cfg.Companies, s.cfg.Workers, 20*time.Second,
		func(c Company) string { return c.Tenant + "/" + c.Site },
		func(ctx context.Context, co Company) ([]types.RawRecord, error) {
			return s.fetchCompany(ctx, co, q)
		})
}

func (s *Scraper) isBlocked(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedHost[host]
}

func (s *Scraper) markBlocked(host string) {
	s.mu.Lock()
	s.blockedHost[host] = true
	s.mu.Unlock()
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company, q domain.SearchQuery) ([]types.RawRecord, error) {
	if s.isBlocked(co.Host) {
		return nil, types.NewError(s.Source(), types.KindUnreachable, ErrWorkdayBlocked)
	}

	// Per-company cookie jar so the CSRF cookie from the board page sticks.
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar, Transport: s.hc.Transport, Timeout: s.hc.Timeout}
	client := util.NewClient(s.Source(), hc, s.limiter)

	csrf, err := s.bootstrapSession(ctx, hc, co)
	if errors.Is(err, ErrWorkdayBlocked) {
		s.markBlocked(co.Host)
		return nil, types.NewError(s.Source(), types.KindUnreachable, err)
	}

	headers := map[string]string{
		"Origin":          co.Host,
		"Referer":         co.boardURL(),
		"Accept-Language": "en-US",
	}
	if csrf != "" {
		headers["x-calypso-csrf-token"] = csrf
	}

	var out []types.RawRecord
	for offset := 0; offset < 500; offset += s.cfg.PageSize {
		body := wdRequest{
			AppliedFacets: map[string]any{},
			Limit:         s.cfg.PageSize,
			Offset:        offset,
			SearchText:    q.SearchTerm,
		}
		var jr wdResponse
		if err := client.PostJSON(ctx, co.jobsEndpoint(), body, headers, &jr); err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}
		if len(jr.JobPostings) == 0 {
			break
		}

		for _, p := range jr.JobPostings {
			if rec, ok := s.toRecord(co, p, q); ok {
				out = append(out, rec)
			}
		}
		if len(out) >= q.ResultsWanted || (jr.Total > 0 && offset+s.cfg.PageSize >= jr.Total) {
			break
		}
	}
	return out, nil
}

func (s *Scraper) toRecord(co Company, p wdPosting, q domain.SearchQuery) (types.RawRecord, bool) {
	title := strings.TrimSpace(p.Title)
	jobURL := co.absoluteJobURL(p)
	if title == "" && jobURL == "" {
		return nil, false
	}
	loc := util.NormalizeLocation(p.LocationsText)
	remote := util.InferWorkModeFromText(loc, title, "") == "Remote"
	if q.Location != "" && !util.MatchesLocation(q.Location, loc) {
		return nil, false
	}
	if q.RemoteOnly && !remote {
		return nil, false
	}

	posted := parsePostedOn(p.PostedOn, s.now())
	if q.HoursOld != nil && posted != nil &&
		s.now().Sub(*posted) > time.Duration(*q.HoursOld+24)*time.Hour {
		// day granularity: keep anything that might be inside the window
		return nil, false
	}

	rec := types.RawRecord{
		types.KeyTitle:    title,
		types.KeyCompany:  co.Name,
		types.KeyLocation: loc,
		types.KeyURL:      jobURL,
		types.KeyIsRemote: remote,
	}
	if posted != nil {
		rec[types.KeyDatePosted] = *posted
	}
	return rec, true
}

var postedDaysRe = regexp.MustCompile(`(?i)posted\s+(\d+)\+?\s+days?\s+ago`)

// parsePostedOn reads Workday's relative labels ("Posted Today",
// "Posted Yesterday", "Posted 3 Days Ago", "Posted 30+ Days Ago").
func parsePostedOn(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	low := strings.ToLower(s)
	switch {
	case strings.Contains(low, "today"):
		return &day
	case strings.Contains(low, "yesterday"):
		t := day.AddDate(0, 0, -1)
		return &t
	}
	if m := postedDaysRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := day.AddDate(0, 0, -n)
		return &t
	}
	return nil
}

func (s *Scraper) bootstrapSession(ctx context.Context, hc *http.Client, co Company) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, co.boardURL(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", util.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	if err := s.limiter.WaitURL(ctx, co.boardURL()); err != nil {
		return "", err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Read a small preview first (for CF detection), then discard the rest.
	previewBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_, _ = io.Copy(io.Discard, resp.Body)

	if looksLikeCloudflareBlock(resp, string(previewBytes)) {
		return "", ErrWorkdayBlocked
	}

	for _, c := range hc.Jar.Cookies(req.URL) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", nil
}

func looksLikeCloudflareBlock(resp *http.Response, bodyPreview string) bool {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}
	server := strings.ToLower(resp.Header.Get("Server"))
	if strings.Contains(server, "cloudflare") && resp.Header.Get("CF-RAY") != "" {
		return true
	}
	low := strings.ToLower(bodyPreview)
	return strings.Contains(low, "/cdn-cgi/") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser"))
}
