package smartrecruiters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

const (
	defaultBaseURL = "https://api.smartrecruiters.com"
	jobsBaseURL    = "https://jobs.smartrecruiters.com"
	pageSize       = 100
	maxPages       = 5
)

type Config struct {
	Companies []Company
	BaseURL   string
	Workers   int
}

type Company struct {
	// Slug is the SmartRecruiters company identifier used in URLs, e.g.
	// https://jobs.smartrecruiters.com/<slug>
	Slug string
	Name string
}

type Scraper struct {
	cfg    Config
	client *util.Client
}

var _ types.Adapter = (*Scraper)(nil)

func New(cfg Config, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	return &Scraper{
		cfg:    cfg,
		client: util.NewClient(domain.SourceSmartRecruiters, hc, limiter),
	}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceSmartRecruiters }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterLocation, types.FilterRemoteOnly, types.FilterJobType:
		return true
	}
	return false
}

// Response schema (public API) is typically:
// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type posting struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	ReleasedDate time.Time `json:"releasedDate"`
	Company      struct {
		Name string `json:"name"`
	} `json:"company"`
	Location struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	return util.FanOut(ctx, s.cfg.Companies, s.cfg.Workers, 20*time.Second,
		func(c Company) string { return c.Slug },
		func(ctx context.Context, co Company) ([]types.RawRecord, error) {
			return s.fetchCompany(ctx, co, q)
		})
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company, q domain.SearchQuery) ([]types.RawRecord, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, types.NewError(s.Source(), types.KindMalformed, fmt.Errorf("empty slug"))
	}
	base := fmt.Sprintf("%s/v1/companies/%s/postings", s.cfg.BaseURL, url.PathEscape(slug))

	var out []types.RawRecord
	for page, offset := 0, 0; page < maxPages; page++ {
		params := url.Values{}
		params.Set("q", q.SearchTerm)
		params.Set("limit", fmt.Sprint(pageSize))
		params.Set("offset", fmt.Sprint(offset))

		var pr postingsResponse
		if err := s.client.GetJSON(ctx, base+"?"+params.Encode(), nil, &pr); err != nil {
			if len(out) > 0 {
				return out, nil
			}
			return nil, err
		}
		if len(pr.Content) == 0 {
			break
		}

		for _, p := range pr.Content {
			if rec, ok := s.toRecord(co, slug, p, q); ok {
				out = append(out, rec)
			}
		}

		offset += len(pr.Content)
		if offset >= pr.TotalFound || len(out) >= q.ResultsWanted {
			break
		}
	}
	return out, nil
}

func (s *Scraper) toRecord(co Company, slug string, p posting, q domain.SearchQuery) (types.RawRecord, bool) {
	title := strings.TrimSpace(p.Name)
	id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID))
	if title == "" || id == "" {
		return nil, false
	}
	loc := util.NormalizeLocation(strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", "))
	remote := p.Location.Remote || util.InferWorkModeFromText(loc, title, "") == "Remote"
	if q.Location != "" && !util.MatchesLocation(q.Location, loc) && !remote {
		return nil, false
	}
	if q.RemoteOnly && !remote {
		return nil, false
	}
	if q.JobType != "" && p.TypeOfEmployment.Label != "" &&
		!strings.Contains(strings.ToLower(strings.ReplaceAll(p.TypeOfEmployment.Label, "-", "")), string(q.JobType)) {
		return nil, false
	}

	company := firstNonEmpty(p.Company.Name, co.Name, slug)
	rec := types.RawRecord{
		types.KeyTitle:    title,
		types.KeyCompany:  company,
		types.KeyLocation: loc,
		types.KeyURL:      fmt.Sprintf("%s/%s/%s", jobsBaseURL, slug, id),
		types.KeyJobType:  p.TypeOfEmployment.Label,
		types.KeyIsRemote: remote,
	}
	if !p.ReleasedDate.IsZero() {
		rec[types.KeyDatePosted] = p.ReleasedDate
	}
	return rec, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
