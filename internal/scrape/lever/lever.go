package lever

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

const defaultBaseURL = "https://api.lever.co"

type Config struct {
	Companies []Company
	BaseURL   string
	Workers   int
}

type Company struct {
	Slug string // api.lever.co/v0/postings/<slug>
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
		client: util.NewClient(domain.SourceLever, hc, limiter),
	}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceLever }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterLocation, types.FilterRemoteOnly, types.FilterJobType:
		return true
	}
	return false
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	WorkplaceType string `json:"workplaceType"`
	Description   string `json:"description"` // html
	SalaryRange   *struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
		Interval string  `json:"interval"`
	} `json:"salaryRange"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	return util.FanOut(ctx, s.cfg.Companies, s.cfg.Workers, 10*time.Second,
		func(c Company) string { return c.Slug },
		func(ctx context.Context, co Company) ([]types.RawRecord, error) {
			return s.fetchCompany(ctx, co, q)
		})
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company, q domain.SearchQuery) ([]types.RawRecord, error) {
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", s.cfg.BaseURL, url.PathEscape(co.Slug))

	var postings []leverPosting
	if err := s.client.GetJSON(ctx, apiURL, nil, &postings); err != nil {
		return nil, err
	}

	out := make([]types.RawRecord, 0, len(postings))
	for _, p := range postings {
		title := strings.TrimSpace(p.Text)
		if title == "" && p.HostedURL == "" {
			continue
		}
		if !util.MatchesTerms(q.SearchTerm, title, p.Categories.Team) {
			continue
		}
		loc := util.NormalizeLocation(p.Categories.Location)
		if q.Location != "" && !util.MatchesLocation(q.Location, loc) {
			continue
		}
		remote := strings.EqualFold(p.WorkplaceType, "remote") ||
			util.InferWorkModeFromText(loc, title, "") == "Remote"
		if q.RemoteOnly && !remote {
			continue
		}
		if q.JobType != "" && p.Categories.Commitment != "" &&
			!strings.Contains(squash(p.Categories.Commitment), string(q.JobType)) {
			continue
		}

		rec := types.RawRecord{
			types.KeyTitle:             title,
			types.KeyCompany:           co.Name,
			types.KeyLocation:          loc,
			types.KeyURL:               p.HostedURL,
			types.KeyDescription:       p.Description,
			types.KeyDescriptionFormat: string(domain.FormatHTML),
			types.KeyJobType:           p.Categories.Commitment,
			types.KeyIsRemote:          remote,
		}
		if p.CreatedAt > 0 {
			rec[types.KeyDatePosted] = time.UnixMilli(p.CreatedAt).UTC()
		}
		if sr := p.SalaryRange; sr != nil && (sr.Min > 0 || sr.Max > 0) {
			rec[types.KeySalaryMin] = sr.Min
			rec[types.KeySalaryMax] = sr.Max
			rec[types.KeySalaryCurrency] = sr.Currency
			rec[types.KeySalaryInterval] = sr.Interval
		}
		out = append(out, rec)
	}
	return out, nil
}

// squash turns "Full-time" / "Full Time" into "fulltime".
func squash(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)
}
