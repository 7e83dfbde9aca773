package greenhouse

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

const defaultBaseURL = "https://boards-api.greenhouse.io"

type Config struct {
	Companies []Company // list of boards
	BaseURL   string
	Workers   int
}

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name
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
		client: util.NewClient(domain.SourceGreenhouse, hc, limiter),
	}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceGreenhouse }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterLocation, types.FilterRemoteOnly:
		return true
	}
	return false
}

type boardResponse struct {
	Jobs []job `json:"jobs"`
}

type job struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	AbsoluteURL    string `json:"absolute_url"`
	UpdatedAt      string `json:"updated_at"`
	FirstPublished string `json:"first_published"`
	Content        string `json:"content"` // html-escaped html
	Location       struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	return util.FanOut(ctx, s.cfg.Companies, s.cfg.Workers, 15*time.Second,
		func(c Company) string { return c.Slug },
		func(ctx context.Context, co Company) ([]types.RawRecord, error) {
			return s.fetchCompany(ctx, co, q)
		})
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company, q domain.SearchQuery) ([]types.RawRecord, error) {
	apiURL := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", s.cfg.BaseURL, url.PathEscape(co.Slug))

	var br boardResponse
	if err := s.client.GetJSON(ctx, apiURL, nil, &br); err != nil {
		return nil, err
	}

	out := make([]types.RawRecord, 0, len(br.Jobs))
	for _, j := range br.Jobs {
		title := util.CleanText(j.Title)
		if title == "" && j.AbsoluteURL == "" {
			continue
		}
		if !util.MatchesTerms(q.SearchTerm, title) {
			continue
		}
		loc := util.NormalizeLocation(j.Location.Name)
		if q.Location != "" && !util.MatchesLocation(q.Location, loc) {
			continue
		}
		remote := util.InferWorkModeFromText(loc, title, "") == "Remote"
		if q.RemoteOnly && !remote {
			continue
		}

		posted := j.FirstPublished
		if posted == "" {
			posted = j.UpdatedAt
		}
		company := co.Name
		if company == "" {
			company = co.Slug
		}
		out = append(out, types.RawRecord{
			types.KeyTitle:             title,
			types.KeyCompany:           company,
			types.KeyLocation:          loc,
			types.KeyURL:               j.AbsoluteURL,
			types.KeyDatePosted:        posted,
			types.KeyDescription:       strings.TrimSpace(html.UnescapeString(j.Content)),
			types.KeyDescriptionFormat: string(domain.FormatHTML),
			types.KeyIsRemote:          remote,
		})
	}
	return out, nil
}
