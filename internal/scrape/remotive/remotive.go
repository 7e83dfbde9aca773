package remotive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

const defaultBaseURL = "https://remotive.com"

type Config struct {
	BaseURL string
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
	return &Scraper{cfg: cfg, client: util.NewClient(domain.SourceRemotive, hc, limiter)}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceRemotive }

// Every Remotive listing is remote, so remote_only is trivially honored.
func (s *Scraper) Supports(f types.Filter) bool {
	return f == types.FilterRemoteOnly
}

type response struct {
	JobCount int   `json:"job-count"`
	Jobs     []job `json:"jobs"`
}

type job struct {
	ID                        int      `json:"id"`
	URL                       string   `json:"url"`
	Title                     string   `json:"title"`
	CompanyName               string   `json:"company_name"`
	Category                  string   `json:"category"`
	Tags                      []string `json:"tags"`
	JobType                   string   `json:"job_type"`
	PublicationDate           string   `json:"publication_date"`
	CandidateRequiredLocation string   `json:"candidate_required_location"`
	Salary                    string   `json:"salary"`
	Description               string   `json:"description"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	params := url.Values{}
	params.Set("search", q.SearchTerm)
	params.Set("limit", fmt.Sprint(q.ResultsWanted*2))

	var resp response
	if err := s.client.GetJSON(ctx, s.cfg.BaseURL+"/api/remote-jobs?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]types.RawRecord, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		loc := util.NormalizeLocation(j.CandidateRequiredLocation)
		if loc == "" {
			loc = "Remote"
		}
		out = append(out, types.RawRecord{
			types.KeyTitle:             util.CleanText(j.Title),
			types.KeyCompany:           util.CleanText(j.CompanyName),
			types.KeyLocation:          loc,
			types.KeyURL:               j.URL,
			types.KeyDatePosted:        j.PublicationDate,
			types.KeyDescription:       j.Description,
			types.KeyDescriptionFormat: string(domain.FormatHTML),
			types.KeySalary:            j.Salary,
			types.KeyJobType:           j.JobType,
			types.KeyIsRemote:          true,
			types.KeyTags:              j.Tags,
		})
	}
	return out, nil
}
