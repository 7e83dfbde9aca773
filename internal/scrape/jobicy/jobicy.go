package jobicy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

const defaultBaseURL = "https://jobicy.com"

// geos maps the public country enum to Jobicy's geo slugs.
var geos = map[string]string{
	"USA":       "usa",
	"CANADA":    "canada",
	"UK":        "uk",
	"AUSTRALIA": "australia",
	"GERMANY":   "germany",
	"FRANCE":    "france",
	"INDIA":     "india",
	"SINGAPORE": "singapore",
	"JAPAN":     "japan",
	"BRAZIL":    "brazil",
}

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
	return &Scraper{cfg: cfg, client: util.NewClient(domain.SourceJobicy, hc, limiter)}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceJobicy }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterRemoteOnly, types.FilterCountry:
		return true
	}
	return false
}

type response struct {
	JobCount int   `json:"jobCount"`
	Jobs     []job `json:"jobs"`
}

type job struct {
	ID              int      `json:"id"`
	URL             string   `json:"url"`
	JobTitle        string   `json:"jobTitle"`
	CompanyName     string   `json:"companyName"`
	JobIndustry     []string `json:"jobIndustry"`
	JobType         []string `json:"jobType"`
	JobGeo          string   `json:"jobGeo"`
	JobExcerpt      string   `json:"jobExcerpt"`
	JobDescription  string   `json:"jobDescription"`
	PubDate         string   `json:"pubDate"`
	AnnualSalaryMin float64  `json:"annualSalaryMin"`
	AnnualSalaryMax float64  `json:"annualSalaryMax"`
	SalaryCurrency  string   `json:"salaryCurrency"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	count := q.ResultsWanted * 2
	if count > 50 {
		count = 50
	}
	params := url.Values{}
	params.Set("count", fmt.Sprint(count))
	params.Set("tag", q.SearchTerm)
	if g, ok := geos[q.Country]; ok && q.Country != "USA" {
		params.Set("geo", g)
	}

	var resp response
	if err := s.client.GetJSON(ctx, s.cfg.BaseURL+"/api/v2/remote-jobs?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]types.RawRecord, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		loc := util.NormalizeLocation(j.JobGeo)
		if loc == "" {
			loc = "Remote"
		}
		desc := j.JobDescription
		if strings.TrimSpace(desc) == "" {
			desc = j.JobExcerpt
		}
		rec := types.RawRecord{
			types.KeyTitle:             util.CleanText(j.JobTitle),
			types.KeyCompany:           util.CleanText(j.CompanyName),
			types.KeyLocation:          loc,
			types.KeyURL:               j.URL,
			types.KeyDatePosted:        j.PubDate,
			types.KeyDescription:       desc,
			types.KeyDescriptionFormat: string(domain.FormatHTML),
			types.KeyIsRemote:          true,
			types.KeyTags:              j.JobIndustry,
		}
		if len(j.JobType) > 0 {
			rec[types.KeyJobType] = j.JobType[0]
		}
		if j.AnnualSalaryMin > 0 || j.AnnualSalaryMax > 0 {
			rec[types.KeySalaryMin] = j.AnnualSalaryMin
			rec[types.KeySalaryMax] = j.AnnualSalaryMax
			rec[types.KeySalaryCurrency] = j.SalaryCurrency
			rec[types.KeySalaryInterval] = "yearly"
		}
		out = append(out, rec)
	}
	return out, nil
}
