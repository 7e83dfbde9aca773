package adzuna

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

const defaultBaseURL = "https://api.adzuna.com"

// countryCodes maps the public country enum to Adzuna's market codes.
// Adzuna has no Japanese market; such queries fall back to "us".
var countryCodes = map[string]string{
	"USA":       "us",
	"CANADA":    "ca",
	"UK":        "gb",
	"AUSTRALIA": "au",
	"GERMANY":   "de",
	"FRANCE":    "fr",
	"INDIA":     "in",
	"SINGAPORE": "sg",
	"BRAZIL":    "br",
}

var currencies = map[string]string{
	"us": "USD", "ca": "CAD", "gb": "GBP", "au": "AUD", "de": "EUR",
	"fr": "EUR", "in": "INR", "sg": "SGD", "br": "BRL",
}

type Config struct {
	AppID   string
	AppKey  string
	BaseURL string
}

type Scraper struct {
	cfg    Config
	client *util.Client
}

var (
	_ types.Adapter        = (*Scraper)(nil)
	_ types.ValueSupporter = (*Scraper)(nil)
)

func New(cfg Config, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Scraper{cfg: cfg, client: util.NewClient(domain.SourceAdzuna, hc, limiter)}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceAdzuna }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterLocation, types.FilterHoursOld, types.FilterJobType, types.FilterCountry:
		return true
	}
	return false
}

func (s *Scraper) SupportsValue(f types.Filter, q domain.SearchQuery) bool {
	if f != types.FilterCountry {
		return true
	}
	_, ok := countryCodes[q.Country]
	return ok
}

type searchResponse struct {
	Count   int   `json:"count"`
	Results []job `json:"results"`
}

type job struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	ContractTime string  `json:"contract_time"` // full_time / part_time
	ContractType string  `json:"contract_type"` // permanent / contract
	Company      struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	country, ok := countryCodes[q.Country]
	if !ok {
		country = "us"
	}

	perPage := q.ResultsWanted
	if perPage > 50 {
		perPage = 50
	}
	params := url.Values{}
	params.Set("app_id", s.cfg.AppID)
	params.Set("app_key", s.cfg.AppKey)
	params.Set("results_per_page", fmt.Sprint(perPage))
	params.Set("what", q.SearchTerm)
	params.Set("sort_by", "date")
	if q.Location != "" {
		params.Set("where", q.Location)
	}
	if q.HoursOld != nil {
		days := (*q.HoursOld + 23) / 24
		if days < 1 {
			days = 1
		}
		params.Set("max_days_old", fmt.Sprint(days))
	}
	switch q.JobType {
	case domain.JobTypeFullTime:
		params.Set("full_time", "1")
	case domain.JobTypePartTime:
		params.Set("part_time", "1")
	case domain.JobTypeContract:
		params.Set("contract", "1")
	}

	apiURL := fmt.Sprintf("%s/v1/api/jobs/%s/search/1?%s", s.cfg.BaseURL, country, params.Encode())

	var sr searchResponse
	if err := s.client.GetJSON(ctx, apiURL, nil, &sr); err != nil {
		return nil, err
	}

	out := make([]types.RawRecord, 0, len(sr.Results))
	for _, j := range sr.Results {
		loc := util.NormalizeLocation(j.Location.DisplayName)
		rec := types.RawRecord{
			types.KeyTitle:             util.CleanText(j.Title),
			types.KeyCompany:           util.CleanText(j.Company.DisplayName),
			types.KeyLocation:          loc,
			types.KeyURL:               j.RedirectURL,
			types.KeyDatePosted:        j.Created,
			types.KeyDescription:       j.Description,
			types.KeyDescriptionFormat: string(domain.FormatPlain),
			types.KeyJobType:           jobType(j),
		}
		if j.SalaryMin > 0 || j.SalaryMax > 0 {
			rec[types.KeySalaryMin] = j.SalaryMin
			rec[types.KeySalaryMax] = j.SalaryMax
			rec[types.KeySalaryCurrency] = currencies[country]
			rec[types.KeySalaryInterval] = "yearly"
		}
		out = append(out, rec)
	}
	return out, nil
}

func jobType(j job) string {
	if strings.EqualFold(j.ContractType, "contract") {
		return "contract"
	}
	return j.ContractTime
}
