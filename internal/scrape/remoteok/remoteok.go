package remoteok

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

const defaultBaseURL = "https://remoteok.com"

type Config struct {
	BaseURL string
}

type Scraper struct {
	cfg    Config
	client *util.Client
	now    func() time.Time
}

var _ types.Adapter = (*Scraper)(nil)

func New(cfg Config, hc *http.Client, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Scraper{cfg: cfg, client: util.NewClient(domain.SourceRemoteOK, hc, limiter), now: time.Now}
}

func (s *Scraper) Source() domain.SourceID { return domain.SourceRemoteOK }

func (s *Scraper) Supports(f types.Filter) bool {
	switch f {
	case types.FilterRemoteOnly, types.FilterHoursOld:
		return true
	}
	return false
}

type job struct {
	Slug        string   `json:"slug"`
	Epoch       int64    `json:"epoch"`
	Date        string   `json:"date"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	SalaryMin   float64  `json:"salary_min"`
	SalaryMax   float64  `json:"salary_max"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
}

// Fetch reads the full feed and filters locally; the API has no search.
// The first array element is a legal notice, not a job.
func (s *Scraper) Fetch(ctx context.Context, q domain.SearchQuery) ([]types.RawRecord, error) {
	var raw []json.RawMessage
	if err := s.client.GetJSON(ctx, s.cfg.BaseURL+"/api", nil, &raw); err != nil {
		return nil, err
	}

	var out []types.RawRecord
	for _, item := range raw {
		var j job
		if err := json.Unmarshal(item, &j); err != nil || j.Position == "" {
			continue
		}
		if !util.MatchesTerms(q.SearchTerm, j.Position, strings.Join(j.Tags, " ")) {
			continue
		}
		var posted time.Time
		if j.Epoch > 0 {
			posted = time.Unix(j.Epoch, 0).UTC()
		}
		if q.HoursOld != nil && !posted.IsZero() &&
			s.now().Sub(posted) > time.Duration(*q.HoursOld)*time.Hour {
			continue
		}

		loc := util.NormalizeLocation(j.Location)
		if loc == "" {
			loc = "Remote"
		}
		rec := types.RawRecord{
			types.KeyTitle:             util.CleanText(j.Position),
			types.KeyCompany:           util.CleanText(j.Company),
			types.KeyLocation:          loc,
			types.KeyURL:               firstNonEmpty(j.URL, j.ApplyURL),
			types.KeyDescription:       j.Description,
			types.KeyDescriptionFormat: string(domain.FormatHTML),
			types.KeyIsRemote:          true,
			types.KeyTags:              j.Tags,
			types.KeyJobType:           jobTypeFromTags(j.Tags),
		}
		if !posted.IsZero() {
			rec[types.KeyDatePosted] = posted
		} else if j.Date != "" {
			rec[types.KeyDatePosted] = j.Date
		}
		if j.SalaryMin > 0 || j.SalaryMax > 0 {
			rec[types.KeySalaryMin] = j.SalaryMin
			rec[types.KeySalaryMax] = j.SalaryMax
			rec[types.KeySalaryCurrency] = "USD"
			rec[types.KeySalaryInterval] = "yearly"
		}
		out = append(out, rec)
	}
	return out, nil
}

func jobTypeFromTags(tags []string) string {
	for _, t := range tags {
		switch strings.ToLower(t) {
		case "contract", "contractor", "freelance":
			return "contract"
		case "part time", "part-time", "parttime":
			return "parttime"
		case "internship", "intern":
			return "internship"
		case "full time", "full-time", "fulltime":
			return "fulltime"
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
