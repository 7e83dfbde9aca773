package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type JobType string

const (
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
)

var JobTypes = []Option{
	{Value: string(JobTypeFullTime), Name: "Full Time"},
	{Value: string(JobTypePartTime), Name: "Part Time"},
	{Value: string(JobTypeContract), Name: "Contract"},
	{Value: string(JobTypeInternship), Name: "Internship"},
	{Value: string(JobTypeTemporary), Name: "Temporary"},
}

type DescriptionFormat string

const (
	FormatMarkdown DescriptionFormat = "markdown"
	FormatHTML     DescriptionFormat = "html"
	FormatPlain    DescriptionFormat = "plain"
)

var DescriptionFormats = []Option{
	{Value: string(FormatMarkdown), Name: "Markdown"},
	{Value: string(FormatHTML), Name: "HTML"},
	{Value: string(FormatPlain), Name: "Plain Text"},
}

var Countries = []Option{
	{Value: "USA", Name: "United States"},
	{Value: "CANADA", Name: "Canada"},
	{Value: "UK", Name: "United Kingdom"},
	{Value: "AUSTRALIA", Name: "Australia"},
	{Value: "GERMANY", Name: "Germany"},
	{Value: "FRANCE", Name: "France"},
	{Value: "INDIA", Name: "India"},
	{Value: "SINGAPORE", Name: "Singapore"},
	{Value: "JAPAN", Name: "Japan"},
	{Value: "BRAZIL", Name: "Brazil"},
}

// Option is a value/label pair served by the metadata endpoints.
type Option struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

// StringList accepts either a JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			*l = nil
			return nil
		}
		*l = strings.Split(one, ",")
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = many
	return nil
}

// SearchRequest is the inbound wire shape of a search.
type SearchRequest struct {
	SearchTerm        string     `json:"search_term"`
	Location          string     `json:"location,omitempty"`
	ResultsWanted     *int       `json:"results_wanted,omitempty"`
	SiteName          StringList `json:"site_name,omitempty"`
	CountryIndeed     string     `json:"country_indeed,omitempty"`
	HoursOld          *int       `json:"hours_old,omitempty"`
	IsRemote          bool       `json:"is_remote,omitempty"`
	JobType           string     `json:"job_type,omitempty"`
	DescriptionFormat string     `json:"description_format,omitempty"`
}

type QueryDefaults struct {
	ResultsWanted int
	MaxResults    int
	Sources       []SourceID
	Country       string
}

// SearchQuery is validated at the boundary and passed by value afterwards.
type SearchQuery struct {
	SearchTerm        string
	Location          string
	ResultsWanted     int
	Sources           []SourceID
	Country           string
	HoursOld          *int
	RemoteOnly        bool
	JobType           JobType
	DescriptionFormat DescriptionFormat
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewSearchQuery(req SearchRequest, def QueryDefaults) (SearchQuery, error) {
	q := SearchQuery{
		SearchTerm: strings.Join(strings.Fields(req.SearchTerm), " "),
		Location:   strings.TrimSpace(req.Location),
		RemoteOnly: req.IsRemote,
	}
	if q.SearchTerm == "" {
		return SearchQuery{}, invalid("search_term", "search_term is required")
	}

	q.ResultsWanted = def.ResultsWanted
	if q.ResultsWanted <= 0 {
		q.ResultsWanted = 15
	}
	if req.ResultsWanted != nil {
		if *req.ResultsWanted < 1 {
			return SearchQuery{}, invalid("results_wanted", "results_wanted must be >= 1")
		}
		q.ResultsWanted = *req.ResultsWanted
	}
	if def.MaxResults > 0 && q.ResultsWanted > def.MaxResults {
		q.ResultsWanted = def.MaxResults
	}

	seen := map[SourceID]bool{}
	for _, raw := range req.SiteName {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, ok := ParseSourceID(raw)
		if !ok {
			return SearchQuery{}, invalid("site_name", "unknown site %q", strings.TrimSpace(raw))
		}
		if !seen[id] {
			seen[id] = true
			q.Sources = append(q.Sources, id)
		}
	}
	if len(q.Sources) == 0 {
		q.Sources = append(q.Sources, def.Sources...)
	}
	if len(q.Sources) == 0 {
		q.Sources = append(q.Sources, AllSources...)
	}
	sort.SliceStable(q.Sources, func(i, j int) bool {
		return q.Sources[i].Priority() < q.Sources[j].Priority()
	})

	q.Country = strings.ToUpper(strings.TrimSpace(req.CountryIndeed))
	if q.Country == "" {
		q.Country = def.Country
	}
	if q.Country == "" {
		q.Country = "USA"
	}
	if !hasOption(Countries, q.Country) {
		return SearchQuery{}, invalid("country_indeed", "unsupported country %q", q.Country)
	}

	if req.HoursOld != nil {
		if *req.HoursOld < 0 {
			return SearchQuery{}, invalid("hours_old", "hours_old must be >= 0")
		}
		h := *req.HoursOld
		q.HoursOld = &h
	}

	if jt := strings.ToLower(strings.TrimSpace(req.JobType)); jt != "" {
		if !hasOption(JobTypes, jt) {
			return SearchQuery{}, invalid("job_type", "unsupported job_type %q", jt)
		}
		q.JobType = JobType(jt)
	}

	q.DescriptionFormat = FormatMarkdown
	if f := strings.ToLower(strings.TrimSpace(req.DescriptionFormat)); f != "" {
		if !hasOption(DescriptionFormats, f) {
			return SearchQuery{}, invalid("description_format", "unsupported description_format %q", f)
		}
		q.DescriptionFormat = DescriptionFormat(f)
	}

	return q, nil
}

// Key is a stable cache key for the query.
func (q SearchQuery) Key() string {
	srcs := make([]string, len(q.Sources))
	for i, s := range q.Sources {
		srcs[i] = string(s)
	}
	hours := "-"
	if q.HoursOld != nil {
		hours = fmt.Sprint(*q.HoursOld)
	}
	return strings.Join([]string{
		strings.ToLower(q.SearchTerm),
		strings.ToLower(q.Location),
		fmt.Sprint(q.ResultsWanted),
		strings.Join(srcs, ","),
		q.Country,
		hours,
		fmt.Sprint(q.RemoteOnly),
		string(q.JobType),
		string(q.DescriptionFormat),
	}, "|")
}
