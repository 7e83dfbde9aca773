package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const ddgBaseURL = "https://html.duckduckgo.com"

// domainBlocklist holds job boards, ATS hosts and directories that rank
// highly for company names but are never the company's own site.
var domainBlocklist = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"ziprecruiter.com",
	"monster.com",
	"careerbuilder.com",
	"simplyhired.com",
	"builtin.com",
	"levels.fyi",
	"crunchbase.com",
	"wikipedia.org",
	"bloomberg.com",
	"remotive.com",
	"remoteok.com",
	"jobicy.com",
	"adzuna.com",

	"greenhouse.io",
	"lever.co",
	"myworkdayjobs.com",
	"workday.com",
	"smartrecruiters.com",
	"icims.com",
	"jobvite.com",
	"applytojob.com",
}

// DDGFinder finds a company's site from DuckDuckGo's HTML results.
type DDGFinder struct {
	BaseURL string
	client  *util.Client
}

func NewDDGFinder(hc *http.Client, limiter *util.HostLimiter) *DDGFinder {
	return &DDGFinder{BaseURL: ddgBaseURL, client: util.NewClient(domain.SourceID("duckduckgo"), hc, limiter)}
}

// FindDomain returns the first non-blocklisted result host, or "" when
// nothing usable came back.
func (f *DDGFinder) FindDomain(ctx context.Context, company string) (string, error) {
	q := sanitizeCompany(company)
	if q == "" {
		return "", nil
	}
	u := fmt.Sprintf("%s/html/?q=%s", f.BaseURL, url.QueryEscape(q+" official website"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	res, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", fmt.Errorf("parse results: %w", err)
	}

	var best string
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		host := hostOf(decodeRedirect(href))
		if host == "" || isBlocked(host) {
			return true
		}
		best = host
		return false
	})
	return best, nil
}

// decodeRedirect unwraps DDG's /l/?uddg=<target> links.
func decodeRedirect(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if t := u.Query().Get("uddg"); t != "" {
		return t
	}
	return href
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func isBlocked(host string) bool {
	for _, b := range domainBlocklist {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

var suffixReplacer = strings.NewReplacer(
	", Inc.", "", " Inc.", "", " Inc", "",
	", LLC", "", " LLC", "",
	", Ltd.", "", " Ltd.", "", " Ltd", "",
	" Recruiting", "",
	" Staffing", "",
)

func sanitizeCompany(s string) string {
	return strings.Join(strings.Fields(suffixReplacer.Replace(strings.TrimSpace(s))), " ")
}
