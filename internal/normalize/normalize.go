// Package normalize turns adapter RawRecords into JobPostings.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

// Normalize maps one raw record into a JobPosting with descriptions rendered
// in format. It never panics; ok is false when the record has neither a
// title nor a url and must be dropped.
func Normalize(raw types.RawRecord, source domain.SourceID, format domain.DescriptionFormat) (p domain.JobPosting, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p, ok = domain.JobPosting{}, false
		}
	}()

	title := util.CleanText(str(raw, types.KeyTitle))
	jobURL := strings.TrimSpace(str(raw, types.KeyURL))
	if title == "" && jobURL == "" {
		return domain.JobPosting{}, false
	}

	p = domain.JobPosting{
		Title:    title,
		Company:  util.CleanText(str(raw, types.KeyCompany)),
		Location: util.NormalizeLocation(str(raw, types.KeyLocation)),
		URL:      jobURL,
		Source:   source,
		Sources:  []domain.SourceID{source},
		JobType:  NormalizeJobType(str(raw, types.KeyJobType)),
		Tags:     strs(raw, types.KeyTags),
	}
	desc := str(raw, types.KeyDescription)
	if p.Location == "" && desc != "" {
		p.Location = util.LocationFromDescription(desc)
	}
	p.City = util.City(p.Location)
	p.DatePosted = parseDate(raw[types.KeyDatePosted])
	p.IsRemote = boolean(raw, types.KeyIsRemote) ||
		util.InferWorkModeFromText(p.Location, p.Title, "") == "Remote"
	p.Salary = salaryOf(raw)

	if desc != "" {
		from := domain.DescriptionFormat(strings.ToLower(str(raw, types.KeyDescriptionFormat)))
		p.Description = ConvertDescription(desc, from, format)
		p.DescriptionFormat = format
	}

	p.ID = PostingID(source, p.URL, p.Title, p.Company, p.Location)
	return p, true
}

// PostingID is sha1 over (source, canonical url), or over the lower-cased
// (title, company, location) when the url is missing.
func PostingID(source domain.SourceID, jobURL, title, company, location string) string {
	var key string
	if u := util.CanonicalizeURL(jobURL); u != "" {
		key = string(source) + "|" + u
	} else {
		key = strings.ToLower(strings.Join([]string{title, company, location}, "|"))
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func salaryOf(raw types.RawRecord) *domain.Salary {
	lo, hasLo := num(raw, types.KeySalaryMin)
	hi, hasHi := num(raw, types.KeySalaryMax)

	if !hasLo && !hasHi {
		sal := ParseSalary(str(raw, types.KeySalary))
		if sal == nil {
			return nil
		}
		if c := strings.ToUpper(str(raw, types.KeySalaryCurrency)); c != "" {
			sal.Currency = c
		}
		if iv := normalizeInterval(str(raw, types.KeySalaryInterval)); iv != "" {
			sal.Interval = iv
		}
		return sal
	}

	switch {
	case !hasLo:
		lo = hi
	case !hasHi:
		hi = lo
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	sal := &domain.Salary{
		Min:      &lo,
		Max:      &hi,
		Currency: strings.ToUpper(str(raw, types.KeySalaryCurrency)),
		Interval: normalizeInterval(str(raw, types.KeySalaryInterval)),
	}
	if sal.Interval == "" {
		sal.Interval = detectInterval("", hi)
	}
	return sal
}

// NormalizeJobType maps labels like "Full-time", "FULL_TIME" or "intern"
// onto the JobType enum. Unknown labels yield "".
func NormalizeJobType(s string) domain.JobType {
	k := strings.ToLower(s)
	k = strings.NewReplacer("-", "", "_", "", " ", "").Replace(k)
	switch {
	case k == "":
		return ""
	case strings.Contains(k, "fulltime"), k == "permanent":
		return domain.JobTypeFullTime
	case strings.Contains(k, "parttime"):
		return domain.JobTypePartTime
	case strings.Contains(k, "contract"), strings.Contains(k, "freelance"):
		return domain.JobTypeContract
	case strings.Contains(k, "intern"):
		return domain.JobTypeInternship
	case strings.Contains(k, "temp"):
		return domain.JobTypeTemporary
	}
	return ""
}
