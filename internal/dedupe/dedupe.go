// Package dedupe collapses postings that describe the same job across
// sources.
package dedupe

import (
	"sort"
	"strings"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/util"
)

// Fingerprint identifies a job independent of source: title, company and
// city, lower-cased with whitespace collapsed. An untitled posting has
// nothing to compare across sources, so its canonical URL (or ID) stands in.
func Fingerprint(p domain.JobPosting) string {
	title := collapse(p.Title)
	if title == "" {
		if u := util.CanonicalizeURL(p.URL); u != "" {
			return "url:" + u
		}
		return "id:" + p.ID
	}
	city := p.City
	if city == "" {
		city = util.City(p.Location)
	}
	return title + "|" + collapse(p.Company) + "|" + collapse(city)
}

func collapse(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Dedupe merges postings sharing a fingerprint. Output follows the order
// in which each fingerprint first appears. The merged record depends only
// on the set of postings in a group, never on their order, and
// Dedupe(Dedupe(x)) equals Dedupe(x).
func Dedupe(postings []domain.JobPosting) []domain.JobPosting {
	idx := make(map[string]int, len(postings))
	var groups [][]domain.JobPosting
	for _, p := range postings {
		fp := Fingerprint(p)
		if i, ok := idx[fp]; ok {
			groups[i] = append(groups[i], p)
			continue
		}
		idx[fp] = len(groups)
		groups = append(groups, []domain.JobPosting{p})
	}

	out := make([]domain.JobPosting, 0, len(groups))
	for _, g := range groups {
		out = append(out, mergeGroup(g))
	}
	return out
}

// Merge combines two postings for the same job.
func Merge(a, b domain.JobPosting) domain.JobPosting {
	return mergeGroup([]domain.JobPosting{a, b})
}

// mergeGroup ranks the group (richest description first) and lets the top
// record win; empty fields are filled from the next-ranked record that has
// them. Provenance is the sorted union and the earliest date is kept.
func mergeGroup(g []domain.JobPosting) domain.JobPosting {
	ranked := append([]domain.JobPosting(nil), g...)
	sort.SliceStable(ranked, func(i, j int) bool { return better(ranked[i], ranked[j]) })

	m := ranked[0]
	m.Sources = nil
	m.Tags = nil
	for _, p := range ranked {
		m.Sources = unionSources(m.Sources, p.Sources, p.Source)
		m.Tags = unionTags(m.Tags, p.Tags)
		m.DatePosted = earliest(m.DatePosted, p.DatePosted)
		m.IsRemote = m.IsRemote || p.IsRemote

		if m.Company == "" {
			m.Company = p.Company
		}
		if m.Location == "" {
			m.Location = p.Location
			m.City = p.City
		}
		if m.URL == "" {
			m.URL = p.URL
		}
		if m.Description == "" {
			m.Description = p.Description
			m.DescriptionFormat = p.DescriptionFormat
		}
		if m.Salary == nil {
			m.Salary = p.Salary
		}
		if m.JobType == "" {
			m.JobType = p.JobType
		}
	}
	return m
}

// better orders postings: longer description, then smaller ID, then the
// remaining identity and display fields so the winner never depends on
// input order.
func better(x, y domain.JobPosting) bool {
	if len(x.Description) != len(y.Description) {
		return len(x.Description) > len(y.Description)
	}
	if x.ID != y.ID {
		return x.ID < y.ID
	}
	if x.Source != y.Source {
		return x.Source < y.Source
	}
	if x.URL != y.URL {
		return x.URL < y.URL
	}
	if x.Description != y.Description {
		return x.Description < y.Description
	}
	if x.Title != y.Title {
		return x.Title < y.Title
	}
	if x.Company != y.Company {
		return x.Company < y.Company
	}
	return x.Location < y.Location
}

func unionSources(a, b []domain.SourceID, extra ...domain.SourceID) []domain.SourceID {
	seen := map[domain.SourceID]bool{}
	var out []domain.SourceID
	for _, list := range [][]domain.SourceID{a, b, extra} {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func unionTags(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
