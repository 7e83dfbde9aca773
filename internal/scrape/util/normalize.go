package util

import (
	"html"
	"strings"
)

func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// City is the first component of a normalized location, lower-cased.
// "Austin, TX" and "Austin, Texas, United States" both yield "austin".
func City(loc string) string {
	loc = NormalizeLocation(loc)
	if i := strings.IndexAny(loc, ",/;|("); i >= 0 {
		loc = loc[:i]
	}
	return strings.ToLower(strings.TrimSpace(loc))
}

func InferWorkModeFromText(location, title, desc string) string {
	blob := strings.ToLower(strings.Join([]string{location, title, desc}, " "))

	switch {
	case strings.Contains(blob, "remote"):
		return "Remote"
	case strings.Contains(blob, "hybrid"):
		return "Hybrid"
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site"):
		return "Onsite"
	default:
		return "Unknown"
	}
}

// MatchesTerms reports whether every word of term appears in one of texts.
// ATS boards return a company's whole catalogue, so adapters filter locally.
func MatchesTerms(term string, texts ...string) bool {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return true
	}
	blob := strings.ToLower(strings.Join(texts, " "))
	for _, w := range words {
		if !strings.Contains(blob, w) {
			return false
		}
	}
	return true
}

// MatchesLocation is a loose containment check of the wanted location's
// city against a posting location. Remote postings always match.
func MatchesLocation(want, have string) bool {
	city := City(want)
	if city == "" {
		return true
	}
	h := strings.ToLower(have)
	return strings.Contains(h, city) || strings.Contains(h, "remote") || strings.Contains(h, "anywhere")
}
