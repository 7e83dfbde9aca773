package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var locationSelectors = []string{
	".location",
	".job__location",
	"[itemprop='jobLocation']",
	"[data-testid='job-location']",
	"[data-testid='location']",
}

// LocationFromDescription recovers a location from a posting body when the
// source left the structured field empty. Works on HTML or plain text.
func LocationFromDescription(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ExtractLocationFromLabeledText(body)
	}
	for _, sel := range locationSelectors {
		if t := CleanText(doc.Find(sel).First().Text()); t != "" && len(t) <= 80 {
			return NormalizeLocation(t)
		}
	}
	// keep block boundaries so the label scan can stop at them
	var lines []string
	doc.Find("p, li, td, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, s.Text())
	})
	text := strings.Join(lines, "\n")
	if text == "" {
		text = doc.Text()
	}
	if loc := ExtractLocationFromLabeledText(text); loc != "" {
		return NormalizeLocation(loc)
	}
	return ""
}

var locationLabelRe = regexp.MustCompile(`(?i)(?:job location|locations|location)\s*:`)

// ExtractLocationFromLabeledText takes what follows a "Location:" label.
func ExtractLocationFromLabeledText(s string) string {
	for _, m := range locationLabelRe.FindAllStringIndex(s, -1) {
		rest := strings.TrimSpace(s[m[1]:])

		// stop at newline-ish boundaries if present
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}

		rest = CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}
