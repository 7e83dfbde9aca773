package normalize

import (
	"html"
	"regexp"
	"strings"

	"jobsearch-engine/internal/domain"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var (
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	mdLinkRe     = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	mdEmphRe     = regexp.MustCompile(`(\*\*|__|\*|_|~~|` + "`" + `)`)
	mdLinePrefRe = regexp.MustCompile(`(?m)^\s{0,3}(#{1,6}\s+|>\s?|[-*+]\s+|\d+\.\s+)`)
	htmlTagRe    = regexp.MustCompile(`(?i)</?(p|div|br|ul|ol|li|h[1-6]|strong|em|b|i|a|span)\b`)
)

// ConvertDescription renders body, written in format from, as format to.
// Unknown source formats are sniffed: anything with common tags is HTML.
func ConvertDescription(body string, from, to domain.DescriptionFormat) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if from == "" {
		from = sniffFormat(body)
	}
	if from == to {
		return body
	}

	switch from {
	case domain.FormatHTML:
		switch to {
		case domain.FormatMarkdown:
			return htmlToMarkdown(body)
		case domain.FormatPlain:
			return htmlToPlain(body)
		}
	case domain.FormatMarkdown:
		switch to {
		case domain.FormatPlain:
			return markdownToPlain(body)
		case domain.FormatHTML:
			return textToHTML(markdownToPlain(body))
		}
	case domain.FormatPlain:
		switch to {
		case domain.FormatHTML:
			return textToHTML(body)
		case domain.FormatMarkdown:
			return body
		}
	}
	return body
}

func sniffFormat(body string) domain.DescriptionFormat {
	if htmlTagRe.MatchString(body) {
		return domain.FormatHTML
	}
	return domain.FormatPlain
}

func htmlToMarkdown(body string) string {
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return htmlToPlain(body)
	}
	return tidy(md)
}

// htmlToPlain keeps block structure as line breaks and list items as "- ".
func htmlToPlain(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return tidy(html.UnescapeString(body))
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
		s.AppendHtml("\n")
	})
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, ul, ol, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})
	return tidy(doc.Text())
}

func markdownToPlain(md string) string {
	out := mdLinkRe.ReplaceAllString(md, "$1")
	out = mdLinePrefRe.ReplaceAllString(out, "")
	out = mdEmphRe.ReplaceAllString(out, "")
	return tidy(out)
}

// textToHTML escapes text and wraps each blank-line separated block in <p>.
func textToHTML(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(tidy(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

func tidy(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, " ", " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
