package rank

import (
	"strings"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
)

// YAMLScorer scores postings with the keyword rules from the scoring
// section of config.yml. Each rule counts at most once.
type YAMLScorer struct {
	Cfg config.Config
}

func (s YAMLScorer) Score(job domain.JobPosting) (int, []string) {
	text := strings.ToLower(job.Title + " " + job.Description)

	score := 0
	var tags []string

	applyRules := func(rules []config.Rule) {
		for _, r := range rules {
			for _, needle := range r.Any {
				n := strings.ToLower(strings.TrimSpace(needle))
				if n != "" && strings.Contains(text, n) {
					score += r.Weight
					if r.Tag != "" {
						tags = append(tags, r.Tag)
					}
					break
				}
			}
		}
	}

	applyRules(s.Cfg.Scoring.TitleRules)
	applyRules(s.Cfg.Scoring.KeywordRules)

	for _, p := range s.Cfg.Scoring.Penalties {
		for _, needle := range p.Any {
			n := strings.ToLower(strings.TrimSpace(needle))
			if n != "" && strings.Contains(text, n) {
				score += p.Weight
				break
			}
		}
	}

	return score, uniq(tags)
}

// Annotate sets Score and merges rule tags into each posting in place.
// Order is left untouched.
func Annotate(s Scorer, postings []domain.JobPosting) {
	if s == nil {
		return
	}
	for i := range postings {
		score, tags := s.Score(postings[i])
		postings[i].Score = score
		postings[i].Tags = uniq(append(append([]string(nil), postings[i].Tags...), tags...))
		if len(postings[i].Tags) == 0 {
			postings[i].Tags = nil
		}
	}
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
