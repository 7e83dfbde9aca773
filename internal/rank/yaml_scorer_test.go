package rank

import (
	"testing"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"

	"github.com/stretchr/testify/assert"
)

func scorer() YAMLScorer {
	cfg := config.Default()
	cfg.Scoring.TitleRules = []config.Rule{{Tag: "backend", Weight: 10, Any: []string{"backend", "platform"}}}
	cfg.Scoring.KeywordRules = []config.Rule{{Tag: "go", Weight: 5, Any: []string{"golang", " go "}}}
	cfg.Scoring.Penalties = []config.Penalty{{Reason: "clearance", Weight: -20, Any: []string{"clearance"}}}
	return YAMLScorer{Cfg: cfg}
}

func TestScore(t *testing.T) {
	s := scorer()

	score, tags := s.Score(domain.JobPosting{Title: "Backend Platform Engineer", Description: "We use Golang"})
	assert.Equal(t, 15, score)
	assert.Equal(t, []string{"backend", "go"}, tags)

	score, tags = s.Score(domain.JobPosting{Title: "Backend Engineer", Description: "Requires clearance"})
	assert.Equal(t, -10, score)
	assert.Equal(t, []string{"backend"}, tags)
}

func TestAnnotateKeepsOrder(t *testing.T) {
	ps := []domain.JobPosting{
		{ID: "1", Title: "Designer"},
		{ID: "2", Title: "Backend Dev", Tags: []string{"remote"}},
	}
	Annotate(scorer(), ps)

	assert.Equal(t, "1", ps[0].ID)
	assert.Equal(t, 0, ps[0].Score)
	assert.Nil(t, ps[0].Tags)
	assert.Equal(t, 10, ps[1].Score)
	assert.Equal(t, []string{"remote", "backend"}, ps[1].Tags)

	Annotate(nil, ps)
}
