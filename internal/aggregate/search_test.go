package aggregate

import (
	"context"
	"errors"
	"testing"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource struct {
	adapters map[domain.SourceID]types.Adapter
}

func (m mapSource) Adapter(id domain.SourceID) (types.Adapter, bool) {
	a, ok := m.adapters[id]
	return a, ok
}

func (m mapSource) SkipReason(domain.SourceID) string { return "not configured" }

type memCache struct {
	data   map[string]domain.AggregateResult
	getErr error
	sets   int
}

func (c *memCache) Get(_ context.Context, q domain.SearchQuery) (domain.AggregateResult, bool, error) {
	if c.getErr != nil {
		return domain.AggregateResult{}, false, c.getErr
	}
	r, ok := c.data[q.Key()]
	return r, ok, nil
}

func (c *memCache) Set(_ context.Context, q domain.SearchQuery, r domain.AggregateResult) error {
	c.sets++
	c.data[q.Key()] = r
	return nil
}

type titleScorer struct{}

func (titleScorer) Score(p domain.JobPosting) (int, []string) {
	if p.Title == "a" {
		return 10, []string{"match"}
	}
	return 0, nil
}

func TestSearchReportsUnconfiguredSourcesAsSkipped(t *testing.T) {
	gh := &fakeAdapter{id: domain.SourceGreenhouse, records: recs("gh", "a")}
	s := &Searcher{
		Orchestrator: newOrch(Options{}),
		Adapters:     mapSource{adapters: map[domain.SourceID]types.Adapter{domain.SourceGreenhouse: gh}},
	}
	q := query(10)
	q.Sources = []domain.SourceID{domain.SourceGreenhouse, domain.SourceAdzuna}

	res, cached, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, domain.SourceAdzuna, res.Outcomes[0].Source)
	assert.Equal(t, domain.StatusSkipped, res.Outcomes[0].Status)
	assert.Equal(t, "not configured", res.Outcomes[0].ErrorDetail)
}

func TestSearchUsesCache(t *testing.T) {
	gh := &fakeAdapter{id: domain.SourceGreenhouse, records: recs("gh", "a", "b")}
	c := &memCache{data: map[string]domain.AggregateResult{}}
	s := &Searcher{
		Orchestrator: newOrch(Options{}),
		Adapters:     mapSource{adapters: map[domain.SourceID]types.Adapter{domain.SourceGreenhouse: gh}},
		Cache:        c,
		Scorer:       titleScorer{},
	}
	q := query(10)
	q.Sources = []domain.SourceID{domain.SourceGreenhouse}

	first, cached, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, first.Postings[0].Score)
	assert.Equal(t, 1, c.sets)

	second, cached, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.TotalFound, second.TotalFound)
	assert.EqualValues(t, 1, gh.calls.Load())
}

func TestSearchCacheErrorDoesNotFail(t *testing.T) {
	gh := &fakeAdapter{id: domain.SourceGreenhouse, records: recs("gh", "a")}
	s := &Searcher{
		Orchestrator: newOrch(Options{}),
		Adapters:     mapSource{adapters: map[domain.SourceID]types.Adapter{domain.SourceGreenhouse: gh}},
		Cache:        &memCache{data: map[string]domain.AggregateResult{}, getErr: errors.New("redis down")},
	}
	q := query(10)
	q.Sources = []domain.SourceID{domain.SourceGreenhouse}

	res, _, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, res.Postings, 1)
}

func TestSearchFailureNotCached(t *testing.T) {
	c := &memCache{data: map[string]domain.AggregateResult{}}
	s := &Searcher{
		Orchestrator: newOrch(Options{}),
		Adapters:     mapSource{adapters: map[domain.SourceID]types.Adapter{}},
		Cache:        c,
	}
	q := query(10)
	q.Sources = []domain.SourceID{domain.SourceAdzuna}

	_, _, err := s.Search(context.Background(), q)
	var af *domain.AggregateFailure
	require.ErrorAs(t, err, &af)
	assert.Zero(t, c.sets)
}
