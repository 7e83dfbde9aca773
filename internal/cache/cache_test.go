package cache

import (
	"context"
	"testing"
	"time"

	"jobsearch-engine/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func sampleQuery() domain.SearchQuery {
	return domain.SearchQuery{
		SearchTerm:        "go developer",
		ResultsWanted:     10,
		Sources:           []domain.SourceID{domain.SourceRemotive},
		Country:           "USA",
		DescriptionFormat: domain.FormatMarkdown,
	}
}

func TestSetGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()
	q := sampleQuery()

	_, ok, err := c.Get(ctx, q)
	require.NoError(t, err)
	assert.False(t, ok)

	res := domain.AggregateResult{
		Postings:   []domain.JobPosting{{ID: "x", Title: "Go Dev", Source: domain.SourceRemotive}},
		TotalFound: 3,
		Outcomes:   []domain.SourceOutcome{{Source: domain.SourceRemotive, Status: domain.StatusOK, RecordCount: 3}},
	}
	require.NoError(t, c.Set(ctx, q, res))

	got, ok, err := c.Get(ctx, q)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.TotalFound, got.TotalFound)
	assert.Equal(t, "Go Dev", got.Postings[0].Title)
	assert.Equal(t, domain.StatusOK, got.Outcomes[0].Status)
}

func TestTTLExpiry(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	q := sampleQuery()

	require.NoError(t, c.Set(ctx, q, domain.AggregateResult{TotalFound: 1}))
	assert.True(t, mr.Exists(Key(q)))

	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, q)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyDependsOnQuery(t *testing.T) {
	a := sampleQuery()
	b := sampleQuery()
	b.RemoteOnly = true
	assert.NotEqual(t, Key(a), Key(b))
	assert.Equal(t, Key(a), Key(sampleQuery()))
}

func TestCorruptEntry(t *testing.T) {
	c, mr := setupTestCache(t)
	q := sampleQuery()
	require.NoError(t, mr.Set(Key(q), "{not json"))

	_, ok, err := c.Get(context.Background(), q)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), "redis://"+mr.Addr()+"/0", 0)
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.Ping(context.Background()))

	_, err = Open(context.Background(), "not-a-url", 0)
	assert.Error(t, err)
}
