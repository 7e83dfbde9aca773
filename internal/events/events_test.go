package events

import (
	"encoding/json"
	"testing"

	"jobsearch-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearchCompleted(t *testing.T) {
	q := domain.SearchQuery{SearchTerm: "go developer"}
	res := domain.AggregateResult{
		TotalFound: 7,
		Outcomes:   []domain.SourceOutcome{{Source: domain.SourceLever, Status: domain.StatusOK, RecordCount: 7}},
	}

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(NewSearchCompleted("req-1", q, res, false)), &evt))
	assert.Equal(t, TypeSearchCompleted, evt.Type)
	assert.Equal(t, "req-1", evt.RequestID)

	var data SearchCompleted
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, "go developer", data.SearchTerm)
	assert.Equal(t, 7, data.TotalJobs)
	require.Len(t, data.Sources, 1)
	assert.Equal(t, domain.StatusOK, data.Sources[0].Status)
}

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	assert.Equal(t, 2, h.Clients())

	h.Publish("hello")
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)

	cancelA()
	cancelA()
	assert.Equal(t, 1, h.Clients())
	_, open := <-a
	assert.False(t, open)

	cancelB()
	assert.Zero(t, h.Clients())
	h.Publish("nobody listening")
}

func TestHubDropsForSlowClient(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < clientBuffer+3; i++ {
		h.Publish("x")
	}
	assert.Equal(t, 3, h.Dropped())
}

func TestHubCloseDisconnectsSubscribers(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	h.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.Clients())

	assert.NotPanics(t, cancel)
}
