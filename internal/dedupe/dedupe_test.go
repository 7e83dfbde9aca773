package dedupe

import (
	"testing"
	"time"

	"jobsearch-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day int) *time.Time {
	t := time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func posting(id string, src domain.SourceID, title, company, loc, desc string, day int) domain.JobPosting {
	return domain.JobPosting{
		ID:          id,
		Title:       title,
		Company:     company,
		Location:    loc,
		Source:      src,
		Sources:     []domain.SourceID{src},
		Description: desc,
		DatePosted:  ts(day),
	}
}

func TestDedupeAcrossSources(t *testing.T) {
	a := posting("a", domain.SourceGreenhouse, "Software Engineer", "Acme", "Austin, TX", "short", 5)
	b := posting("b", domain.SourceAdzuna, "software  engineer", "ACME", "Austin, Texas, United States", "a much longer description", 3)
	b.Salary = &domain.Salary{Currency: "USD"}
	c := posting("c", domain.SourceLever, "Data Engineer", "Acme", "Austin, TX", "", 4)

	out := Dedupe([]domain.JobPosting{a, c, b})
	require.Len(t, out, 2)

	m := out[0]
	assert.Equal(t, "b", m.ID)
	assert.Equal(t, "a much longer description", m.Description)
	assert.Equal(t, []domain.SourceID{domain.SourceAdzuna, domain.SourceGreenhouse}, m.Sources)
	assert.Equal(t, ts(3), m.DatePosted)
	assert.NotNil(t, m.Salary)
	assert.Equal(t, "c", out[1].ID)
}

func TestDedupeOrderIndependentAndIdempotent(t *testing.T) {
	a := posting("a", domain.SourceGreenhouse, "SRE", "Acme", "Denver", "same", 2)
	b := posting("b", domain.SourceLever, "SRE", "Acme", "Denver", "same", 1)
	c := posting("c", domain.SourceRemotive, "SRE", "Acme", "Denver", "", 9)
	c.JobType = domain.JobTypeContract
	c.Tags = []string{"ops"}

	x := Dedupe([]domain.JobPosting{a, b, c})
	y := Dedupe([]domain.JobPosting{c, b, a})
	z := Dedupe([]domain.JobPosting{b, c, a})
	require.Len(t, x, 1)
	assert.Equal(t, x, y)
	assert.Equal(t, x, z)

	// equal description length: smaller ID wins
	assert.Equal(t, "a", x[0].ID)
	assert.Equal(t, domain.JobTypeContract, x[0].JobType)
	assert.Equal(t, []string{"ops"}, x[0].Tags)
	assert.Equal(t, ts(1), x[0].DatePosted)

	assert.Equal(t, x, Dedupe(x))
}

func TestMergeCommutes(t *testing.T) {
	a := posting("a", domain.SourceJobicy, "QA", "Beta", "", "", 0)
	a.DatePosted = nil
	b := posting("b", domain.SourceRemoteOK, "QA", "Beta", "", "desc", 7)
	b.IsRemote = true

	assert.Equal(t, Merge(a, b), Merge(b, a))
	m := Merge(a, b)
	assert.True(t, m.IsRemote)
	assert.Equal(t, ts(7), m.DatePosted)
}

func TestFingerprint(t *testing.T) {
	p := domain.JobPosting{Title: "  Go   Dev ", Company: "ACME", Location: "Austin, TX"}
	assert.Equal(t, "go dev|acme|austin", Fingerprint(p))
	p.City = "austin"
	assert.Equal(t, "go dev|acme|austin", Fingerprint(p))
}

func TestDedupeKeepsUntitledPostingsApart(t *testing.T) {
	var in []domain.JobPosting
	for i, u := range []string{"https://a.test/job/1", "https://a.test/job/2", "https://b.test/job/9"} {
		p := posting(string(rune('a'+i)), domain.SourceRemotive, "", "", "", "", 1)
		p.URL = u
		in = append(in, p)
	}
	// same link with tracking noise is still one job
	dup := posting("z", domain.SourceJobicy, "", "", "", "", 2)
	dup.URL = "https://a.test/job/1?utm_source=feed"
	in = append(in, dup)

	out := Dedupe(in)
	require.Len(t, out, 3)
	assert.Equal(t, "https://a.test/job/1", out[0].URL)
	assert.Equal(t, []domain.SourceID{domain.SourceJobicy, domain.SourceRemotive}, out[0].Sources)
	assert.Equal(t, "https://a.test/job/2", out[1].URL)
	assert.Equal(t, "https://b.test/job/9", out[2].URL)

	assert.Equal(t, "url:https://b.test/job/9", Fingerprint(out[2]))
	assert.Equal(t, "id:q", Fingerprint(domain.JobPosting{ID: "q"}))
}

func TestDedupeWinnerIgnoresInputOrder(t *testing.T) {
	a := posting("same", domain.SourceLever, "Dev", "Acme", "Austin, TX", "body", 1)
	b := posting("same", domain.SourceLever, "DEV", "Acme", "Austin, TX", "body", 1)
	a.URL, b.URL = "https://l.test/1", "https://l.test/1"

	x := Dedupe([]domain.JobPosting{a, b})
	y := Dedupe([]domain.JobPosting{b, a})
	require.Len(t, x, 1)
	assert.Equal(t, x, y)
	assert.Equal(t, "DEV", x[0].Title)
}
