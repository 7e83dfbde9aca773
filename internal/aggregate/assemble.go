package aggregate

import "jobsearch-engine/internal/domain"

// Assemble truncates the deduplicated postings to q.ResultsWanted without
// reordering. TotalFound is the count before truncation.
func Assemble(postings []domain.JobPosting, outcomes []domain.SourceOutcome, q domain.SearchQuery, skipped int) domain.AggregateResult {
	total := len(postings)
	if q.ResultsWanted > 0 && len(postings) > q.ResultsWanted {
		postings = postings[:q.ResultsWanted]
	}
	if postings == nil {
		postings = []domain.JobPosting{}
	}
	return domain.AggregateResult{
		Postings:   postings,
		TotalFound: total,
		Outcomes:   outcomes,
		Skipped:    skipped,
	}
}
