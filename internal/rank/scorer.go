package rank

import "jobsearch-engine/internal/domain"

type Scorer interface {
	Score(job domain.JobPosting) (score int, tags []string)
}
