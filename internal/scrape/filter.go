package scrape

import (
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
)

// ShouldKeepPosting re-applies the filters an adapter could not honor to a
// normalized posting. Values the source did not report always pass.
func ShouldKeepPosting(q domain.SearchQuery, p domain.JobPosting, ignored []string, now time.Time) (keep bool, reason string) {
	for _, f := range ignored {
		switch types.Filter(f) {
		case types.FilterRemoteOnly:
			if q.RemoteOnly && !p.IsRemote {
				return false, "remote_only"
			}
		case types.FilterJobType:
			if q.JobType != "" && p.JobType != "" && p.JobType != q.JobType {
				return false, "job_type"
			}
		case types.FilterHoursOld:
			if q.HoursOld != nil && p.DatePosted != nil &&
				now.Sub(*p.DatePosted) > time.Duration(*q.HoursOld)*time.Hour {
				return false, "hours_old"
			}
		}
	}
	return true, ""
}
