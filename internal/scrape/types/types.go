package types

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobsearch-engine/internal/domain"
)

// RawRecord is one source-specific posting before normalization. Adapters
// fill the canonical keys below; anything else is ignored.
type RawRecord map[string]any

const (
	KeyTitle             = "title"
	KeyCompany           = "company"
	KeyLocation          = "location"
	KeyURL               = "url"
	KeyDatePosted        = "date_posted"
	KeyDescription       = "description"
	KeyDescriptionFormat = "description_format"
	KeySalary            = "salary"
	KeySalaryMin         = "salary_min"
	KeySalaryMax         = "salary_max"
	KeySalaryCurrency    = "salary_currency"
	KeySalaryInterval    = "salary_interval"
	KeyJobType           = "job_type"
	KeyIsRemote          = "is_remote"
	KeyTags              = "tags"
)

type Filter string

const (
	FilterLocation   Filter = "location"
	FilterHoursOld   Filter = "hours_old"
	FilterRemoteOnly Filter = "remote_only"
	FilterJobType    Filter = "job_type"
	FilterCountry    Filter = "country"
)

// RequestedFilters lists the optional filters q actually sets.
func RequestedFilters(q domain.SearchQuery) []Filter {
	var out []Filter
	if q.Location != "" {
		out = append(out, FilterLocation)
	}
	if q.HoursOld != nil {
		out = append(out, FilterHoursOld)
	}
	if q.RemoteOnly {
		out = append(out, FilterRemoteOnly)
	}
	if q.JobType != "" {
		out = append(out, FilterJobType)
	}
	if q.Country != "" && q.Country != "USA" {
		out = append(out, FilterCountry)
	}
	return out
}

// Adapter queries one external job source. Implementations do not retry;
// every failure comes back as *AdapterError.
type Adapter interface {
	Source() domain.SourceID
	Supports(f Filter) bool
	Fetch(ctx context.Context, q domain.SearchQuery) ([]RawRecord, error)
}

// ValueSupporter is implemented by adapters whose support for a filter
// depends on the requested value (e.g. a country with no market).
type ValueSupporter interface {
	SupportsValue(f Filter, q domain.SearchQuery) bool
}

// IgnoredFilters lists the filters q sets that a cannot honor.
func IgnoredFilters(a Adapter, q domain.SearchQuery) []string {
	var out []string
	vs, _ := a.(ValueSupporter)
	for _, f := range RequestedFilters(q) {
		ok := a.Supports(f)
		if ok && vs != nil {
			ok = vs.SupportsValue(f, q)
		}
		if !ok {
			out = append(out, string(f))
		}
	}
	return out
}

type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindTimeout     ErrorKind = "timeout"
	KindMalformed   ErrorKind = "malformed"
	KindUnreachable ErrorKind = "unreachable"
	KindUnsupported ErrorKind = "unsupported"
)

type AdapterError struct {
	Source     domain.SourceID
	Kind       ErrorKind
	RetryAfter time.Duration // RateLimited only; zero when unknown
	Field      string        // Unsupported only
	Err        error
}

func (e *AdapterError) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Source != "" {
		return fmt.Sprintf("%s: %s", e.Source, msg)
	}
	return msg
}

func (e *AdapterError) Unwrap() error { return e.Err }

func NewError(src domain.SourceID, kind ErrorKind, err error) *AdapterError {
	return &AdapterError{Source: src, Kind: kind, Err: err}
}

func RateLimited(src domain.SourceID, retryAfter time.Duration, err error) *AdapterError {
	return &AdapterError{Source: src, Kind: KindRateLimited, RetryAfter: retryAfter, Err: err}
}

// KindOf classifies any error returned from an adapter. Plain context errors
// count as timeouts, everything unknown as unreachable.
func KindOf(err error) ErrorKind {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindUnreachable
}

func IsRateLimited(err error) bool { return KindOf(err) == KindRateLimited }
