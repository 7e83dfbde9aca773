package aggregate

import (
	"context"
	"errors"
	"time"

	"jobsearch-engine/internal/scrape/types"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

type RetryOptions struct {
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
}

// DefaultRetry applies when an Orchestrator is built without retry options.
var DefaultRetry = RetryOptions{
	MaxRetries:   2,
	BaseDelay:    500 * time.Millisecond,
	MaxDelay:     4 * time.Second,
	JitterFactor: 0.1,
}

func (r RetryOptions) withDefaults() RetryOptions {
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = 500 * time.Millisecond
	}
	if r.MaxDelay < r.BaseDelay {
		r.MaxDelay = r.BaseDelay
	}
	if r.JitterFactor < 0 || r.JitterFactor >= 1 {
		r.JitterFactor = 0.1
	}
	return r
}

// backoff is the delay before retry n (1-based): base*2^(n-1), capped.
func (r RetryOptions) backoff(n int) time.Duration {
	d := r.BaseDelay
	for i := 1; i < n && d < r.MaxDelay; i++ {
		d *= 2
	}
	if d > r.MaxDelay {
		d = r.MaxDelay
	}
	return d
}

// attemptFunc is one adapter call; the orchestrator wraps it per source.
type attemptFunc func(ctx context.Context) ([]types.RawRecord, error)

// fetchWithRetry runs fn under a failsafe retry policy that only retries
// rate limits, and only while the context deadline leaves room for the next
// wait. A server Retry-After longer than the backoff is waited out before
// the next attempt. It returns the records, the number of attempts made and
// the last adapter error.
func fetchWithRetry(ctx context.Context, opt RetryOptions, fn attemptFunc) ([]types.RawRecord, int, error) {
	opt = opt.withDefaults()

	var (
		attempts   int
		lastErr    error
		retryAfter time.Duration
	)

	nextWait := func() time.Duration {
		d := opt.backoff(attempts)
		if retryAfter > d {
			d = retryAfter
		}
		return d
	}

	policy := retrypolicy.NewBuilder[[]types.RawRecord]().
		WithBackoff(opt.BaseDelay, opt.MaxDelay).
		WithMaxRetries(opt.MaxRetries).
		WithJitter(time.Duration(float64(opt.BaseDelay) * opt.JitterFactor)).
		HandleIf(func(_ []types.RawRecord, err error) bool {
			if err == nil || !types.IsRateLimited(err) {
				return false
			}
			if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= nextWait() {
				return false
			}
			return true
		}).
		Build()

	recs, err := failsafe.With[[]types.RawRecord](policy).WithContext(ctx).Get(func() ([]types.RawRecord, error) {
		if attempts > 0 {
			if extra := retryAfter - opt.backoff(attempts); extra > 0 {
				if err := sleep(ctx, extra); err != nil {
					return nil, err
				}
			}
		}
		attempts++
		recs, err := fn(ctx)
		lastErr = err
		retryAfter = 0
		if ae, ok := asAdapterError(err); ok && ae.Kind == types.KindRateLimited {
			retryAfter = ae.RetryAfter
		}
		return recs, err
	})
	if err == nil {
		return recs, attempts, nil
	}
	if lastErr == nil {
		lastErr = err
	}
	return nil, attempts, lastErr
}

func asAdapterError(err error) (*types.AdapterError, bool) {
	var ae *types.AdapterError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
