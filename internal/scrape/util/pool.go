package util

import (
	"context"
	"sync"
	"time"

	"jobsearch-engine/internal/logging"
	"jobsearch-engine/internal/scrape/types"
)

// FanOut runs fn over items with a bounded worker pool, each call under its
// own timeout. Results are concatenated in input order, so the output does
// not depend on which board answered first. A partial failure is logged and
// swallowed; only when every item fails is an error returned, preferring a
// rate-limit error so the caller can back off.
func FanOut[T any](
	ctx context.Context,
	items []T,
	workers int,
	perItem time.Duration,
	name func(T) string,
	fn func(context.Context, T) ([]types.RawRecord, error),
) ([]types.RawRecord, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	log := logging.FromContext(ctx)
	results := make([][]types.RawRecord, len(items))
	errs := make([]error, len(items))
	workCh := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range workCh {
				cctx, cancel := context.WithTimeout(ctx, perItem)
				recs, err := fn(cctx, items[idx])
				cancel()
				if err != nil {
					log.WithError(err).WithField("company", name(items[idx])).Warn("board fetch failed")
					errs[idx] = err
					continue
				}
				results[idx] = recs
			}
		}()
	}

	go func() {
		defer close(workCh)
		for i := range items {
			select {
			case <-ctx.Done():
				return
			case workCh <- i:
			}
		}
	}()

	wg.Wait()

	var out []types.RawRecord
	okCount := 0
	var firstErr, limited error
	for i := range items {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			if limited == nil && types.IsRateLimited(errs[i]) {
				limited = errs[i]
			}
			continue
		}
		if results[i] != nil || ctx.Err() == nil {
			okCount++
		}
		out = append(out, results[i]...)
	}

	if err := ctx.Err(); err != nil && len(out) == 0 {
		return nil, err
	}
	if okCount == 0 && firstErr != nil {
		if limited != nil {
			return nil, limited
		}
		return nil, firstErr
	}
	return out, nil
}
