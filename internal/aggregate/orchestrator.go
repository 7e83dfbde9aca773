// Package aggregate fans a search out to the source adapters and assembles
// one deduplicated result.
package aggregate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobsearch-engine/internal/dedupe"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/logging"
	"jobsearch-engine/internal/normalize"
	"jobsearch-engine/internal/scrape"
	"jobsearch-engine/internal/scrape/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultMaxParallel = 8

type Options struct {
	// MaxParallel bounds concurrent adapters; 0 means min(len(adapters), 8).
	MaxParallel   int
	SourceTimeout time.Duration
	OverallBudget time.Duration
	Retry         RetryOptions
}

type Orchestrator struct {
	opt     Options
	metrics *Metrics
	now     func() time.Time
}

func NewOrchestrator(opt Options, m *Metrics) *Orchestrator {
	if opt.SourceTimeout <= 0 {
		opt.SourceTimeout = 20 * time.Second
	}
	if opt.OverallBudget <= 0 {
		opt.OverallBudget = 45 * time.Second
	}
	if opt.Retry == (RetryOptions{}) {
		opt.Retry = DefaultRetry
	}
	return &Orchestrator{opt: opt, metrics: m, now: time.Now}
}

// sourceResult is what one adapter task contributes.
type sourceResult struct {
	postings []domain.JobPosting
	dropped  int
}

// run tracks one query's in-flight tasks. Once the budget closes it, late
// finishers are discarded so emitted outcomes never change.
type run struct {
	mu       sync.Mutex
	closed   bool
	outcomes []domain.SourceOutcome
	results  []*sourceResult
	done     []bool
}

func (r *run) finish(i int, o domain.SourceOutcome, res *sourceResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.outcomes = append(r.outcomes, o)
	r.results[i] = res
	r.done[i] = true
}

// Run queries adapters concurrently. Outcomes are reported in completion
// order; postings keep the order of the adapters slice. pre holds outcomes
// already decided by the caller (e.g. skipped sources) and is reported
// first. When no outcome is ok the error is *domain.AggregateFailure.
func (o *Orchestrator) Run(ctx context.Context, q domain.SearchQuery, adapters []types.Adapter, pre ...domain.SourceOutcome) (domain.AggregateResult, error) {
	bctx, cancel := context.WithTimeout(ctx, o.opt.OverallBudget)
	defer cancel()

	r := &run{
		outcomes: append([]domain.SourceOutcome(nil), pre...),
		results:  make([]*sourceResult, len(adapters)),
		done:     make([]bool, len(adapters)),
	}

	limit := o.opt.MaxParallel
	if limit <= 0 {
		limit = min(len(adapters), defaultMaxParallel)
	}

	waitDone := make(chan struct{})
	go func() {
		defer close(waitDone)
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, a := range adapters {
			g.Go(func() error {
				out, res := o.runSource(bctx, q, a)
				r.finish(i, out, res)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-waitDone:
	case <-bctx.Done():
		// give tasks that are already unwinding a moment to report
		select {
		case <-waitDone:
		case <-time.After(50 * time.Millisecond):
		}
	}

	r.mu.Lock()
	r.closed = true
	for i, a := range adapters {
		if !r.done[i] {
			r.outcomes = append(r.outcomes, domain.SourceOutcome{
				Source:      a.Source(),
				Status:      domain.StatusTimeout,
				ErrorDetail: "overall budget exceeded",
			})
			o.metrics.observeSource(string(a.Source()), string(domain.StatusTimeout), o.opt.OverallBudget.Seconds(), 0)
		}
	}
	outcomes := r.outcomes
	results := r.results
	r.mu.Unlock()

	anyOK := false
	for _, out := range outcomes {
		if out.OK() {
			anyOK = true
			break
		}
	}
	if !anyOK {
		return domain.AggregateResult{Outcomes: outcomes}, &domain.AggregateFailure{Outcomes: outcomes}
	}

	var all []domain.JobPosting
	dropped := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		all = append(all, res.postings...)
		dropped += res.dropped
	}
	return Assemble(dedupe.Dedupe(all), outcomes, q, dropped), nil
}

// runSource performs one adapter invocation with retries, normalization and
// post-filtering. It never panics and never returns an error: everything is
// folded into the outcome.
func (o *Orchestrator) runSource(ctx context.Context, q domain.SearchQuery, a types.Adapter) (out domain.SourceOutcome, res *sourceResult) {
	src := a.Source()
	start := o.now()
	log := logging.FromContext(ctx).WithField("source", src)

	out = domain.SourceOutcome{Source: src}
	ignored := types.IgnoredFilters(a, q)
	out.IgnoredFilters = ignored

	defer func() {
		if p := recover(); p != nil {
			out.Status = domain.StatusError
			out.ErrorDetail = fmt.Sprintf("panic: %v", p)
			out.RecordCount = 0
			res = nil
			log.WithField("panic", p).Error("source panicked")
		}
		out.DurationMS = o.now().Sub(start).Milliseconds()
		retries := out.Attempts - 1
		if retries < 0 {
			retries = 0
		}
		o.metrics.observeSource(string(src), string(out.Status), o.now().Sub(start).Seconds(), retries)
		log.WithFields(logrus.Fields{
			"status":      out.Status,
			"records":     out.RecordCount,
			"attempts":    out.Attempts,
			"duration_ms": out.DurationMS,
		}).Info("source finished")
	}()

	sctx, cancel := context.WithTimeout(ctx, o.opt.SourceTimeout)
	defer cancel()

	raws, attempts, err := fetchWithRetry(sctx, o.opt.Retry, func(ctx context.Context) ([]types.RawRecord, error) {
		return a.Fetch(ctx, q)
	})
	out.Attempts = attempts
	if err != nil {
		out.Status = statusFor(sctx, err)
		out.ErrorDetail = err.Error()
		log.WithError(err).Warn("source failed")
		return out, nil
	}

	now := o.now()
	res = &sourceResult{}
	for _, raw := range raws {
		p, ok := normalize.Normalize(raw, src, q.DescriptionFormat)
		if !ok {
			res.dropped++
			continue
		}
		if keep, _ := scrape.ShouldKeepPosting(q, p, ignored, now); !keep {
			continue
		}
		res.postings = append(res.postings, p)
	}
	if res.dropped > 0 {
		log.WithField("dropped", res.dropped).Debug("records without title or url dropped")
	}

	out.Status = domain.StatusOK
	out.RecordCount = len(res.postings)
	return out, res
}

func statusFor(ctx context.Context, err error) domain.Status {
	switch types.KindOf(err) {
	case types.KindRateLimited:
		return domain.StatusRateLimited
	case types.KindTimeout:
		return domain.StatusTimeout
	}
	if ctx.Err() != nil {
		return domain.StatusTimeout
	}
	return domain.StatusError
}
