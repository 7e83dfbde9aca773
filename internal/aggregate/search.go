package aggregate

import (
	"context"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/logging"
	"jobsearch-engine/internal/rank"
	"jobsearch-engine/internal/scrape/types"
)

// AdapterSource resolves source ids to adapters; *scrape.Registry
// implements it.
type AdapterSource interface {
	Adapter(id domain.SourceID) (types.Adapter, bool)
	SkipReason(id domain.SourceID) string
}

type ResultCache interface {
	Get(ctx context.Context, q domain.SearchQuery) (domain.AggregateResult, bool, error)
	Set(ctx context.Context, q domain.SearchQuery, res domain.AggregateResult) error
}

// Searcher is the entry point used by the HTTP layer. Cache and Scorer are
// optional.
type Searcher struct {
	Orchestrator *Orchestrator
	Adapters     AdapterSource
	Cache        ResultCache
	Scorer       rank.Scorer
	Metrics      *Metrics
}

// Search answers q from cache when possible, otherwise runs the requested
// adapters. Sources without an adapter are reported as skipped. Cache
// errors are logged and never fail the query.
func (s *Searcher) Search(ctx context.Context, q domain.SearchQuery) (res domain.AggregateResult, cached bool, err error) {
	log := logging.FromContext(ctx)

	if s.Cache != nil {
		hit, ok, cerr := s.Cache.Get(ctx, q)
		if cerr != nil {
			log.WithError(cerr).Warn("result cache read failed")
		}
		if ok {
			s.Metrics.IncSearch("cached")
			return hit, true, nil
		}
	}

	var adapters []types.Adapter
	var skipped []domain.SourceOutcome
	for _, id := range q.Sources {
		if a, ok := s.Adapters.Adapter(id); ok {
			adapters = append(adapters, a)
			continue
		}
		skipped = append(skipped, domain.SourceOutcome{
			Source:      id,
			Status:      domain.StatusSkipped,
			ErrorDetail: s.Adapters.SkipReason(id),
		})
	}

	res, err = s.Orchestrator.Run(ctx, q, adapters, skipped...)
	if err != nil {
		s.Metrics.IncSearch("failed")
		return res, false, err
	}
	rank.Annotate(s.Scorer, res.Postings)
	s.Metrics.IncSearch("ok")

	if s.Cache != nil {
		if cerr := s.Cache.Set(ctx, q, res); cerr != nil {
			log.WithError(cerr).Warn("result cache write failed")
		}
	}
	return res, false, nil
}
