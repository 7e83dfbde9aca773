package main

import (
	"context"
	"net/http"
	"sync/atomic"

	"jobsearch-engine/internal/aggregate"
	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/httpapi"
	"jobsearch-engine/internal/rank"
	"jobsearch-engine/internal/scrape"
	"jobsearch-engine/internal/scrape/util"
	"jobsearch-engine/internal/secrets"

	"github.com/sirupsen/logrus"
)

// engine pairs the searcher with the registry it was built from so /sites
// can report what is usable.
type engine struct {
	*aggregate.Searcher
	reg *scrape.Registry
}

func (e engine) Available() []domain.SourceID { return e.reg.Available() }

// builder rebuilds the engine from config. Metrics, cache, HTTP client and
// limiter outlive rebuilds.
type builder struct {
	log     *logrus.Logger
	hc      *http.Client
	limiter *util.HostLimiter
	metrics *aggregate.Metrics
	cache   aggregate.ResultCache

	cur atomic.Pointer[engine]
}

func (b *builder) rebuild(cfg config.Config) {
	appKey, err := secrets.AdzunaAppKey()
	if err != nil && cfg.Sources.Adzuna.Enabled {
		b.log.Debug("adzuna app key not set")
	}

	reg := scrape.BuildRegistry(cfg, scrape.Options{
		HTTPClient:   b.hc,
		Limiter:      b.limiter,
		AdzunaAppKey: appKey,
	})
	orch := aggregate.NewOrchestrator(aggregate.Options{
		MaxParallel:   cfg.Search.MaxParallel,
		SourceTimeout: cfg.SourceTimeout(),
		OverallBudget: cfg.OverallBudget(),
		Retry: aggregate.RetryOptions{
			MaxRetries:   cfg.Retry.MaxRetries,
			BaseDelay:    cfg.RetryBaseDelay(),
			MaxDelay:     cfg.RetryMaxDelay(),
			JitterFactor: cfg.Retry.JitterFactor,
		},
	}, b.metrics)

	s := &aggregate.Searcher{
		Orchestrator: orch,
		Adapters:     reg,
		Cache:        b.cache,
		Scorer:       rank.YAMLScorer{Cfg: cfg},
		Metrics:      b.metrics,
	}
	b.cur.Store(&engine{Searcher: s, reg: reg})
	b.log.WithField("sources", reg.Available()).Info("search engine ready")
}

func (b *builder) current() httpapi.Engine {
	return *b.cur.Load()
}

// pinger keeps idle SSE connections from being closed by proxies.
func pinger(hub *events.Hub) func(context.Context) error {
	return func(context.Context) error {
		hub.Publish(events.Encode("", events.TypePing, nil))
		return nil
	}
}
