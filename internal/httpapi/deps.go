package httpapi

import (
	"context"
	"sync/atomic"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/research"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Engine is the search side as seen by handlers. main rebuilds it when the
// config or a source credential changes.
type Engine interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.AggregateResult, bool, error)
	Available() []domain.SourceID
}

type Deps struct {
	Logger *logrus.Logger
	Hub    *events.Hub

	// Engine returns the current engine; never nil.
	Engine func() Engine

	// Atomic store of config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	// OnConfig is called after a new config was stored.
	OnConfig func(config.Config)

	// Research is nil when company research is disabled.
	Research research.Researcher

	Gatherer prometheus.Gatherer
}

func (d Deps) config() config.Config {
	return d.CfgVal.Load().(config.Config)
}
