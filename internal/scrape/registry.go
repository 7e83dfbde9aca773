package scrape

import (
	"net/http"
	"strings"

	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/adzuna"
	"jobsearch-engine/internal/scrape/greenhouse"
	"jobsearch-engine/internal/scrape/jobicy"
	"jobsearch-engine/internal/scrape/lever"
	"jobsearch-engine/internal/scrape/remoteok"
	"jobsearch-engine/internal/scrape/remotive"
	"jobsearch-engine/internal/scrape/smartrecruiters"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
	"jobsearch-engine/internal/scrape/workday"
)

const NotConfigured = "not configured"

// Registry holds the adapters built from config. Sources missing from it
// are reported as skipped with the recorded reason.
type Registry struct {
	adapters map[domain.SourceID]types.Adapter
	reasons  map[domain.SourceID]string
}

type Options struct {
	HTTPClient   *http.Client
	Limiter      *util.HostLimiter
	AdzunaAppKey string
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: map[domain.SourceID]types.Adapter{},
		reasons:  map[domain.SourceID]string{},
	}
}

func (r *Registry) Register(a types.Adapter) {
	r.adapters[a.Source()] = a
	delete(r.reasons, a.Source())
}

func (r *Registry) skip(id domain.SourceID, reason string) {
	if _, ok := r.adapters[id]; !ok {
		r.reasons[id] = reason
	}
}

func (r *Registry) Adapter(id domain.SourceID) (types.Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// SkipReason explains why id has no adapter.
func (r *Registry) SkipReason(id domain.SourceID) string {
	if reason, ok := r.reasons[id]; ok {
		return reason
	}
	return NotConfigured
}

// Available lists registered sources in priority order.
func (r *Registry) Available() []domain.SourceID {
	var out []domain.SourceID
	for _, s := range domain.AllSources {
		if _, ok := r.adapters[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// BuildRegistry wires one adapter per enabled, usable source.
func BuildRegistry(cfg config.Config, opt Options) *Registry {
	r := NewRegistry()
	hc, lim := opt.HTTPClient, opt.Limiter

	if cfg.Sources.Greenhouse.Enabled {
		if cs := mapCompanies(cfg.Sources.Greenhouse.Companies, func(slug, name string) greenhouse.Company {
			return greenhouse.Company{Slug: slug, Name: name}
		}); len(cs) > 0 {
			r.Register(greenhouse.New(greenhouse.Config{Companies: cs}, hc, lim))
		} else {
			r.skip(domain.SourceGreenhouse, "no companies configured")
		}
	}
	if cfg.Sources.Lever.Enabled {
		if cs := mapCompanies(cfg.Sources.Lever.Companies, func(slug, name string) lever.Company {
			return lever.Company{Slug: slug, Name: name}
		}); len(cs) > 0 {
			r.Register(lever.New(lever.Config{Companies: cs}, hc, lim))
		} else {
			r.skip(domain.SourceLever, "no companies configured")
		}
	}
	if cfg.Sources.SmartRecruiters.Enabled {
		if cs := mapCompanies(cfg.Sources.SmartRecruiters.Companies, func(slug, name string) smartrecruiters.Company {
			return smartrecruiters.Company{Slug: slug, Name: name}
		}); len(cs) > 0 {
			r.Register(smartrecruiters.New(smartrecruiters.Config{Companies: cs}, hc, lim))
		} else {
			r.skip(domain.SourceSmartRecruiters, "no companies configured")
		}
	}
	if cfg.Sources.Workday.Enabled {
		var cs []workday.Company
		for _, c := range cfg.Sources.Workday.Companies {
			if strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Tenant) == "" || strings.TrimSpace(c.Site) == "" {
				continue
			}
			cs = append(cs, workday.Company{Name: c.Name, Host: c.Host, Tenant: c.Tenant, Site: c.Site})
		}
		if len(cs) > 0 {
			r.Register(workday.New(workday.Config{Companies: cs}, hc, lim))
		} else {
			r.skip(domain.SourceWorkday, "no companies configured")
		}
	}
	if cfg.Sources.Adzuna.Enabled {
		appID := strings.TrimSpace(cfg.Sources.Adzuna.AppID)
		key := strings.TrimSpace(opt.AdzunaAppKey)
		if appID != "" && key != "" {
			r.Register(adzuna.New(adzuna.Config{AppID: appID, AppKey: key}, hc, lim))
		} else {
			r.skip(domain.SourceAdzuna, "missing app_id or app_key")
		}
	}
	if cfg.Sources.Remotive.Enabled {
		r.Register(remotive.New(remotive.Config{}, hc, lim))
	}
	if cfg.Sources.RemoteOK.Enabled {
		// remoteok asks clients to stay well under one request per second
		lim.SetHostRate("remoteok.com", 0.5)
		r.Register(remoteok.New(remoteok.Config{}, hc, lim))
	}
	if cfg.Sources.Jobicy.Enabled {
		r.Register(jobicy.New(jobicy.Config{}, hc, lim))
	}
	return r
}

func mapCompanies[T any](in []config.Company, mk func(slug, name string) T) []T {
	out := make([]T, 0, len(in))
	for _, c := range in {
		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = slug
		}
		out = append(out, mk(slug, name))
	}
	return out
}
