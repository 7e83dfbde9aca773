package util

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits per hostname (api.lever.co, remoteok.com, etc).
// It is shared by every query so concurrent searches stay polite together.
type HostLimiter struct {
	mu        sync.Mutex
	m         map[string]*rate.Limiter
	overrides map[string]rate.Limit
	r         rate.Limit
	b         int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m:         make(map[string]*rate.Limiter),
		overrides: make(map[string]rate.Limit),
		r:         rate.Limit(reqPerSec),
		b:         burst,
	}
}

// SetHostRate gives one host its own rate. Call before first use of the host.
func (hl *HostLimiter) SetHostRate(host string, reqPerSec float64) {
	if hl == nil {
		return
	}
	hl.mu.Lock()
	defer hl.mu.Unlock()
	hl.overrides[host] = rate.Limit(reqPerSec)
	delete(hl.m, host)
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	r := hl.r
	if o, ok := hl.overrides[host]; ok {
		r = o
	}
	lim := rate.NewLimiter(r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}
