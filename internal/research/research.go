// Package research looks up a company's web domain and likely email
// address format.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/logging"

	"golang.org/x/sync/singleflight"
)

var ErrCompanyRequired = errors.New("company_name is required")

type Researcher interface {
	Research(ctx context.Context, company string) (domain.CompanyProfile, error)
}

type DomainFinder interface {
	FindDomain(ctx context.Context, company string) (string, error)
}

// EmailProvider returns the dominant address pattern for a domain plus a
// few real addresses. ok is false when the provider is not configured.
type EmailProvider interface {
	Lookup(ctx context.Context, domain string) (pattern string, examples []string, ok bool, err error)
}

const defaultTTL = 24 * time.Hour

type cached struct {
	profile domain.CompanyProfile
	at      time.Time
}

// Service resolves profiles, coalescing concurrent lookups of the same
// company and remembering answers for a day.
type Service struct {
	finder DomainFinder
	emails EmailProvider
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]cached
}

var _ Researcher = (*Service)(nil)

// New builds a Service. emails may be nil.
func New(finder DomainFinder, emails EmailProvider) *Service {
	return &Service{
		finder: finder,
		emails: emails,
		ttl:    defaultTTL,
		now:    time.Now,
		memo:   map[string]cached{},
	}
}

func (s *Service) Research(ctx context.Context, company string) (domain.CompanyProfile, error) {
	company = strings.Join(strings.Fields(company), " ")
	if company == "" {
		return domain.CompanyProfile{}, ErrCompanyRequired
	}
	key := strings.ToLower(company)

	s.mu.Lock()
	if c, ok := s.memo[key]; ok && s.now().Sub(c.at) < s.ttl {
		s.mu.Unlock()
		return c.profile, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(key, func() (any, error) {
		s.mu.Lock()
		if c, ok := s.memo[key]; ok && s.now().Sub(c.at) < s.ttl {
			s.mu.Unlock()
			return c.profile, nil
		}
		s.mu.Unlock()

		p, err := s.lookup(ctx, company)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.memo[key] = cached{profile: p, at: s.now()}
		s.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	return v.(domain.CompanyProfile), nil
}

func (s *Service) lookup(ctx context.Context, company string) (domain.CompanyProfile, error) {
	log := logging.FromContext(ctx).WithField("company", company)
	p := domain.CompanyProfile{CompanyName: company, Source: "none"}

	host, err := s.finder.FindDomain(ctx, company)
	if err != nil {
		return p, fmt.Errorf("find domain: %w", err)
	}
	if host == "" {
		p.Note = "no company website found"
		return p, nil
	}
	p.Domain = host

	if s.emails != nil {
		pattern, examples, ok, err := s.emails.Lookup(ctx, host)
		switch {
		case err != nil:
			log.WithError(err).Warn("email provider failed; deriving pattern")
		case ok && pattern != "":
			p.EmailPattern = pattern
			p.EmailExamples = examples
			if len(p.EmailExamples) == 0 {
				p.EmailExamples = Examples(pattern, host)
			}
			p.Confidence = 80
			p.Source = "hunter"
			return p, nil
		}
	}

	p.EmailPattern = DefaultPattern
	p.EmailExamples = Examples(DefaultPattern, host)
	p.Confidence = 30
	p.Source = "derived"
	p.Note = "pattern guessed from common conventions"
	return p, nil
}
