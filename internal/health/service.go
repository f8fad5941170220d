package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil error means reachable.
type CheckFunc func(ctx context.Context) error

// Service runs readiness probes against the payments database and the bank,
// caching the combined result so the /healthz endpoint cannot be used to
// hammer either dependency.
type Service struct {
	mu sync.Mutex

	checks     map[string]CheckFunc
	ttl        time.Duration
	probeLimit time.Duration

	validUntil time.Time
	cached     Result
}

type Result struct {
	At     time.Time
	OK     bool
	Checks map[string]string
}

func NewService(ttl time.Duration, checks map[string]CheckFunc) *Service {
	return &Service{
		ttl:        ttl,
		checks:     checks,
		probeLimit: 2 * time.Second,
		cached:     Result{Checks: map[string]string{}},
	}
}

func (s *Service) Check(ctx context.Context) Result {
	s.mu.Lock()
	if time.Now().Before(s.validUntil) {
		res := s.cached
		s.mu.Unlock()
		return res
	}
	s.mu.Unlock()

	res := Result{At: time.Now().UTC(), OK: true, Checks: make(map[string]string, len(s.checks))}
	for name, probe := range s.checks {
		res.Checks[name] = s.runProbe(ctx, probe)
		if res.Checks[name] != "ok" {
			res.OK = false
		}
	}

	s.mu.Lock()
	s.cached = res
	s.validUntil = time.Now().Add(s.ttl)
	s.mu.Unlock()

	return res
}

func (s *Service) runProbe(ctx context.Context, probe CheckFunc) string {
	if probe == nil {
		return "no probe registered"
	}
	probeCtx, cancel := context.WithTimeout(ctx, s.probeLimit)
	defer cancel()
	if err := probe(probeCtx); err != nil {
		return err.Error()
	}
	return "ok"
}
