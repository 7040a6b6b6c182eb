// Package memquota is an in-process export quota with two-phase accounting.
package memquota

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
)

// ErrReservationSettled is returned when a reservation is committed or
// cancelled twice.
var ErrReservationSettled = errors.New("memquota: reservation already settled")

// Service tracks exports per user. A limit of zero or less means unlimited.
type Service struct {
	mu       sync.Mutex
	limit    int
	limits   map[string]int
	used     map[string]int
	reserved map[string]int
}

// New creates a Service where every user gets limit exports.
func New(limit int) *Service {
	return &Service{
		limit:    limit,
		limits:   make(map[string]int),
		used:     make(map[string]int),
		reserved: make(map[string]int),
	}
}

// SetLimit overrides the limit for one user.
func (s *Service) SetLimit(userID string, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[userID] = limit
}

// SetUsed sets the recorded usage for one user.
func (s *Service) SetUsed(userID string, used int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[userID] = used
}

func (s *Service) limitFor(userID string) int {
	if l, ok := s.limits[userID]; ok {
		return l
	}
	return s.limit
}

// available reports whether a new export fits. Callers hold mu.
func (s *Service) available(userID string) bool {
	limit := s.limitFor(userID)
	return limit <= 0 || s.used[userID]+s.reserved[userID] < limit
}

// CheckLimit reports whether the user may start another export.
func (s *Service) CheckLimit(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available(userID), nil
}

// IncrementUsage records a completed export.
func (s *Service) IncrementUsage(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit := s.limitFor(userID); limit > 0 && s.used[userID] >= limit {
		return fmt.Errorf("%w: %d of %d used", pipeline.ErrExportLimitReached, s.used[userID], limit)
	}
	s.used[userID]++
	return nil
}

// Reserve holds an export slot until the reservation is settled.
func (s *Service) Reserve(ctx context.Context, userID string) (ports.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available(userID) {
		return nil, pipeline.ErrExportLimitReached
	}
	s.reserved[userID]++
	return &reservation{s: s, userID: userID}, nil
}

// Usage returns the user's committed usage and limit.
func (s *Service) Usage(ctx context.Context, userID string) (ports.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.Usage{Used: s.used[userID], Limit: s.limitFor(userID)}, nil
}

type reservation struct {
	s       *Service
	userID  string
	settled bool
}

func (r *reservation) Commit(ctx context.Context) error {
	return r.settle(true)
}

func (r *reservation) Cancel(ctx context.Context) error {
	return r.settle(false)
}

func (r *reservation) settle(commit bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.settled {
		return ErrReservationSettled
	}
	r.settled = true
	r.s.reserved[r.userID]--
	if commit {
		r.s.used[r.userID]++
	}
	return nil
}

var (
	_ ports.QuotaService  = (*Service)(nil)
	_ ports.QuotaReserver = (*Service)(nil)
	_ ports.UsageReporter = (*Service)(nil)
)
