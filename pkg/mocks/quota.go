package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/user/screenreel/pkg/ports"
)

// Identity is a mock implementation of ports.Identity.
type Identity struct {
	UserID string
	Err    error
}

func (m *Identity) CurrentUser(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.UserID, nil
}

var _ ports.Identity = (*Identity)(nil)

// QuotaService is a mock implementation of ports.QuotaService.
// It does not implement ports.QuotaReserver; use ReservingQuota for that.
type QuotaService struct {
	CheckLimitFunc     func(ctx context.Context, userID string) (bool, error)
	IncrementUsageFunc func(ctx context.Context, userID string) error

	mu             sync.Mutex
	CheckCalls     []string
	IncrementCalls []string
}

func (m *QuotaService) CheckLimit(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	m.CheckCalls = append(m.CheckCalls, userID)
	m.mu.Unlock()
	if m.CheckLimitFunc != nil {
		return m.CheckLimitFunc(ctx, userID)
	}
	return true, nil
}

func (m *QuotaService) IncrementUsage(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.IncrementCalls = append(m.IncrementCalls, userID)
	m.mu.Unlock()
	if m.IncrementUsageFunc != nil {
		return m.IncrementUsageFunc(ctx, userID)
	}
	return nil
}

var _ ports.QuotaService = (*QuotaService)(nil)

// ReservingQuota is a mock quota service with two-phase accounting.
type ReservingQuota struct {
	QuotaService

	ReserveErr error

	mu        sync.Mutex
	Reserved  int
	Committed int
	Cancelled int
}

var errAlreadySettled = errors.New("mock quota: reservation already settled")

func (m *ReservingQuota) Reserve(ctx context.Context, userID string) (ports.Reservation, error) {
	if m.ReserveErr != nil {
		return nil, m.ReserveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reserved++
	return &reservation{q: m}, nil
}

type reservation struct {
	q       *ReservingQuota
	settled bool
}

func (r *reservation) Commit(ctx context.Context) error {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	if r.settled {
		return errAlreadySettled
	}
	r.settled = true
	r.q.Committed++
	return nil
}

func (r *reservation) Cancel(ctx context.Context) error {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	if r.settled {
		return errAlreadySettled
	}
	r.settled = true
	r.q.Cancelled++
	return nil
}

var _ ports.QuotaReserver = (*ReservingQuota)(nil)

// MemoryMonitor is a mock implementation of ports.MemoryMonitor.
type MemoryMonitor struct {
	Available uint64
	Err       error
}

func (m *MemoryMonitor) AvailableBytes() (uint64, error) {
	return m.Available, m.Err
}

var _ ports.MemoryMonitor = (*MemoryMonitor)(nil)
