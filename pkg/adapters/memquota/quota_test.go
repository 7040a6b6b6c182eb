package memquota

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/user/screenreel/pkg/pipeline"
)

func TestService_CheckAndIncrement(t *testing.T) {
	ctx := context.Background()
	s := New(2)

	for i := 0; i < 2; i++ {
		ok, err := s.CheckLimit(ctx, "alice")
		if err != nil || !ok {
			t.Fatalf("export %d should be allowed: %v %v", i, ok, err)
		}
		if err := s.IncrementUsage(ctx, "alice"); err != nil {
			t.Fatalf("IncrementUsage failed: %v", err)
		}
	}

	if ok, _ := s.CheckLimit(ctx, "alice"); ok {
		t.Error("third export should be denied")
	}
	if err := s.IncrementUsage(ctx, "alice"); !errors.Is(err, pipeline.ErrExportLimitReached) {
		t.Errorf("expected ErrExportLimitReached, got %v", err)
	}
	if ok, _ := s.CheckLimit(ctx, "bob"); !ok {
		t.Error("other users are unaffected")
	}
}

func TestService_Unlimited(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	for i := 0; i < 100; i++ {
		if err := s.IncrementUsage(ctx, "alice"); err != nil {
			t.Fatal(err)
		}
	}
	if ok, _ := s.CheckLimit(ctx, "alice"); !ok {
		t.Error("limit 0 should be unlimited")
	}
}

func TestService_PerUserLimit(t *testing.T) {
	ctx := context.Background()
	s := New(10)
	s.SetLimit("free", 1)
	s.SetUsed("free", 1)

	if ok, _ := s.CheckLimit(ctx, "free"); ok {
		t.Error("expected per-user limit to apply")
	}
	u, _ := s.Usage(ctx, "free")
	if u.Used != 1 || u.Limit != 1 {
		t.Errorf("unexpected usage %+v", u)
	}
}

func TestService_Reservations(t *testing.T) {
	ctx := context.Background()
	s := New(1)

	r, err := s.Reserve(ctx, "alice")
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if _, err := s.Reserve(ctx, "alice"); !errors.Is(err, pipeline.ErrExportLimitReached) {
		t.Errorf("held slot must block a second reservation, got %v", err)
	}

	if err := r.Cancel(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Commit(ctx); !errors.Is(err, ErrReservationSettled) {
		t.Errorf("expected ErrReservationSettled, got %v", err)
	}

	r, err = s.Reserve(ctx, "alice")
	if err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
	if err := r.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if u, _ := s.Usage(ctx, "alice"); u.Used != 1 {
		t.Errorf("expected 1 used after commit, got %d", u.Used)
	}
	if _, err := s.Reserve(ctx, "alice"); !errors.Is(err, pipeline.ErrExportLimitReached) {
		t.Errorf("expected limit reached after commit, got %v", err)
	}
}

func TestService_ConcurrentReservationsNeverOvershoot(t *testing.T) {
	ctx := context.Background()
	s := New(5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := s.Reserve(ctx, "alice")
			if err != nil {
				return
			}
			mu.Lock()
			granted++
			mu.Unlock()
			_ = r.Commit(ctx)
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Errorf("expected exactly 5 grants, got %d", granted)
	}
}
