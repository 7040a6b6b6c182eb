// Package filequota persists export counts in a TOML file shared between
// processes. Access is serialized with an advisory file lock.
package filequota

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
)

// ErrLockTimeout is returned when the quota file stays locked by another process.
var ErrLockTimeout = errors.New("filequota: timed out waiting for lock")

const lockRetryDelay = 50 * time.Millisecond

// State is the file layout. Only per-user records are stored; the default
// limit always comes from the Service.
//
//	[users.alice]
//	used = 1
//	limit = 10
type State struct {
	Users map[string]*User `toml:"users"`
}

// User is one user's record. A zero Limit falls back to the Service default.
type User struct {
	Used  int `toml:"used"`
	Limit int `toml:"limit,omitempty"`
}

// Service implements ports.QuotaService on a TOML file. Unknown users start
// at zero usage. A limit of zero or less means unlimited.
type Service struct {
	path         string
	defaultLimit int
	lock         *flock.Flock
	lockTimeout  time.Duration
}

// New creates a Service on path. defaultLimit applies to every user without
// a limit of their own in the file.
func New(path string, defaultLimit int) *Service {
	return &Service{
		path:         path,
		defaultLimit: defaultLimit,
		lock:         flock.New(path + ".lock"),
		lockTimeout:  5 * time.Second,
	}
}

// CheckLimit reports whether the user may start another export.
func (s *Service) CheckLimit(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := s.withLock(ctx, false, func(st *State) error {
		used, limit := s.usage(st, userID)
		ok = limit <= 0 || used < limit
		return nil
	})
	return ok, err
}

// IncrementUsage records a completed export.
func (s *Service) IncrementUsage(ctx context.Context, userID string) error {
	return s.withLock(ctx, true, func(st *State) error {
		used, limit := s.usage(st, userID)
		if limit > 0 && used >= limit {
			return fmt.Errorf("%w: %d of %d used", pipeline.ErrExportLimitReached, used, limit)
		}
		u := st.Users[userID]
		if u == nil {
			u = &User{}
			st.Users[userID] = u
		}
		u.Used++
		return nil
	})
}

// Usage returns the user's usage and limit.
func (s *Service) Usage(ctx context.Context, userID string) (ports.Usage, error) {
	var usage ports.Usage
	err := s.withLock(ctx, false, func(st *State) error {
		usage.Used, usage.Limit = s.usage(st, userID)
		return nil
	})
	return usage, err
}

func (s *Service) usage(st *State, userID string) (used, limit int) {
	limit = s.defaultLimit
	if u, ok := st.Users[userID]; ok && u != nil {
		used = u.Used
		if u.Limit != 0 {
			limit = u.Limit
		}
	}
	return used, limit
}

// withLock loads the state under the file lock, runs fn, and writes the
// state back when write is set and fn succeeds.
func (s *Service) withLock(ctx context.Context, write bool, fn func(*State) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create quota dir: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	locked, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return ErrLockTimeout
		}
		return fmt.Errorf("lock quota file: %w", err)
	}
	if !locked {
		return ErrLockTimeout
	}
	defer s.lock.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	if !write {
		return nil
	}
	return s.save(st)
}

func (s *Service) load() (*State, error) {
	st := &State{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		st.Users = map[string]*User{}
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read quota file: %w", err)
	}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(st); err != nil {
		return nil, fmt.Errorf("parse quota file: %w", err)
	}
	if st.Users == nil {
		st.Users = map[string]*User{}
	}
	return st, nil
}

// save writes the state through a temp file and rename.
func (s *Service) save(st *State) error {
	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode quota file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".quota-*")
	if err != nil {
		return fmt.Errorf("write quota file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write quota file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write quota file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write quota file: %w", err)
	}
	return nil
}

var (
	_ ports.QuotaService  = (*Service)(nil)
	_ ports.UsageReporter = (*Service)(nil)
)
