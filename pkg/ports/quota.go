package ports

import "context"

// Identity resolves the user on whose behalf a job runs.
type Identity interface {
	// CurrentUser returns the user id, or an error when nobody is signed in.
	CurrentUser(ctx context.Context) (string, error)
}

// QuotaService tracks per-user export counts.
type QuotaService interface {
	// CheckLimit reports whether the user may start another export.
	CheckLimit(ctx context.Context, userID string) (bool, error)

	// IncrementUsage records a completed export.
	IncrementUsage(ctx context.Context, userID string) error
}

// QuotaReserver is implemented by quota services that support two-phase
// accounting. A reservation holds a slot until it is committed or cancelled.
type QuotaReserver interface {
	Reserve(ctx context.Context, userID string) (Reservation, error)
}

// Reservation is a held export slot.
type Reservation interface {
	Commit(ctx context.Context) error
	Cancel(ctx context.Context) error
}

// Usage is a snapshot of a user's export quota.
type Usage struct {
	Used  int
	Limit int
}

// UsageReporter is implemented by quota services that can report usage.
type UsageReporter interface {
	Usage(ctx context.Context, userID string) (Usage, error)
}
