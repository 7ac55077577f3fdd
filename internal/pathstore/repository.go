package pathstore

import "context"

// List limits.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// ListOptions filters a listing. Results are always newest first.
type ListOptions struct {
	Limit int
	Email string
}

// StatsOptions sizes the aggregate returned by Repository.Stats.
type StatsOptions struct {
	Days   int
	Recent int
}

// Repository defines the interface for path persistence.
type Repository interface {
	// Create stores a new record. Backends that assign their own IDs
	// overwrite rec.ID, leaving it empty when the ID cannot be learned.
	Create(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID. Returns ErrPathNotFound if absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records ordered by creation time, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	// Stats returns the total count, per-day counts for the last opts.Days
	// days including today, and the opts.Recent newest paths.
	Stats(ctx context.Context, opts StatsOptions) (*Stats, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// ClampLimit applies DefaultListLimit to non-positive limits and caps at
// MaxListLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
