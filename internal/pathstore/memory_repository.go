package pathstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local runs. Production should use
// PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	paths map[string]*Record
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory path repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		paths: make(map[string]*Record),
		now:   time.Now,
	}
}

// WithClock overrides the clock used for per-day stats.
func (r *InMemoryRepository) WithClock(now func() time.Time) *InMemoryRepository {
	r.now = now
	return r
}

// Create stores a copy of rec.
func (r *InMemoryRepository) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths[rec.ID] = cloneRecord(rec)
	return nil
}

// Get retrieves a path by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.paths[id]
	if !ok {
		return nil, ErrPathNotFound
	}
	return cloneRecord(rec), nil
}

// List returns paths newest first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*Record, 0, len(r.paths))
	for _, rec := range r.paths {
		if opts.Email != "" && (rec.UserEmail == nil || *rec.UserEmail != opts.Email) {
			continue
		}
		items = append(items, cloneRecord(rec))
	}
	sortNewestFirst(items)

	if limit := ClampLimit(opts.Limit); len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Stats aggregates the stored paths.
func (r *InMemoryRepository) Stats(_ context.Context, opts StatsOptions) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &Stats{
		Total: len(r.paths),
		Daily: emptyDays(r.now(), opts.Days),
	}

	all := make([]*Record, 0, len(r.paths))
	for _, rec := range r.paths {
		all = append(all, rec)
		day := truncateDay(rec.CreatedAt)
		for i := range stats.Daily {
			if stats.Daily[i].Day.Equal(day) {
				stats.Daily[i].Count++
			}
		}
	}
	sortNewestFirst(all)

	for i := 0; i < len(all) && i < opts.Recent; i++ {
		stats.Recent = append(stats.Recent, RecentPath{
			ID:        all[i].ID,
			Name:      all[i].Name,
			CreatedAt: all[i].CreatedAt,
			Points:    len(all[i].Waypoints),
		})
	}
	return stats, nil
}

// Ping always succeeds.
func (r *InMemoryRepository) Ping(_ context.Context) error {
	return nil
}

func cloneRecord(rec *Record) *Record {
	cpy := *rec
	cpy.Waypoints = append([]sweep.Waypoint(nil), rec.Waypoints...)
	if rec.UserEmail != nil {
		email := *rec.UserEmail
		cpy.UserEmail = &email
	}
	return &cpy
}

func sortNewestFirst(items []*Record) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
