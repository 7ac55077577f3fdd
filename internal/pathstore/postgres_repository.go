package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

// PostgresRepository is a PostgreSQL implementation of Repository. Params and
// waypoints are stored as JSONB in the paths table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL path repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectPathColumns = `SELECT id, user_email, name, params, waypoints, created_at FROM paths`

// Create inserts a new path.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	waypoints := rec.Waypoints
	if waypoints == nil {
		waypoints = []sweep.Waypoint{}
	}
	wps, err := json.Marshal(waypoints)
	if err != nil {
		return fmt.Errorf("encode waypoints: %w", err)
	}

	query := `
		INSERT INTO paths (id, user_email, name, params, waypoints, created_at)
		VALUES ($1, $2, $3, CAST($4 AS JSONB), CAST($5 AS JSONB), $6)
	`
	_, err = r.pool.Exec(ctx, query, rec.ID, rec.UserEmail, rec.Name, string(params), string(wps), rec.CreatedAt)
	return err
}

// Get retrieves a path by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.pool.QueryRow(ctx, selectPathColumns+` WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPathNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves paths newest first, optionally filtered by owner email.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	limit := ClampLimit(opts.Limit)

	var (
		rows pgx.Rows
		err  error
	)
	if opts.Email != "" {
		rows, err = r.pool.Query(ctx, selectPathColumns+` WHERE user_email = $1 ORDER BY created_at DESC LIMIT $2`, opts.Email, limit)
	} else {
		rows, err = r.pool.Query(ctx, selectPathColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Stats aggregates the paths table.
func (r *PostgresRepository) Stats(ctx context.Context, opts StatsOptions) (*Stats, error) {
	stats := &Stats{}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM paths`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count paths: %w", err)
	}

	daily, err := r.dailyCounts(ctx, opts.Days)
	if err != nil {
		return nil, err
	}
	stats.Daily = fillDays(time.Now(), opts.Days, daily)

	recent, err := r.recent(ctx, opts.Recent)
	if err != nil {
		return nil, err
	}
	stats.Recent = recent

	return stats, nil
}

// dailyCountsQuery buckets paths by UTC day. Both ends of the window are
// taken in UTC so the result lines up with fillDays whatever the session
// time zone is.
const dailyCountsQuery = `
	WITH days AS (
		SELECT generate_series(
			((now() AT TIME ZONE 'UTC')::date - ($1::int - 1))::timestamp,
			(now() AT TIME ZONE 'UTC')::date::timestamp,
			interval '1 day'
		)::date AS d
	)
	SELECT days.d, COUNT(p.id)
	FROM days LEFT JOIN paths p ON (p.created_at AT TIME ZONE 'UTC')::date = days.d
	GROUP BY days.d
	ORDER BY days.d
`

func (r *PostgresRepository) dailyCounts(ctx context.Context, days int) ([]DayCount, error) {
	if days <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, dailyCountsQuery, days)
	if err != nil {
		return nil, fmt.Errorf("daily path counts: %w", err)
	}
	defer rows.Close()

	var counts []DayCount
	for rows.Next() {
		var c DayCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *PostgresRepository) recent(ctx context.Context, n int) ([]RecentPath, error) {
	if n <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, created_at,
			CASE WHEN jsonb_typeof(waypoints) = 'array' THEN jsonb_array_length(waypoints) ELSE 0 END
		FROM paths
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("recent paths: %w", err)
	}
	defer rows.Close()

	var recent []RecentPath
	for rows.Next() {
		var p RecentPath
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.Points); err != nil {
			return nil, err
		}
		recent = append(recent, p)
	}
	return recent, rows.Err()
}

// Ping checks the pool can reach the database.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// scanRecord decodes one paths row. Stored JSON is decoded leniently:
// params fall back to defaults field by field and malformed waypoints
// become an empty list.
func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec       Record
		params    []byte
		waypoints []byte
	)
	if err := row.Scan(&rec.ID, &rec.UserEmail, &rec.Name, &params, &waypoints, &rec.CreatedAt); err != nil {
		return nil, err
	}

	rec.Params = sweep.DefaultParams()
	if len(params) > 0 {
		if err := json.Unmarshal(params, &rec.Params); err != nil {
			rec.Params = sweep.DefaultParams()
		}
	}
	rec.Waypoints = sweep.DecodeWaypoints(waypoints)
	return &rec, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
