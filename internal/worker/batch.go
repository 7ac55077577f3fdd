package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
)

// BatchJob plans and saves missions with bounded concurrency.
type BatchJob struct {
	config  BatchConfig
	planner *mission.Planner
	paths   *pathstore.Service
	logger  zerolog.Logger
	metrics *BatchMetrics
}

// BatchMetrics tracks batch job statistics.
type BatchMetrics struct {
	mu sync.RWMutex

	TotalBatches  int64
	Saved         int64
	Rejected      int64
	Failed        int64
	LastRunAt     time.Time
	LastRunTime   time.Duration
	TotalDuration time.Duration
}

// BatchJobConfig holds the dependencies of a BatchJob.
type BatchJobConfig struct {
	Config  BatchConfig
	Planner *mission.Planner
	Paths   *pathstore.Service
	Logger  zerolog.Logger
}

// NewBatchJob creates a batch job. Zero config values take the defaults.
func NewBatchJob(cfg BatchJobConfig) *BatchJob {
	config := cfg.Config
	defaults := DefaultBatchConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchJob{
		config:  config,
		planner: cfg.Planner,
		paths:   cfg.Paths,
		logger:  cfg.Logger,
		metrics: &BatchMetrics{},
	}
}

// BatchResult is the outcome of one batch.
type BatchResult struct {
	StartTime time.Time
	Duration  time.Duration
	Total     int
	// PathIDs holds the saved ID per mission index; empty when not saved.
	PathIDs  []string
	Saved    int
	Rejected int
	Failed   int
	Errors   []BatchError
}

// BatchError describes a mission that was not saved. Rejected missions had
// invalid parameters and will never succeed; the rest may on retry.
type BatchError struct {
	Index    int
	Name     string
	Rejected bool
	Error    string
}

// Run plans and saves every mission. Mission failures are reported in the
// result; Run itself only fails when ctx is done before all missions ran.
func (j *BatchJob) Run(ctx context.Context, missions []MissionSpec) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{
		StartTime: start,
		Total:     len(missions),
		PathIDs:   make([]string, len(missions)),
	}

	j.logger.Info().
		Int("missions", len(missions)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting mission batch")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.Concurrency)

	for i, spec := range missions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			id, err := j.runOne(gctx, spec)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				result.PathIDs[i] = id
				result.Saved++
				return nil
			}

			var planErr *mission.ValidationError
			var saveErr *pathstore.ValidationError
			rejected := errors.As(err, &planErr) || errors.As(err, &saveErr)
			if rejected {
				result.Rejected++
			} else {
				result.Failed++
			}
			result.Errors = append(result.Errors, BatchError{
				Index:    i,
				Name:     spec.Name,
				Rejected: rejected,
				Error:    err.Error(),
			})
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // mission errors are collected in result
	result.Duration = time.Since(start)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("saved", result.Saved).
		Int("rejected", result.Rejected).
		Int("failed", result.Failed).
		Msg("mission batch completed")

	if err := ctx.Err(); err != nil && result.Saved+result.Rejected+result.Failed < result.Total {
		return result, err
	}
	return result, nil
}

func (j *BatchJob) runOne(ctx context.Context, spec MissionSpec) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	planned, err := j.planner.Plan(ctx, spec.Name, spec.ResolvedParams())
	if err != nil {
		return "", err
	}
	rec, err := j.paths.SavePlan(ctx, planned.Path, spec.UserEmail)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (j *BatchJob) updateMetrics(result *BatchResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalBatches++
	j.metrics.Saved += int64(result.Saved)
	j.metrics.Rejected += int64(result.Rejected)
	j.metrics.Failed += int64(result.Failed)
	j.metrics.LastRunAt = result.StartTime.Add(result.Duration)
	j.metrics.LastRunTime = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *BatchJob) GetMetrics() BatchMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return BatchMetrics{
		TotalBatches:  j.metrics.TotalBatches,
		Saved:         j.metrics.Saved,
		Rejected:      j.metrics.Rejected,
		Failed:        j.metrics.Failed,
		LastRunAt:     j.metrics.LastRunAt,
		LastRunTime:   j.metrics.LastRunTime,
		TotalDuration: j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the metrics as a map for the health endpoint.
func (j *BatchJob) MetricsSnapshot() map[string]any {
	m := j.GetMetrics()
	return map[string]any{
		"total_batches":  m.TotalBatches,
		"saved":          m.Saved,
		"rejected":       m.Rejected,
		"failed":         m.Failed,
		"last_run_at":    m.LastRunAt,
		"last_run_time":  m.LastRunTime.String(),
		"total_duration": m.TotalDuration.String(),
	}
}
