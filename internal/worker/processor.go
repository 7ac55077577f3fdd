package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

// ErrPermanent marks jobs that cannot succeed on redelivery. Such messages
// are acked after logging.
var ErrPermanent = errors.New("permanent job failure")

// ErrUnknownJob is returned for job types this worker does not handle.
var ErrUnknownJob = errors.New("unknown job type")

// JobMessage is the payload of a job message.
type JobMessage struct {
	JobType string `json:"job_type"`
	MissionSpec
	Missions []MissionSpec `json:"missions,omitempty"`
}

// Processor executes decoded jobs. It holds no Pub/Sub state so it can be
// driven directly in tests.
type Processor struct {
	planner *mission.Planner
	paths   *pathstore.Service
	batch   *BatchJob
	logger  zerolog.Logger
}

// NewProcessor creates a processor that saves through paths.
func NewProcessor(planner *mission.Planner, paths *pathstore.Service, batch *BatchJob, logger zerolog.Logger) *Processor {
	return &Processor{planner: planner, paths: paths, batch: batch, logger: logger}
}

// Process decodes and runs one job. Errors wrapping ErrPermanent or
// ErrUnknownJob should not be retried.
func (p *Processor) Process(ctx context.Context, data []byte) (string, error) {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", fmt.Errorf("%w: parse message: %v", ErrPermanent, err)
	}

	switch msg.JobType {
	case JobGeneratePath:
		return msg.JobType, p.generatePath(ctx, msg.MissionSpec)
	case JobGenerateBatch:
		return msg.JobType, p.generateBatch(ctx, msg.Missions)
	case JobHealthCheck:
		return msg.JobType, p.healthCheck(ctx)
	default:
		return msg.JobType, fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

func (p *Processor) generatePath(ctx context.Context, spec MissionSpec) error {
	planned, err := p.planner.Plan(ctx, spec.Name, spec.ResolvedParams())
	if err != nil {
		return permanentIfInvalid(err)
	}

	rec, err := p.paths.SavePlan(ctx, planned.Path, spec.UserEmail)
	if err != nil {
		return permanentIfInvalid(err)
	}

	p.logger.Info().
		Str("path_id", rec.ID).
		Str("name", rec.Name).
		Int("waypoints", len(rec.Waypoints)).
		Msg("mission saved")
	return nil
}

func (p *Processor) generateBatch(ctx context.Context, missions []MissionSpec) error {
	if len(missions) == 0 {
		return fmt.Errorf("%w: batch has no missions", ErrPermanent)
	}
	if len(missions) > MaxBatchSize {
		return fmt.Errorf("%w: batch of %d exceeds %d missions", ErrPermanent, len(missions), MaxBatchSize)
	}

	result, err := p.batch.Run(ctx, missions)
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	for _, e := range result.Errors {
		p.logger.Warn().
			Int("index", e.Index).
			Str("name", e.Name).
			Bool("rejected", e.Rejected).
			Str("error", e.Error).
			Msg("mission not saved")
	}

	// Redelivery would duplicate saved paths, so only retry when nothing
	// was written.
	if result.Failed > 0 && result.Saved == 0 {
		return fmt.Errorf("all %d retryable missions failed", result.Failed)
	}
	return nil
}

func (p *Processor) healthCheck(ctx context.Context) error {
	if _, err := p.planner.Plan(ctx, "health-check", sweep.DefaultParams()); err != nil {
		return fmt.Errorf("plan stock mission: %w", err)
	}
	if err := p.paths.Ping(ctx); err != nil {
		return fmt.Errorf("path store: %w", err)
	}
	p.logger.Debug().Msg("health check passed")
	return nil
}

func permanentIfInvalid(err error) error {
	var planErr *mission.ValidationError
	var saveErr *pathstore.ValidationError
	if errors.As(err, &planErr) || errors.As(err, &saveErr) {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	return err
}
