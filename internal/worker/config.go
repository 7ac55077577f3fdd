// Package worker runs mission generation jobs delivered over Pub/Sub.
package worker

import (
	"encoding/json"
	"time"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

// Job types accepted on the subscription.
const (
	JobGeneratePath  = "generate_path"
	JobGenerateBatch = "generate_batch"
	JobHealthCheck   = "health_check"
)

// MaxBatchSize caps the number of missions in one batch message.
const MaxBatchSize = 500

// MissionParams are the parameters carried in a job message. Fields the
// message leaves out keep their sweep.DefaultParams value.
type MissionParams sweep.Params

// UnmarshalJSON decodes params over the defaults.
func (p *MissionParams) UnmarshalJSON(data []byte) error {
	merged := sweep.DefaultParams()
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	*p = MissionParams(merged)
	return nil
}

// MissionSpec describes one mission to plan and save. Nil Params selects the
// stock mission.
type MissionSpec struct {
	Name      string         `json:"name"`
	Params    *MissionParams `json:"params,omitempty"`
	UserEmail *string        `json:"user_email,omitempty"`
}

// ResolvedParams returns the mission parameters with defaults applied.
func (m MissionSpec) ResolvedParams() sweep.Params {
	if m.Params == nil {
		return sweep.DefaultParams()
	}
	return sweep.Params(*m.Params)
}

// BatchConfig holds configuration for the batch job.
type BatchConfig struct {
	// Concurrency is the number of missions planned at once.
	// Default: 4
	Concurrency int

	// Timeout bounds each mission, including the store write.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultBatchConfig returns the default batch configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Concurrency: 4,
		Timeout:     30 * time.Second,
	}
}
