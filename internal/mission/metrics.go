package mission

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

const meterName = "github.com/yimbot/missionplanner/internal/mission"

// Metrics holds the planner's OpenTelemetry instruments. A nil *Metrics
// records nothing.
type Metrics struct {
	plans     metric.Int64Counter
	cache     metric.Int64Counter
	waypoints metric.Int64Histogram
	distance  metric.Float64Histogram
}

// NewMetrics creates the planner instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	plans, err := meter.Int64Counter(
		"mission.plans.total",
		metric.WithDescription("Number of flight paths generated"),
		metric.WithUnit("{path}"),
	)
	if err != nil {
		return nil, err
	}

	cache, err := meter.Int64Counter(
		"mission.cache.lookups",
		metric.WithDescription("Planner cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	waypoints, err := meter.Int64Histogram(
		"mission.path.waypoints",
		metric.WithDescription("Waypoints per generated path"),
		metric.WithUnit("{waypoint}"),
	)
	if err != nil {
		return nil, err
	}

	distance, err := meter.Float64Histogram(
		"mission.path.distance",
		metric.WithDescription("Total flight distance per generated path"),
		metric.WithUnit("m"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		plans:     plans,
		cache:     cache,
		waypoints: waypoints,
		distance:  distance,
	}, nil
}

func (m *Metrics) recordPlan(ctx context.Context, fp sweep.FlightPath) {
	if m == nil {
		return
	}
	m.plans.Add(ctx, 1)
	m.waypoints.Record(ctx, int64(len(fp.Waypoints)))
	m.distance.Record(ctx, fp.TotalDistance())
}

func (m *Metrics) recordCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cache.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
