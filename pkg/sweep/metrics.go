package sweep

import (
	"math"
	"time"
)

// MinSpeed is the floor applied to the average speed before dividing, in m/s.
const MinSpeed = 0.1

// Metrics holds the derived scalars of a waypoint sequence.
type Metrics struct {
	// TotalDistance is the 3-D length of the path in meters.
	TotalDistance float64

	// EstimatedSeconds is the traversal time in seconds.
	EstimatedSeconds float64
}

// EstimatedDuration returns EstimatedSeconds as a time.Duration.
func (m Metrics) EstimatedDuration() time.Duration {
	return time.Duration(m.EstimatedSeconds * float64(time.Second))
}

// EstimatedMinutes returns the traversal time in minutes.
func (m Metrics) EstimatedMinutes() float64 {
	return m.EstimatedSeconds / 60
}

// Distance returns the Euclidean distance between two waypoints.
func Distance(a, b Waypoint) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PathLength sums the distances between consecutive waypoints in order.
// Fewer than two waypoints have zero length.
func PathLength(waypoints []Waypoint) float64 {
	if len(waypoints) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(waypoints); i++ {
		total += Distance(waypoints[i-1], waypoints[i])
	}
	return total
}

// Measure computes the path length and the estimated traversal time at
// avgSpeed. Speeds below MinSpeed, including zero and negative values, are
// raised to MinSpeed so the estimate is always finite.
func Measure(waypoints []Waypoint, avgSpeed float64) Metrics {
	distance := PathLength(waypoints)

	speed := avgSpeed
	if !(speed >= MinSpeed) {
		speed = MinSpeed
	}

	return Metrics{
		TotalDistance:    distance,
		EstimatedSeconds: distance / speed,
	}
}
