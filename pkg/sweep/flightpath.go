package sweep

import (
	"time"
)

// FlightPath is a generated mission: the parameters it came from, the
// waypoints in flight order and the derived metrics. It is a value; a new
// one is produced for every parameter change.
type FlightPath struct {
	Name      string
	Params    Params
	Waypoints []Waypoint
	Metrics   Metrics
}

// Plan generates and measures the sweep for p.
func Plan(name string, p Params) FlightPath {
	waypoints := Generate(p)
	return FlightPath{
		Name:      name,
		Params:    p,
		Waypoints: waypoints,
		Metrics:   Measure(waypoints, p.AvgSpeed),
	}
}

// TotalDistance returns the path length in meters.
func (fp FlightPath) TotalDistance() float64 {
	return fp.Metrics.TotalDistance
}

// EstimatedDuration returns the traversal time at the mission's average speed.
func (fp FlightPath) EstimatedDuration() time.Duration {
	return fp.Metrics.EstimatedDuration()
}

// Project maps the path into vp using the mission footprint as the domain.
func (fp FlightPath) Project(vp Viewport) []ScreenPoint {
	return Project(fp.Waypoints, vp, fp.Params.Width, fp.Params.Length)
}

// Document returns the exportable form of the path.
func (fp FlightPath) Document() Document {
	waypoints := make([]Waypoint, len(fp.Waypoints))
	copy(waypoints, fp.Waypoints)
	return Document{
		Name:      fp.Name,
		Params:    fp.Params,
		Waypoints: waypoints,
	}
}
