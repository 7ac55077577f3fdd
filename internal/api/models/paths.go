package models

import (
	"encoding/json"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

// GeneratePathRequest is the body of POST /v1/paths:generate. Omitted
// parameters keep their stock values.
type GeneratePathRequest struct {
	Name   string       `json:"name"`
	Params sweep.Params `json:"params"`
}

// NewGeneratePathRequest returns a request pre-filled with the stock mission.
func NewGeneratePathRequest() GeneratePathRequest {
	return GeneratePathRequest{Params: sweep.DefaultParams()}
}

// Preview is the top-down rendering of a path in screen coordinates.
type Preview struct {
	Width   float64             `json:"width"`
	Height  float64             `json:"height"`
	Padding float64             `json:"padding"`
	Points  []sweep.ScreenPoint `json:"points"`
	SVGPath string              `json:"svgPath"`
}

// FlightPath is a generated mission with its metrics and preview.
type FlightPath struct {
	Name                string           `json:"name"`
	Params              sweep.Params     `json:"params"`
	Waypoints           []sweep.Waypoint `json:"waypoints"`
	WaypointCount       int              `json:"waypointCount"`
	TotalDistanceMeters float64          `json:"totalDistanceMeters"`
	EstimatedSeconds    float64          `json:"estimatedSeconds"`
	EstimatedMinutes    float64          `json:"estimatedMinutes"`
	Polyline            string           `json:"polyline"`
	Preview             *Preview         `json:"preview,omitempty"`
	Cached              bool             `json:"cached"`
}

// SavePathRequest is the body of POST /v1/paths. Waypoints are kept raw so
// that a missing or malformed list is reported as 422 rather than 400;
// "points" is accepted as an alias.
type SavePathRequest struct {
	Name      string          `json:"name"`
	UserEmail *string         `json:"userEmail,omitempty"`
	Params    *sweep.Params   `json:"params,omitempty"`
	Waypoints json.RawMessage `json:"waypoints"`
	Points    json.RawMessage `json:"points,omitempty"`
}

// RawWaypoints returns the waypoints list, falling back to points.
func (r SavePathRequest) RawWaypoints() json.RawMessage {
	if len(r.Waypoints) > 0 && string(r.Waypoints) != "null" {
		return r.Waypoints
	}
	return r.Points
}

// PathRecord is a saved path.
type PathRecord struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	UserEmail     *string          `json:"userEmail,omitempty"`
	Params        sweep.Params     `json:"params"`
	Waypoints     []sweep.Waypoint `json:"waypoints"`
	WaypointCount int              `json:"waypointCount"`
	CreatedAt     Timestamp        `json:"createdAt"`
}

// PathList is a page of saved paths, newest first.
type PathList struct {
	Items []PathRecord      `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// DayCount is the number of paths saved on one UTC day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// RecentPath is a saved path summary.
type RecentPath struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"createdAt"`
	Points    int       `json:"points"`
}

// StatsOverview is the dashboard summary.
type StatsOverview struct {
	PathsCount      int          `json:"pathsCount"`
	PathsLast7ByDay []DayCount   `json:"pathsLast7ByDay"`
	RecentPaths     []RecentPath `json:"recentPaths"`
	GeneratedAt     Timestamp    `json:"generatedAt"`
}
