// Package pathstore persists generated flight paths and summarizes them for
// the dashboard.
package pathstore

import (
	"errors"
	"time"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

// Repository errors.
var (
	ErrPathNotFound = errors.New("path not found")
)

// Record is a saved flight path.
type Record struct {
	ID        string
	Name      string
	UserEmail *string
	Params    sweep.Params
	Waypoints []sweep.Waypoint
	CreatedAt time.Time
}

// DayCount is the number of paths saved on one calendar day (UTC).
type DayCount struct {
	Day   time.Time
	Count int
}

// RecentPath is a short listing entry used by the overview.
type RecentPath struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Points    int
}

// Stats aggregates the store contents.
type Stats struct {
	Total  int
	Daily  []DayCount
	Recent []RecentPath
}
