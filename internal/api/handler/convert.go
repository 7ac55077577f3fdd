package handler

import (
	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/pkg/polyline"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

func toFlightPath(fp sweep.FlightPath, preview *mission.Preview, cached bool) models.FlightPath {
	out := models.FlightPath{
		Name:                fp.Name,
		Params:              fp.Params,
		Waypoints:           fp.Waypoints,
		WaypointCount:       len(fp.Waypoints),
		TotalDistanceMeters: fp.Metrics.TotalDistance,
		EstimatedSeconds:    fp.Metrics.EstimatedSeconds,
		EstimatedMinutes:    fp.Metrics.EstimatedMinutes(),
		Polyline:            polyline.Encode(fp.Waypoints),
		Cached:              cached,
	}
	if out.Waypoints == nil {
		out.Waypoints = []sweep.Waypoint{}
	}
	if preview != nil {
		out.Preview = &models.Preview{
			Width:   preview.Viewport.Width,
			Height:  preview.Viewport.Height,
			Padding: preview.Viewport.Padding,
			Points:  preview.Points,
			SVGPath: preview.SVGPath,
		}
	}
	return out
}

func toPathRecord(rec *pathstore.Record) models.PathRecord {
	waypoints := rec.Waypoints
	if waypoints == nil {
		waypoints = []sweep.Waypoint{}
	}
	return models.PathRecord{
		ID:            rec.ID,
		Name:          rec.Name,
		UserEmail:     rec.UserEmail,
		Params:        rec.Params,
		Waypoints:     waypoints,
		WaypointCount: len(waypoints),
		CreatedAt:     models.Timestamp(rec.CreatedAt),
	}
}

func toStatsOverview(o *pathstore.Overview) models.StatsOverview {
	out := models.StatsOverview{
		PathsCount:      o.PathsCount,
		PathsLast7ByDay: make([]models.DayCount, 0, len(o.PathsLast7)),
		RecentPaths:     make([]models.RecentPath, 0, len(o.RecentPaths)),
		GeneratedAt:     models.Timestamp(o.GeneratedAt),
	}
	for _, d := range o.PathsLast7 {
		out.PathsLast7ByDay = append(out.PathsLast7ByDay, models.DayCount{
			Day:   d.Day.Format("2006-01-02"),
			Count: d.Count,
		})
	}
	for _, p := range o.RecentPaths {
		out.RecentPaths = append(out.RecentPaths, models.RecentPath{
			ID:        p.ID,
			Name:      p.Name,
			CreatedAt: models.Timestamp(p.CreatedAt),
			Points:    p.Points,
		})
	}
	return out
}
