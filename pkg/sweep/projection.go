package sweep

import (
	"math"
	"strconv"
	"strings"
)

// Viewport is the screen-space box a path is drawn into.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// DefaultViewport is the size of the path preview canvas.
func DefaultViewport() Viewport {
	return Viewport{Width: 360, Height: 240, Padding: 24}
}

// ScreenPoint is a projected point in screen space. Y grows downward.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Project maps waypoints onto vp as a top-down polyline.
//
// Domain X in [0, domainWidth] maps to [padding, width-padding] and domain Y
// in [0, domainLength] maps to [height-padding, padding], so the origin sits
// at the bottom-left. Altitude is not represented. Domain extents below 1 are
// treated as 1. The output has the same length and order as the input.
func Project(waypoints []Waypoint, vp Viewport, domainWidth, domainLength float64) []ScreenPoint {
	if len(waypoints) == 0 {
		return []ScreenPoint{}
	}

	dw := math.Max(1, domainWidth)
	dl := math.Max(1, domainLength)
	spanX := vp.Width - 2*vp.Padding
	spanY := vp.Height - 2*vp.Padding

	out := make([]ScreenPoint, len(waypoints))
	for i, w := range waypoints {
		out[i] = ScreenPoint{
			X: vp.Padding + (w.X/dw)*spanX,
			Y: vp.Height - vp.Padding - (w.Y/dl)*spanY,
		}
	}
	return out
}

// SVGPath renders points as an SVG path "d" attribute: a move to the first
// point followed by line segments. An empty polyline renders as "".
func SVGPath(points []ScreenPoint) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteString(" L ")
		} else {
			b.WriteString("M ")
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	return b.String()
}
