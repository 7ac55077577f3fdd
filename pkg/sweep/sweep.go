// Package sweep generates serpentine (boustrophedon) scan paths over a
// rectangular warehouse floor and derives their flight metrics.
//
// Everything in this package is a pure function of its inputs: the same
// Params always produce the same waypoints, bit for bit, and no state is
// retained between calls. Callers that want caching key it on Params.
package sweep

import (
	"math"
)

// Ramp constants for the per-row cruise altitude. Row i of n flies at
// height * (RampBase + RampSpan*i/n), clamped to the altitude ceiling.
const (
	RampBase = 0.6
	RampSpan = 0.4
)

// Params describes a scanning mission. Lengths are in meters, speed in m/s.
type Params struct {
	// Width is the warehouse extent along X.
	Width float64 `json:"width" yaml:"width"`

	// Length is the warehouse extent along Y.
	Length float64 `json:"length" yaml:"length"`

	// Height is the nominal cruise altitude basis.
	Height float64 `json:"height" yaml:"height"`

	// Gap is the requested spacing between sweep rows.
	Gap float64 `json:"gap" yaml:"gap"`

	// AvgSpeed is the average ground speed used for duration estimates.
	AvgSpeed float64 `json:"avgSpeed" yaml:"avgSpeed"`

	// MaxAlt is the hard altitude ceiling.
	MaxAlt float64 `json:"maxAlt" yaml:"maxAlt"`
}

// DefaultParams returns the parameters of the stock warehouse scan.
func DefaultParams() Params {
	return Params{
		Width:    40,
		Length:   25,
		Height:   8,
		Gap:      3,
		AvgSpeed: 2.5,
		MaxAlt:   6,
	}
}

// Waypoint is a single 3-D target point in meters.
type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rows returns the number of row transitions for the given floor length and
// gap. At least one row is always produced, even when gap exceeds length.
func Rows(length, gap float64) int {
	rows := math.Floor(length / gap)
	if !(rows >= 1) {
		return 1
	}
	return int(rows)
}

// RowAltitude returns the cruise altitude of sweep line i out of rows.
func RowAltitude(p Params, i, rows int) float64 {
	if rows <= 0 {
		return math.Min(p.MaxAlt, p.Height*RampBase)
	}
	return math.Min(p.MaxAlt, p.Height*(RampBase+RampSpan*(float64(i)/float64(rows))))
}

// Generate returns the serpentine sweep for p in flight order.
//
// The floor is covered by rows+1 sweep lines spaced length/rows apart so the
// last line lands exactly on the far wall. Even lines fly from x=0 to
// x=width, odd lines fly back. Each line contributes two waypoints at the
// same altitude. Inputs are assumed to have passed Params.Validate.
func Generate(p Params) []Waypoint {
	rows := Rows(p.Length, p.Gap)
	stepY := p.Length / float64(rows)

	pts := make([]Waypoint, 0, 2*(rows+1))
	y := 0.0
	for i := 0; i <= rows; i++ {
		xStart, xEnd := 0.0, p.Width
		if i%2 != 0 {
			xStart, xEnd = p.Width, 0.0
		}
		z := RowAltitude(p, i, rows)

		pts = append(pts,
			Waypoint{X: xStart, Y: y, Z: z},
			Waypoint{X: xEnd, Y: y, Z: z},
		)

		// Clamp against float overshoot on the final line.
		y = math.Min(p.Length, y+stepY)
	}

	return pts
}
