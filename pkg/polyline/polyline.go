// Package polyline packs 3-D waypoint sequences into compact ASCII strings
// using the encoded polyline algorithm, with one extra dimension for altitude.
// The algorithm is documented at: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
//
// Coordinates are local meters rather than degrees, so values are rounded to
// Precision (centimetres) before delta encoding.
package polyline

import (
	"math"

	"github.com/yimbot/missionplanner/pkg/sweep"
)

// Precision is the fixed-point scale: 1e2 keeps centimetres.
const Precision = 1e2

// Decode decodes an encoded string into waypoints. A trailing incomplete
// point is dropped.
func Decode(encoded string) []sweep.Waypoint {
	if encoded == "" {
		return nil
	}

	var points []sweep.Waypoint
	index := 0
	var x, y, z int

	for index < len(encoded) {
		var deltas [3]int
		complete := true
		for d := range deltas {
			deltas[d], index, complete = decodeValue(encoded, index)
			if !complete {
				break
			}
		}
		if !complete {
			break
		}

		x += deltas[0]
		y += deltas[1]
		z += deltas[2]

		points = append(points, sweep.Waypoint{
			X: float64(x) / Precision,
			Y: float64(y) / Precision,
			Z: float64(z) / Precision,
		})
	}

	return points
}

// decodeValue decodes a single value from the string at the given index.
// Returns the decoded delta value, the new index position and whether a
// terminating chunk was found.
func decodeValue(encoded string, index int) (int, int, bool) {
	shift := 0
	result := 0
	terminated := false

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			terminated = true
			break
		}
	}

	// Apply two's complement for negative values
	if result&1 != 0 {
		return ^(result >> 1), index, terminated
	}
	return result >> 1, index, terminated
}

// Encode encodes waypoints as x, y, z delta triples.
func Encode(points []sweep.Waypoint) string {
	if len(points) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(points)*6)
	var prevX, prevY, prevZ int

	for _, p := range points {
		x := int(math.Round(p.X * Precision))
		y := int(math.Round(p.Y * Precision))
		z := int(math.Round(p.Z * Precision))

		encoded = encodeValue(encoded, x-prevX)
		encoded = encodeValue(encoded, y-prevY)
		encoded = encodeValue(encoded, z-prevZ)

		prevX, prevY, prevZ = x, y, z
	}

	return string(encoded)
}

// encodeValue encodes a single integer value using the polyline algorithm.
func encodeValue(buf []byte, value int) []byte {
	// Invert if negative
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	// Encode in 5-bit chunks
	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}
