package sweep

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is the exported mission file: {name, params, waypoints}.
type Document struct {
	Name      string     `json:"name"`
	Params    Params     `json:"params"`
	Waypoints []Waypoint `json:"waypoints"`
}

// FlightPath re-plans the document from its parameters. The stored
// waypoints are not trusted; the generator is the source of truth.
func (d Document) FlightPath() FlightPath {
	return Plan(d.Name, d.Params)
}

// MarshalDocument encodes d as indented JSON, the format of a downloaded
// mission file.
func MarshalDocument(d Document) ([]byte, error) {
	if d.Waypoints == nil {
		d.Waypoints = []Waypoint{}
	}
	return json.MarshalIndent(d, "", "  ")
}

// ParseDocument decodes a mission file. See Document.UnmarshalJSON for the
// accepted shapes.
func ParseDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// UnmarshalJSON decodes a mission file leniently. Missing params fall back
// to DefaultParams field by field. Waypoints may also be supplied under
// "points"; a missing or malformed waypoint list decodes as empty.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      *string         `json:"name"`
		Params    json.RawMessage `json:"params"`
		Waypoints json.RawMessage `json:"waypoints"`
		Points    json.RawMessage `json:"points"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode mission document: %w", err)
	}

	doc := Document{Params: DefaultParams()}
	if raw.Name != nil {
		doc.Name = *raw.Name
	}
	if !isNull(raw.Params) {
		if err := json.Unmarshal(raw.Params, &doc.Params); err != nil {
			return fmt.Errorf("decode mission params: %w", err)
		}
	}

	list := raw.Waypoints
	if isNull(list) {
		list = raw.Points
	}
	doc.Waypoints = DecodeWaypoints(list)

	*d = doc
	return nil
}

// DecodeWaypoints decodes a JSON waypoint list, returning an empty slice
// when data is absent or malformed.
func DecodeWaypoints(data []byte) []Waypoint {
	if isNull(data) {
		return []Waypoint{}
	}
	var waypoints []Waypoint
	if err := json.Unmarshal(data, &waypoints); err != nil || waypoints == nil {
		return []Waypoint{}
	}
	return waypoints
}

// ErrNoWaypoints is returned by ParseWaypoints for an absent or empty list.
var ErrNoWaypoints = errors.New("waypoints must be a non-empty list")

// ParseWaypoints is the strict counterpart of DecodeWaypoints used when
// saving a path: the list must be present and non-empty and every element
// must have a supported shape.
func ParseWaypoints(data []byte) ([]Waypoint, error) {
	if isNull(data) {
		return nil, ErrNoWaypoints
	}
	var waypoints []Waypoint
	if err := json.Unmarshal(data, &waypoints); err != nil {
		return nil, fmt.Errorf("invalid waypoint: %w", err)
	}
	if len(waypoints) == 0 {
		return nil, ErrNoWaypoints
	}
	return waypoints, nil
}

// ErrWaypointShape is returned for waypoints that are neither an object nor
// a coordinate array of length two or three.
var ErrWaypointShape = errors.New("unsupported waypoint shape")

// UnmarshalJSON accepts {x,y,z}, {x,y}, [x,y] and [x,y,z]. A missing
// coordinate decodes as 0.
func (w *Waypoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrWaypointShape
	}

	switch data[0] {
	case '{':
		type plain Waypoint
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*w = Waypoint(p)
		return nil
	case '[':
		var coords []float64
		if err := json.Unmarshal(data, &coords); err != nil {
			return err
		}
		// Values past z are ignored.
		if len(coords) < 2 {
			return fmt.Errorf("%w: need at least [x,y], got %d values", ErrWaypointShape, len(coords))
		}
		*w = Waypoint{X: coords[0], Y: coords[1]}
		if len(coords) >= 3 {
			w.Z = coords[2]
		}
		return nil
	default:
		return ErrWaypointShape
	}
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
