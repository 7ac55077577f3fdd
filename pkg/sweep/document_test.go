package sweep

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDocument_RoundTrip(t *testing.T) {
	params := []Params{
		DefaultParams(),
		{Width: 12.345, Length: 0.75, Height: 3.1, Gap: 0.2, AvgSpeed: 0, MaxAlt: 2.2},
		{Width: 1e3, Length: 333.3, Height: 40, Gap: 7.77, AvgSpeed: 11.5, MaxAlt: 35},
	}

	for _, p := range params {
		fp := Plan("warehouse-scan", p)

		data, err := MarshalDocument(fp.Document())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		doc, err := ParseDocument(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}

		if doc.Params != p {
			t.Errorf("params changed: %+v -> %+v", p, doc.Params)
		}
		if !reflect.DeepEqual(doc.Waypoints, fp.Waypoints) {
			t.Errorf("waypoints changed for %+v", p)
		}
		if doc.Name != "warehouse-scan" {
			t.Errorf("expected name to survive, got %q", doc.Name)
		}
		if !reflect.DeepEqual(doc.FlightPath().Waypoints, fp.Waypoints) {
			t.Errorf("re-ingested document should regenerate the same path")
		}
	}
}

func TestDocument_StableFieldNames(t *testing.T) {
	fp := Plan("scan", Params{Width: 2, Length: 1, Height: 1, Gap: 5, AvgSpeed: 1, MaxAlt: 1})
	data, err := MarshalDocument(fp.Document())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"name", "params", "waypoints"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	var waypoints []map[string]float64
	if err := json.Unmarshal(raw["waypoints"], &waypoints); err != nil {
		t.Fatalf("unmarshal waypoints: %v", err)
	}
	for _, key := range []string{"x", "y", "z"} {
		if _, ok := waypoints[0][key]; !ok {
			t.Errorf("waypoint missing key %q", key)
		}
	}

	var params map[string]float64
	if err := json.Unmarshal(raw["params"], &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	for _, key := range []string{"width", "length", "height", "gap", "avgSpeed", "maxAlt"} {
		if _, ok := params[key]; !ok {
			t.Errorf("params missing key %q", key)
		}
	}
}

func TestParseDocument_TolerantWaypoints(t *testing.T) {
	input := `{
		"name": "legacy",
		"params": {"width": 10, "length": 10, "height": 4, "gap": 2, "avgSpeed": 1, "maxAlt": 5},
		"waypoints": [{"x": 1, "y": 2, "z": 3}, {"x": 4, "y": 5}, [6, 7], [8, 9, 10]]
	}`

	doc, err := ParseDocument([]byte(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	expected := []Waypoint{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 0},
		{X: 6, Y: 7, Z: 0},
		{X: 8, Y: 9, Z: 10},
	}
	if !reflect.DeepEqual(doc.Waypoints, expected) {
		t.Errorf("expected %+v, got %+v", expected, doc.Waypoints)
	}
}

func TestParseDocument_MissingOrMalformedWaypoints(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing", `{"name": "a", "params": {}}`},
		{"null", `{"name": "a", "waypoints": null}`},
		{"not a list", `{"name": "a", "waypoints": "abc"}`},
		{"short array", `{"name": "a", "waypoints": [[1]]}`},
		{"wrong element", `{"name": "a", "waypoints": [true]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument([]byte(tt.input))
			if err != nil {
				t.Fatalf("expected tolerant parse, got %v", err)
			}
			if doc.Waypoints == nil || len(doc.Waypoints) != 0 {
				t.Errorf("expected empty waypoints, got %v", doc.Waypoints)
			}
		})
	}
}

func TestParseDocument_PointsAlias(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"name": "b", "points": [[1, 2, 3]]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Waypoints) != 1 || doc.Waypoints[0] != (Waypoint{X: 1, Y: 2, Z: 3}) {
		t.Errorf("expected points to be read as waypoints, got %+v", doc.Waypoints)
	}
}

func TestParseDocument_PartialParamsUseDefaults(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"name": "c", "params": {"width": 80, "gap": 4}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	expected := DefaultParams()
	expected.Width = 80
	expected.Gap = 4
	if doc.Params != expected {
		t.Errorf("expected %+v, got %+v", expected, doc.Params)
	}
}

func TestParseDocument_Invalid(t *testing.T) {
	if _, err := ParseDocument([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ParseDocument([]byte(`{"params": "wide"}`)); err == nil {
		t.Error("expected error for malformed params")
	}
}

func TestWaypoint_UnmarshalShapes(t *testing.T) {
	var w Waypoint
	if err := json.Unmarshal([]byte(`[1, 2, 3, 4, 5]`), &w); err != nil {
		t.Fatalf("expected extra values to be ignored, got %v", err)
	}
	if w != (Waypoint{X: 1, Y: 2, Z: 3}) {
		t.Errorf("expected the first three values, got %+v", w)
	}

	err := json.Unmarshal([]byte(`[1]`), &w)
	if !errors.Is(err, ErrWaypointShape) {
		t.Errorf("expected ErrWaypointShape, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "1 values") {
		t.Errorf("expected value count in error, got %v", err)
	}

	if err := json.Unmarshal([]byte(`"x"`), &w); !errors.Is(err, ErrWaypointShape) {
		t.Errorf("expected ErrWaypointShape for a string, got %v", err)
	}
}

func TestParseWaypoints_Strict(t *testing.T) {
	got, err := ParseWaypoints([]byte(`[[1, 2], {"x": 3, "y": 4, "z": 5}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[1] != (Waypoint{X: 3, Y: 4, Z: 5}) {
		t.Errorf("unexpected waypoints %+v", got)
	}

	for _, input := range []string{``, `null`, `[]`} {
		if _, err := ParseWaypoints([]byte(input)); !errors.Is(err, ErrNoWaypoints) {
			t.Errorf("%q: expected ErrNoWaypoints, got %v", input, err)
		}
	}

	if _, err := ParseWaypoints([]byte(`[[1]]`)); !errors.Is(err, ErrWaypointShape) {
		t.Errorf("expected ErrWaypointShape, got %v", err)
	}
	if _, err := ParseWaypoints([]byte(`"abc"`)); err == nil {
		t.Error("expected error for a non-list")
	}
}
