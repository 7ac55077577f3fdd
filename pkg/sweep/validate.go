package sweep

import (
	"fmt"
	"math"
	"strings"
)

// MaxRows bounds the number of row transitions a single mission may request.
const MaxRows = 10000

// FieldError describes a single invalid parameter.
type FieldError struct {
	Field   string
	Message string
}

// InvalidParamsError is returned by Params.Validate.
type InvalidParamsError struct {
	Fields []FieldError
}

func (e *InvalidParamsError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid mission parameters: " + strings.Join(parts, "; ")
}

// Validate checks p at the input boundary. Geometry fields must be finite and
// positive. AvgSpeed must be finite and non-negative; slow speeds are clamped
// by Measure rather than rejected.
func (p Params) Validate() error {
	var errs []FieldError

	positive := []struct {
		field string
		value float64
	}{
		{"width", p.Width},
		{"length", p.Length},
		{"height", p.Height},
		{"gap", p.Gap},
		{"maxAlt", p.MaxAlt},
	}
	for _, f := range positive {
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
			errs = append(errs, FieldError{Field: f.field, Message: "must be a finite number"})
		case f.value <= 0:
			errs = append(errs, FieldError{Field: f.field, Message: "must be greater than 0"})
		}
	}

	switch {
	case math.IsNaN(p.AvgSpeed) || math.IsInf(p.AvgSpeed, 0):
		errs = append(errs, FieldError{Field: "avgSpeed", Message: "must be a finite number"})
	case p.AvgSpeed < 0:
		errs = append(errs, FieldError{Field: "avgSpeed", Message: "must not be negative"})
	}

	if len(errs) == 0 && p.Length/p.Gap > MaxRows {
		errs = append(errs, FieldError{
			Field:   "gap",
			Message: fmt.Sprintf("is too small for the warehouse length (at most %d rows)", MaxRows),
		})
	}

	if len(errs) > 0 {
		return &InvalidParamsError{Fields: errs}
	}
	return nil
}
