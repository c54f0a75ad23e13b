package data

import (
	"math"

	"github.com/golang/geo/r3"
)

// Contains data of a point cloud sample, namely the classification code, the X,Y,Z position,
// and optionally the R,G,B color components and the normalized intensity
type Record struct {
	Classification int
	Position       r3.Vector
	Color          Color
	Intensity      float64

	HasColor     bool
	HasIntensity bool
}

// Builds a new Record carrying only a classification code and a position
func NewRecord(classification int, x, y, z float64) Record {
	return Record{
		Classification: classification,
		Position:       r3.Vector{X: x, Y: y, Z: z},
	}
}

// Builds a new Record with position and color
func NewColoredRecord(classification int, x, y, z float64, c Color) Record {
	r := NewRecord(classification, x, y, z)
	r.Color = c
	r.HasColor = true
	return r
}

// Returns a copy of the record with the given normalized intensity attached
func (r Record) WithIntensity(intensity float64) Record {
	r.Intensity = intensity
	r.HasIntensity = true
	return r
}

// IsFinite reports whether every value carried by the record is a finite number.
func (r Record) IsFinite() bool {
	if !isFinite(r.Position.X) || !isFinite(r.Position.Y) || !isFinite(r.Position.Z) {
		return false
	}
	if r.HasColor && !r.Color.IsFinite() {
		return false
	}
	if r.HasIntensity && !isFinite(r.Intensity) {
		return false
	}
	return true
}

// FilterFinite returns a new slice holding, in order, only the records whose values are all finite.
// The input slice is left untouched.
func FilterFinite(records []Record) []Record {
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.IsFinite() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
