package data

import (
	"math"

	"github.com/golang/geo/r3"
)

// Bounds is an axis aligned box given by its min and max corners
type Bounds struct {
	Min r3.Vector `json:"min"`
	Max r3.Vector `json:"max"`
}

// EmptyBounds returns inverted bounds that any Extend call collapses onto the first point
func EmptyBounds() Bounds {
	return Bounds{
		Min: r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: r3.Vector{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// Extend grows the bounds so that they contain p
func (b *Bounds) Extend(p r3.Vector) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Min.Z = math.Min(b.Min.Z, p.Z)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	b.Max.Z = math.Max(b.Max.Z, p.Z)
}

// Translate returns the bounds shifted by -origin
func (b Bounds) Translate(origin r3.Vector) Bounds {
	return Bounds{Min: b.Min.Sub(origin), Max: b.Max.Sub(origin)}
}

func (b Bounds) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

func (b Bounds) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
