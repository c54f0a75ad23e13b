package model

import (
	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Bucket holds the contiguous, centered buffers of one classification class.
// The slices returned by its accessors are shared with the model and must be treated as read-only.
type Bucket struct {
	class       classification.Class
	positions   []r3.Vector
	colors      []data.Color
	intensities []float64
}

// NewBucket builds a bucket. colors and intensities are optional but, when given, must be as
// long as positions. A bucket cannot be empty.
func NewBucket(class classification.Class, positions []r3.Vector, colors []data.Color, intensities []float64) (*Bucket, error) {
	if len(positions) == 0 {
		return nil, errors.Errorf("bucket %s has no points", class.Key)
	}
	if colors != nil && len(colors) != len(positions) {
		return nil, errors.Errorf("bucket %s has %d colors for %d positions", class.Key, len(colors), len(positions))
	}
	if intensities != nil && len(intensities) != len(positions) {
		return nil, errors.Errorf("bucket %s has %d intensities for %d positions", class.Key, len(intensities), len(positions))
	}
	return &Bucket{
		class:       class,
		positions:   positions,
		colors:      colors,
		intensities: intensities,
	}, nil
}

func (b *Bucket) Class() classification.Class {
	return b.class
}

func (b *Bucket) Count() int {
	return len(b.positions)
}

func (b *Bucket) Positions() []r3.Vector {
	return b.positions
}

// Colors returns the per point colors, nil if no point of the class carried one
func (b *Bucket) Colors() []data.Color {
	return b.colors
}

func (b *Bucket) HasColors() bool {
	return b.colors != nil
}

// Intensities returns the per point normalized intensities, nil if absent
func (b *Bucket) Intensities() []float64 {
	return b.intensities
}

func (b *Bucket) HasIntensities() bool {
	return b.intensities != nil
}

// FlatPositions returns the positions interleaved as x,y,z float32 values
func (b *Bucket) FlatPositions() []float32 {
	out := make([]float32, 0, 3*len(b.positions))
	for _, p := range b.positions {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

// FlatColors interleaves colors as r,g,b float32 values
func FlatColors(colors []data.Color) []float32 {
	out := make([]float32, 0, 3*len(colors))
	for _, c := range colors {
		out = append(out, float32(c.R), float32(c.G), float32(c.B))
	}
	return out
}
