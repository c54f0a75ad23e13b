// Package gradient builds and validates the color ramps used for height or intensity coloring.
//
// A gradient is an ordered table of stops covering [0,1]. The first stop sits at 0, the last
// at 1, and boundaries strictly increase in between, so a lookup never falls into a gap.
package gradient

import (
	"math"
	"sort"

	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/pkg/errors"
)

// MaxStops is the size of the uniform arrays a shading collaborator declares for a gradient.
const MaxStops = 17

// ErrInvalidGradient is returned when the stops do not cover [0,1] in ascending order
var ErrInvalidGradient = errors.New("invalid gradient")

// Stop is one (boundary, color) pair of a ramp
type Stop struct {
	Boundary float64    `json:"boundary" yaml:"boundary"`
	Color    data.Color `json:"color" yaml:"color"`
}

// Ramp is an immutable, validated gradient
type Ramp struct {
	name  string
	stops []Stop
}

// New validates the stops and builds a Ramp owning its own copy of them
func New(name string, stops []Stop) (Ramp, error) {
	if err := validate(stops); err != nil {
		return Ramp{}, errors.Wrapf(err, "gradient %q", name)
	}
	owned := make([]Stop, len(stops))
	copy(owned, stops)
	return Ramp{name: name, stops: owned}, nil
}

func validate(stops []Stop) error {
	if len(stops) < 2 {
		return errors.Wrapf(ErrInvalidGradient, "need at least 2 stops, got %d", len(stops))
	}
	if len(stops) > MaxStops {
		return errors.Wrapf(ErrInvalidGradient, "at most %d stops allowed, got %d", MaxStops, len(stops))
	}
	if stops[0].Boundary != 0 {
		return errors.Wrapf(ErrInvalidGradient, "first boundary must be 0, got %v", stops[0].Boundary)
	}
	if last := stops[len(stops)-1].Boundary; last != 1 {
		return errors.Wrapf(ErrInvalidGradient, "last boundary must be 1, got %v", last)
	}
	for i, s := range stops {
		if !s.Color.IsFinite() {
			return errors.Wrapf(ErrInvalidGradient, "stop %d has a non-finite color", i)
		}
		if i > 0 && !(s.Boundary > stops[i-1].Boundary) {
			return errors.Wrapf(ErrInvalidGradient, "boundaries must strictly increase (stop %d: %v after %v)",
				i, s.Boundary, stops[i-1].Boundary)
		}
	}
	return nil
}

func (r Ramp) Name() string {
	return r.name
}

// Stops returns a copy of the stop table
func (r Ramp) Stops() []Stop {
	out := make([]Stop, len(r.stops))
	copy(out, r.stops)
	return out
}

func (r Ramp) Len() int {
	return len(r.stops)
}

// IsZero reports whether the ramp was never built through New
func (r Ramp) IsZero() bool {
	return len(r.stops) == 0
}

// Equal reports whether both ramps carry the same name and the same stops in the same order
func (r Ramp) Equal(o Ramp) bool {
	if r.name != o.name || len(r.stops) != len(o.stops) {
		return false
	}
	for i := range r.stops {
		if r.stops[i] != o.stops[i] {
			return false
		}
	}
	return true
}

// ColorAt returns the color of the ramp at the normalized value u. The color is the linear
// interpolation between the stops bracketing u; values outside [0,1] take the nearest end color.
func (r Ramp) ColorAt(u float64) data.Color {
	if len(r.stops) == 0 {
		return data.Color{}
	}
	first, last := r.stops[0], r.stops[len(r.stops)-1]
	if math.IsNaN(u) || u <= first.Boundary {
		return first.Color
	}
	if u >= last.Boundary {
		return last.Color
	}

	// index of the first stop whose boundary is above u, so stops[idx-1].Boundary <= u
	idx := sort.Search(len(r.stops), func(i int) bool {
		return r.stops[i].Boundary > u
	})
	lo, hi := r.stops[idx-1], r.stops[idx]
	t := (u - lo.Boundary) / (hi.Boundary - lo.Boundary)
	return data.Lerp(lo.Color, hi.Color, t)
}

// Uniforms returns the stop table as the flat float32 arrays a shader consumes
func (r Ramp) Uniforms() (bounds []float32, colors [][3]float32) {
	bounds = make([]float32, len(r.stops))
	colors = make([][3]float32, len(r.stops))
	for i, st := range r.stops {
		bounds[i] = float32(st.Boundary)
		colors[i] = [3]float32{float32(st.Color.R), float32(st.Color.G), float32(st.Color.B)}
	}
	return bounds, colors
}

// Remap normalizes v into [0,1] relative to [min,max]. A degenerate range maps to 0.
func Remap(min, max, v float64) float64 {
	if max <= min {
		return 0
	}
	u := (v - min) / (max - min)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
