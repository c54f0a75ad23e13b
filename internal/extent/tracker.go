// Package extent computes the centroid and the bounds a point cloud is normalized against.
package extent

import (
	"math"

	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrEmptyDataset is returned when no record is left to compute statistics on
var ErrEmptyDataset = errors.New("empty dataset after filtering")

var errFinalized = errors.New("extent tracker already finalized")

// Extent is the finalized output of a Tracker
type Extent struct {
	Centroid r3.Vector
	Bounds   data.Bounds // in the input frame
	Centered data.Bounds // Bounds with the centroid subtracted
	Count    int         // records that contributed

	HasIntensity bool
	IntensityMin float64
	IntensityMax float64
}

// ZExtent returns the centered min and max height
func (e Extent) ZExtent() (float64, float64) {
	return e.Centered.Min.Z, e.Centered.Max.Z
}

// Tracker accumulates per axis sums and min/max over the records of one ingest.
// Records of the false points class are ignored. It is scratch state: Finalize may be
// called only once.
type Tracker struct {
	sum    r3.Vector
	count  int
	bounds data.Bounds

	hasIntensity bool
	minIntensity float64
	maxIntensity float64

	finalized bool
}

func NewTracker() *Tracker {
	return &Tracker{
		bounds:       data.EmptyBounds(),
		minIntensity: math.MaxFloat64,
		maxIntensity: -math.MaxFloat64,
	}
}

// Add accumulates the record if it is eligible. It returns whether the record was counted.
func (t *Tracker) Add(rec data.Record) bool {
	if t.finalized || !classification.ContributesToExtent(rec.Classification) {
		return false
	}
	t.sum = t.sum.Add(rec.Position)
	t.count++
	t.bounds.Extend(rec.Position)
	if rec.HasIntensity {
		t.hasIntensity = true
		t.minIntensity = math.Min(t.minIntensity, rec.Intensity)
		t.maxIntensity = math.Max(t.maxIntensity, rec.Intensity)
	}
	return true
}

func (t *Tracker) Count() int {
	return t.count
}

// Finalize computes the centroid and the bounds
func (t *Tracker) Finalize() (Extent, error) {
	if t.finalized {
		return Extent{}, errFinalized
	}
	t.finalized = true
	if t.count == 0 {
		return Extent{}, ErrEmptyDataset
	}

	n := float64(t.count)
	centroid := r3.Vector{X: t.sum.X / n, Y: t.sum.Y / n, Z: t.sum.Z / n}
	e := Extent{
		Centroid: centroid,
		Bounds:   t.bounds,
		Centered: t.bounds.Translate(centroid),
		Count:    t.count,
	}
	if t.hasIntensity {
		e.HasIntensity = true
		e.IntensityMin = t.minIntensity
		e.IntensityMax = t.maxIntensity
	}
	return e, nil
}

// Compute runs a tracker over records in one pass
func Compute(records []data.Record) (Extent, error) {
	t := NewTracker()
	for _, rec := range records {
		t.Add(rec)
	}
	return t.Finalize()
}
