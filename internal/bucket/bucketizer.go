// Package bucket partitions centered records into per class buffers.
package bucket

import (
	"context"

	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const checkInterval = 4096

// per class tally of the first pass
type classTally struct {
	count        int
	hasColor     bool
	hasIntensity bool
}

// Bucketize groups records by class and subtracts the centroid from every position.
// Unknown codes land in the unclassified bucket and classes without records get no bucket.
// Every record ends up in exactly one bucket. Within a class holding some colored records,
// records without a color take the class base color so the buffers stay aligned; missing
// intensities are set to 0 the same way.
func Bucketize(ctx context.Context, records []data.Record, centroid r3.Vector) (map[classification.Code]*model.Bucket, error) {
	// pass 1: size every class
	var tally [classification.Count]classTally
	for _, rec := range records {
		t := &tally[classification.Resolve(rec.Classification)]
		t.count++
		t.hasColor = t.hasColor || rec.HasColor
		t.hasIntensity = t.hasIntensity || rec.HasIntensity
	}

	type buffers struct {
		positions   []r3.Vector
		colors      []data.Color
		intensities []float64
	}
	var buf [classification.Count]*buffers
	for code, t := range tally {
		if t.count == 0 {
			continue
		}
		b := &buffers{positions: make([]r3.Vector, 0, t.count)}
		if t.hasColor {
			b.colors = make([]data.Color, 0, t.count)
		}
		if t.hasIntensity {
			b.intensities = make([]float64, 0, t.count)
		}
		buf[code] = b
	}

	// pass 2: center and append
	for i, rec := range records {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "bucketizing interrupted")
			}
		}
		code := classification.Resolve(rec.Classification)
		b := buf[code]
		b.positions = append(b.positions, rec.Position.Sub(centroid))
		if b.colors != nil {
			c := code.Class().BaseColor
			if rec.HasColor {
				c = rec.Color
			}
			b.colors = append(b.colors, c)
		}
		if b.intensities != nil {
			var v float64
			if rec.HasIntensity {
				v = rec.Intensity
			}
			b.intensities = append(b.intensities, v)
		}
	}

	out := make(map[classification.Code]*model.Bucket)
	for code, b := range buf {
		if b == nil {
			continue
		}
		c := classification.Code(code)
		bucket, err := model.NewBucket(c.Class(), b.positions, b.colors, b.intensities)
		if err != nil {
			return nil, err
		}
		out[c] = bucket
	}
	return out, nil
}
