package parser

import (
	"context"
	"math"

	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Header carries the file level metadata of a binary batch
type Header struct {
	Scale  r3.Vector
	Offset r3.Vector
	Min    r3.Vector
	Max    r3.Vector
}

// RawPoint is a fixed size record as stored in a binary file: integer scaled coordinates and
// the optional native color, intensity and classification fields
type RawPoint struct {
	X, Y, Z int32

	Classification    uint8
	HasClassification bool

	R, G, B  uint16
	HasColor bool

	Intensity    uint16
	HasIntensity bool
}

// Batch is a pre-decoded set of binary point records
type Batch interface {
	Header() Header
	Len() int
	// Point returns the i-th record. An error drops that record only.
	Point(i int) (RawPoint, error)
}

// BinaryOptions tunes ParseBinary
type BinaryOptions struct {
	ColorDepth  ingest.ColorDepth
	OnMalformed MalformedFunc
}

// ParseBinary recovers the records of a binary batch. Positions are expressed in the file local
// frame whose origin is the minimum corner of the header: raw * scale + (offset - min).
// Colors are normalized to [0,1], intensities are divided by the 16 bit range.
func ParseBinary(ctx context.Context, batch Batch, opts BinaryOptions) (*Result, error) {
	if batch == nil {
		return nil, errors.Wrap(ErrUnreadableInput, "nil batch")
	}
	header := batch.Header()
	if err := validateHeader(header); err != nil {
		return nil, err
	}
	n := batch.Len()
	if n < 0 {
		return nil, errors.Wrapf(ErrUnreadableInput, "negative point count %d", n)
	}

	shift := header.Offset.Sub(header.Min)
	result := &Result{Records: make([]data.Record, 0, n)}
	colored := make([]int, 0)
	var maxChannel uint16

	for i := 0; i < n; i++ {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "binary parsing interrupted")
			}
		}

		p, err := batch.Point(i)
		if err != nil {
			result.drop(opts.OnMalformed, i, err.Error())
			continue
		}

		class := int(classification.Unclassified)
		if p.HasClassification {
			class = int(p.Classification)
		}
		rec := data.NewRecord(class,
			float64(p.X)*header.Scale.X+shift.X,
			float64(p.Y)*header.Scale.Y+shift.Y,
			float64(p.Z)*header.Scale.Z+shift.Z,
		)
		if p.HasColor {
			// raw channels for now, normalized once the whole batch has been seen
			rec.Color = data.RGB(float64(p.R), float64(p.G), float64(p.B))
			rec.HasColor = true
			maxChannel = max16(maxChannel, p.R, p.G, p.B)
		}
		if p.HasIntensity {
			rec = rec.WithIntensity(float64(p.Intensity) / math.MaxUint16)
		}
		if !rec.IsFinite() {
			result.drop(opts.OnMalformed, i, "non-finite position")
			continue
		}

		if rec.HasColor {
			colored = append(colored, len(result.Records))
		}
		result.accept(rec)
	}

	divisor := opts.ColorDepth.Divisor(maxChannel)
	for _, idx := range colored {
		c := result.Records[idx].Color
		result.Records[idx].Color = data.RGB(c.R/divisor, c.G/divisor, c.B/divisor).Clamp()
	}

	return result, nil
}

func validateHeader(h Header) error {
	for _, v := range []float64{h.Scale.X, h.Scale.Y, h.Scale.Z} {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrUnreadableInput, "invalid scale factor %v", v)
		}
	}
	for _, v := range []float64{h.Offset.X, h.Offset.Y, h.Offset.Z, h.Min.X, h.Min.Y, h.Min.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrUnreadableInput, "invalid header offset or minimum %v", v)
		}
	}
	return nil
}

func max16(m uint16, values ...uint16) uint16 {
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// MemoryBatch is a Batch backed by a slice, used for already decoded data
type MemoryBatch struct {
	Head   Header
	Points []RawPoint
}

func (b *MemoryBatch) Header() Header {
	return b.Head
}

func (b *MemoryBatch) Len() int {
	return len(b.Points)
}

func (b *MemoryBatch) Point(i int) (RawPoint, error) {
	if i < 0 || i >= len(b.Points) {
		return RawPoint{}, errors.Errorf("point index %d out of range [0,%d)", i, len(b.Points))
	}
	return b.Points[i], nil
}
