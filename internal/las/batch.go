// Package las exposes LAS files as binary batches.
package las

import (
	"math"

	"github.com/ecopia-map/pointcloud_core/internal/parser"
	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// LAS classification values live in the low five bits of the classification byte
const classificationMask = 0x1f

// Batch reads the point records of an open LAS file
type Batch struct {
	file   *lidario.LasFile
	header parser.Header
}

// Open opens a LAS file for reading. A file whose header cannot be decoded is unreadable.
func Open(filePath string) (*Batch, error) {
	lf, err := lidario.NewLasFile(filePath, "r")
	if err != nil {
		return nil, errors.Wrapf(parser.ErrUnreadableInput, "%s: %v", filePath, err)
	}

	h := lf.Header
	return &Batch{
		file: lf,
		header: parser.Header{
			Scale:  r3.Vector{X: h.XScaleFactor, Y: h.YScaleFactor, Z: h.ZScaleFactor},
			Offset: r3.Vector{X: h.XOffset, Y: h.YOffset, Z: h.ZOffset},
			Min:    r3.Vector{X: h.MinX, Y: h.MinY, Z: h.MinZ},
			Max:    r3.Vector{X: h.MaxX, Y: h.MaxY, Z: h.MaxZ},
		},
	}, nil
}

func (b *Batch) Header() parser.Header {
	return b.header
}

func (b *Batch) Len() int {
	return b.file.Header.NumberPoints
}

// Point decodes the i-th record. lidario hands out scaled coordinates, they are turned back
// into the integer values stored in the file.
func (b *Batch) Point(i int) (parser.RawPoint, error) {
	p, err := b.file.LasPoint(i)
	if err != nil {
		return parser.RawPoint{}, err
	}
	d := p.PointData()

	x, err := unscale(d.X, b.header.Offset.X, b.header.Scale.X)
	if err != nil {
		return parser.RawPoint{}, err
	}
	y, err := unscale(d.Y, b.header.Offset.Y, b.header.Scale.Y)
	if err != nil {
		return parser.RawPoint{}, err
	}
	z, err := unscale(d.Z, b.header.Offset.Z, b.header.Scale.Z)
	if err != nil {
		return parser.RawPoint{}, err
	}

	raw := parser.RawPoint{
		X:                 x,
		Y:                 y,
		Z:                 z,
		Classification:    d.ClassBitField.Value & classificationMask,
		HasClassification: true,
		Intensity:         d.Intensity,
		HasIntensity:      true,
	}
	if rgb := p.RgbData(); rgb != nil {
		raw.R, raw.G, raw.B = rgb.Red, rgb.Green, rgb.Blue
		raw.HasColor = true
	}
	return raw, nil
}

func (b *Batch) Close() error {
	return b.file.Close()
}

func unscale(v, offset, scale float64) (int32, error) {
	raw := math.Round((v - offset) / scale)
	if math.IsNaN(raw) || raw < math.MinInt32 || raw > math.MaxInt32 {
		return 0, errors.Errorf("coordinate %v does not fit the file scale", v)
	}
	return int32(raw), nil
}
