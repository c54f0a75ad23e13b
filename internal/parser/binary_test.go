package parser

import (
	"context"
	"math"
	"testing"

	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header() Header {
	return Header{
		Scale:  r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
		Offset: r3.Vector{X: 1000, Y: 2000, Z: 0},
		Min:    r3.Vector{X: 1000, Y: 2000, Z: 10},
		Max:    r3.Vector{X: 1010, Y: 2010, Z: 20},
	}
}

type failingBatch struct {
	MemoryBatch
	failAt int
}

func (b *failingBatch) Point(i int) (RawPoint, error) {
	if i == b.failAt {
		return RawPoint{}, errors.New("truncated record")
	}
	return b.MemoryBatch.Point(i)
}

func TestParseBinaryPositions(t *testing.T) {
	batch := &MemoryBatch{Head: header(), Points: []RawPoint{
		{X: 100, Y: 200, Z: 1500, Classification: 2, HasClassification: true},
		{X: 0, Y: 0, Z: 1000},
	}}
	res, err := ParseBinary(context.Background(), batch, BinaryOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	first := res.Records[0]
	assert.Equal(t, 2, first.Classification)
	assert.InDelta(t, 1, first.Position.X, 1e-9)
	assert.InDelta(t, 2, first.Position.Y, 1e-9)
	assert.InDelta(t, 5, first.Position.Z, 1e-9)
	assert.False(t, first.HasColor)

	assert.Equal(t, 0, res.Records[1].Classification, "no classification field")
	assert.InDelta(t, 0, res.Records[1].Position.Z, 1e-9)
}

func TestParseBinaryColorDepth(t *testing.T) {
	eightBit := []RawPoint{{R: 255, G: 0, B: 51, HasColor: true}, {R: 0, G: 255, B: 0, HasColor: true}}
	sixteenBit := []RawPoint{{R: 65535, G: 0, B: 13107, HasColor: true}, {R: 0, G: 256, B: 0, HasColor: true}}

	tests := []struct {
		name   string
		depth  ingest.ColorDepth
		points []RawPoint
		wantR  float64
		wantB  float64
	}{
		{"auto detects 8 bit data", ingest.ColorDepthAuto, eightBit, 1, 0.2},
		{"auto keeps 16 bit data", ingest.ColorDepthAuto, sixteenBit, 1, 0.2},
		{"forced 16 bit", ingest.ColorDepth16, eightBit, 255.0 / 65535, 51.0 / 65535},
		{"forced 8 bit clamps", ingest.ColorDepth8, sixteenBit, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := &MemoryBatch{Head: header(), Points: tt.points}
			res, err := ParseBinary(context.Background(), batch, BinaryOptions{ColorDepth: tt.depth})
			require.NoError(t, err)
			require.Len(t, res.Records, 2)
			c := res.Records[0].Color
			assert.True(t, res.Records[0].HasColor)
			assert.InDelta(t, tt.wantR, c.R, 1e-9)
			assert.InDelta(t, 0, c.G, 1e-9)
			assert.InDelta(t, tt.wantB, c.B, 1e-9)
		})
	}
}

func TestParseBinaryIntensity(t *testing.T) {
	batch := &MemoryBatch{Head: header(), Points: []RawPoint{{Intensity: math.MaxUint16, HasIntensity: true}, {}}}
	res, err := ParseBinary(context.Background(), batch, BinaryOptions{})
	require.NoError(t, err)
	assert.True(t, res.Records[0].HasIntensity)
	assert.Equal(t, 1.0, res.Records[0].Intensity)
	assert.False(t, res.Records[1].HasIntensity)
}

func TestParseBinaryDropsUnreadablePoints(t *testing.T) {
	batch := &failingBatch{
		MemoryBatch: MemoryBatch{Head: header(), Points: []RawPoint{{X: 1}, {X: 2}, {X: 3}}},
		failAt:      1,
	}
	var malformed []MalformedRecordError
	res, err := ParseBinary(context.Background(), batch, BinaryOptions{
		OnMalformed: func(e MalformedRecordError) { malformed = append(malformed, e) },
	})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, Stats{Accepted: 2, Dropped: 1}, res.Stats)
	require.Len(t, malformed, 1)
	assert.Equal(t, 1, malformed[0].Index)
}

func TestParseBinaryUnreadableHeader(t *testing.T) {
	tests := map[string]func(*Header){
		"zero scale":  func(h *Header) { h.Scale.Y = 0 },
		"nan scale":   func(h *Header) { h.Scale.Z = math.NaN() },
		"inf offset":  func(h *Header) { h.Offset.X = math.Inf(1) },
		"nan minimum": func(h *Header) { h.Min.Z = math.NaN() },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			h := header()
			mutate(&h)
			_, err := ParseBinary(context.Background(), &MemoryBatch{Head: h, Points: []RawPoint{{}}}, BinaryOptions{})
			assert.True(t, errors.Is(err, ErrUnreadableInput))
		})
	}

	_, err := ParseBinary(context.Background(), nil, BinaryOptions{})
	assert.True(t, errors.Is(err, ErrUnreadableInput))
}

func TestParseBinaryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseBinary(ctx, &MemoryBatch{Head: header(), Points: []RawPoint{{}}}, BinaryOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
}
