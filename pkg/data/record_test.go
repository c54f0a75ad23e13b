package data

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFinite(t *testing.T) {
	records := []Record{
		NewRecord(2, 1, 2, 3),
		NewRecord(2, math.NaN(), 0, 0),
		NewColoredRecord(1, 4, 5, 6, RGB(0.1, 0.2, 0.3)),
		NewRecord(0, 0, math.Inf(1), 0),
		NewColoredRecord(1, 7, 8, 9, RGB(math.NaN(), 0, 0)),
		NewRecord(3, 0, 0, 1).WithIntensity(math.Inf(-1)),
		NewRecord(3, 10, 11, 12).WithIntensity(0.5),
	}
	original := make([]Record, len(records))
	copy(original, records)

	filtered := FilterFinite(records)

	require.Len(t, filtered, 3)
	assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 3}, filtered[0].Position)
	assert.Equal(t, r3.Vector{X: 4, Y: 5, Z: 6}, filtered[1].Position)
	assert.Equal(t, r3.Vector{X: 10, Y: 11, Z: 12}, filtered[2].Position)
	// input untouched
	assert.Equal(t, len(original), len(records))
	assert.True(t, math.IsNaN(records[1].Position.X))
}

func TestFilterFiniteKeepsEveryAdjacentValidRecord(t *testing.T) {
	// consecutive invalid entries must not make the filter skip a valid neighbour
	records := []Record{
		NewRecord(0, math.NaN(), 0, 0),
		NewRecord(0, math.NaN(), 0, 0),
		NewRecord(0, 1, 1, 1),
		NewRecord(0, math.NaN(), 0, 0),
		NewRecord(0, 2, 2, 2),
	}
	filtered := FilterFinite(records)
	require.Len(t, filtered, 2)
	assert.Equal(t, 1.0, filtered[0].Position.X)
	assert.Equal(t, 2.0, filtered[1].Position.X)
}

func TestFilterFiniteEmpty(t *testing.T) {
	assert.Empty(t, FilterFinite(nil))
}

func TestRecordIgnoresUnsetColor(t *testing.T) {
	r := NewRecord(0, 1, 2, 3)
	r.Color = RGB(math.NaN(), 0, 0)
	assert.True(t, r.IsFinite(), "color is not carried, so it is not checked")
}
