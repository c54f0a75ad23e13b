package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColorDepth(t *testing.T) {
	assert.Equal(t, ColorDepthAuto, ParseColorDepth(""))
	assert.Equal(t, ColorDepthAuto, ParseColorDepth(" auto "))
	assert.Equal(t, ColorDepth8, ParseColorDepth("8bit"))
	assert.Equal(t, ColorDepth16, ParseColorDepth("16"))
	assert.Equal(t, ColorDepth(""), ParseColorDepth("24"))
}

func TestColorDepthDivisor(t *testing.T) {
	assert.Equal(t, 255.0, ColorDepthAuto.Divisor(255))
	assert.Equal(t, 65535.0, ColorDepthAuto.Divisor(256))
	assert.Equal(t, 255.0, ColorDepth8.Divisor(65535))
	assert.Equal(t, 65535.0, ColorDepth16.Divisor(10))
}

func TestOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.Reprojects())

	opts.TargetSrid = 4326
	assert.False(t, opts.Reprojects(), "same reference system")
	opts.TargetSrid = 3857
	assert.True(t, opts.Reprojects())

	cp := opts.Copy()
	cp.TargetSrid = 0
	assert.Equal(t, 3857, opts.TargetSrid)
}
