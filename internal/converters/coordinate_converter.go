package converters

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedSrid is returned for EPSG codes no definition is known for
	ErrUnsupportedSrid = errors.New("unsupported EPSG code")

	// ErrConversionFailed marks an input whose coordinates could not be moved to the target system
	ErrConversionFailed = errors.New("coordinate conversion failed")
)

// CoordinateConverter moves coordinates between EPSG reference systems
type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord r3.Vector) (r3.Vector, error)
	Cleanup()
}

// ElevationCorrector adjusts the height of a point given its planar position
type ElevationCorrector interface {
	CorrectElevation(x, y, z float64) float64
}
