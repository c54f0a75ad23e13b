package converters

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// IdentityConverter leaves coordinates untouched. It only accepts conversions between
// identical reference systems.
type IdentityConverter struct{}

func NewIdentityConverter() CoordinateConverter {
	return &IdentityConverter{}
}

func (c *IdentityConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord r3.Vector) (r3.Vector, error) {
	if sourceSrid != targetSrid {
		return r3.Vector{}, errors.Errorf("identity converter cannot convert EPSG:%d to EPSG:%d", sourceSrid, targetSrid)
	}
	return coord, nil
}

func (c *IdentityConverter) Cleanup() {}
