package proj4_coordinate_converter

import (
	"math"
	"sync"

	"github.com/ecopia-map/pointcloud_core/internal/converters"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	proj "github.com/xeonx/proj4"
)

const (
	toRadians = math.Pi / 180
	toDegrees = 180 / math.Pi
)

type projection struct {
	proj    *proj.Proj
	latLong bool
	srid    int
}

type proj4CoordinateConverter struct {
	projectionsCache map[int]*projection

	// proj4 contexts are not safe for concurrent use
	sync.Mutex
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		projectionsCache: make(map[int]*projection),
	}
}

// ConvertCoordinateSrid converts a coordinate between EPSG reference systems. Angular systems take
// and return degrees.
func (cc *proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord r3.Vector) (r3.Vector, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	cc.Lock()
	defer cc.Unlock()

	src, err := cc.getProjection(sourceSrid)
	if err != nil {
		return r3.Vector{}, err
	}
	dst, err := cc.getProjection(targetSrid)
	if err != nil {
		return r3.Vector{}, err
	}

	x, y, z := []float64{coord.X}, []float64{coord.Y}, []float64{coord.Z}
	if src.latLong {
		x[0] *= toRadians
		y[0] *= toRadians
	}
	if err := proj.TransformRaw(src.proj, dst.proj, x, y, z); err != nil {
		return r3.Vector{}, errors.Wrapf(err, "converting EPSG:%d to EPSG:%d", sourceSrid, targetSrid)
	}
	if dst.latLong {
		x[0] *= toDegrees
		y[0] *= toDegrees
	}

	return r3.Vector{X: x[0], Y: y[0], Z: z[0]}, nil
}

// Releases all projection objects from memory
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()
	for srid, p := range cc.projectionsCache {
		p.proj.Close()
		delete(cc.projectionsCache, srid)
	}
}

// returns the projection of the given srid, initializing it if not cached yet
func (cc *proj4CoordinateConverter) getProjection(srid int) (*projection, error) {
	if p, ok := cc.projectionsCache[srid]; ok {
		return p, nil
	}
	def, err := Definition(srid)
	if err != nil {
		return nil, err
	}
	pj, err := proj.InitPlus(def)
	if err != nil {
		return nil, errors.Wrapf(err, "initializing EPSG:%d", srid)
	}
	p := &projection{proj: pj, latLong: IsLatLong(def), srid: srid}
	cc.projectionsCache[srid] = p
	return p, nil
}
