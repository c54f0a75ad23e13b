package std_algorithm_manager

import (
	"github.com/ecopia-map/pointcloud_core/internal/converters"
	"github.com/ecopia-map/pointcloud_core/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/pointcloud_core/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/pkg/algorithm_manager"
	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
	"github.com/pkg/errors"
)

type StandardAlgorithmManager struct {
	options             *ingest.Options
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
	gradients           *gradient.Registry
}

// NewAlgorithmManager picks the proj4 converter only when the options ask for a reprojection.
// Both EPSG codes must then be known. A nil registry selects gradient.Default().
func NewAlgorithmManager(opts *ingest.Options, gradients *gradient.Registry) (algorithm_manager.AlgorithmManager, error) {
	if gradients == nil {
		gradients = gradient.Default()
	}

	var coordinateConverter converters.CoordinateConverter
	if opts.Reprojects() {
		if _, err := proj4_coordinate_converter.Definition(opts.SourceSrid); err != nil {
			return nil, errors.Wrap(err, "source srid")
		}
		if _, err := proj4_coordinate_converter.Definition(opts.TargetSrid); err != nil {
			return nil, errors.Wrap(err, "target srid")
		}
		coordinateConverter = proj4_coordinate_converter.NewProj4CoordinateConverter()
	} else {
		coordinateConverter = converters.NewIdentityConverter()
	}

	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: coordinateConverter,
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
		gradients:           gradients,
	}, nil
}

func (sam *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return sam.elevationCorrector
}

func (sam *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return sam.coordinateConverter
}

func (sam *StandardAlgorithmManager) GetGradientRegistry() *gradient.Registry {
	return sam.gradients
}
