package algorithm_manager

import (
	"github.com/ecopia-map/pointcloud_core/internal/converters"
	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	GetGradientRegistry() *gradient.Registry
}
