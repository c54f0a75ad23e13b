package ingest

import (
	"strings"

	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
)

type ColorDepth string

const (
	// Detects 8 bit colors stored in 16 bit channels by looking at the largest channel value of the batch
	ColorDepthAuto ColorDepth = "AUTO"
	ColorDepth8    ColorDepth = "8"
	ColorDepth16   ColorDepth = "16"
)

func (e ColorDepth) String() string {
	return string(e)
}

// Divisor returns the value a raw channel is divided by to land in [0,1], given the
// largest channel value observed in the batch
func (e ColorDepth) Divisor(maxChannel uint16) float64 {
	switch e {
	case ColorDepth8:
		return 255
	case ColorDepth16:
		return 65535
	}
	if maxChannel <= 255 {
		return 255
	}
	return 65535
}

func ParseColorDepth(value string) ColorDepth {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	switch normalizedValue {
	case "AUTO", "":
		return ColorDepthAuto
	case "8", "8BIT":
		return ColorDepth8
	case "16", "16BIT":
		return ColorDepth16
	}
	return ""
}

// Contains the options needed to ingest a point cloud
type Options struct {
	Input                string               // Input point file or folder
	SourceSrid           int                  // EPSG code of the input coordinates
	TargetSrid           int                  // EPSG code to reproject to, 0 keeps the input frame
	ZOffset              float64              // Z offset in meters applied to every point before centering
	ColorDepth           ColorDepth           // Color depth of binary inputs
	Gradient             string               // Gradient selected on the produced model
	GradientSource       model.GradientSource // Value mapped through the gradient
	MaxReportedMalformed int                  // Number of dropped records logged individually, the rest are only counted
	FolderProcessing     bool                 // Enables the processing of all point files in folder
	Recursive            bool                 // Recursive lookup of point files in subfolders
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() *Options {
	return &Options{
		SourceSrid:           4326,
		TargetSrid:           0,
		ZOffset:              0,
		ColorDepth:           ColorDepthAuto,
		Gradient:             gradient.DefaultName,
		GradientSource:       model.GradientSourceHeight,
		MaxReportedMalformed: 10,
	}
}

// Reprojects reports whether the input has to be converted to another reference system
func (opt *Options) Reprojects() bool {
	return opt.TargetSrid != 0 && opt.TargetSrid != opt.SourceSrid
}

func (opt *Options) Copy() *Options {
	newOpt := *opt
	return &newOpt
}
