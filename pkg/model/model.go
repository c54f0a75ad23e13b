// Package model defines the normalized, classified point cloud handed to rendering and picking
// collaborators.
//
// A PointCloudModel is built once per loaded dataset and is never merged with another one.
// Its geometry is immutable; only the coloring selection (gradient, color mode, gradient source)
// may change after construction and it is guarded for concurrent readers.
package model

import (
	"sort"
	"strings"
	"sync"

	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type ColorMode string
type GradientSource string

const (
	// every point takes the base color of its class
	ColorModeFlat ColorMode = "FLAT"
	// points use their own color, falling back to the class color
	ColorModeRGB ColorMode = "RGB"
	// points are colored through the active gradient
	ColorModeGradient ColorMode = "GRADIENT"
)

const (
	GradientSourceHeight    GradientSource = "HEIGHT"
	GradientSourceIntensity GradientSource = "INTENSITY"
)

func ParseColorMode(value string) ColorMode {
	switch strings.Trim(strings.ToUpper(value), " ") {
	case "FLAT", "CLASSIFICATION":
		return ColorModeFlat
	case "RGB":
		return ColorModeRGB
	case "GRADIENT":
		return ColorModeGradient
	}
	return ""
}

func ParseGradientSource(value string) GradientSource {
	switch strings.Trim(strings.ToUpper(value), " ") {
	case "HEIGHT", "Z", "":
		return GradientSourceHeight
	case "INTENSITY":
		return GradientSourceIntensity
	}
	return ""
}

// Params gathers what the ingest pipeline computed for a model
type Params struct {
	Source   string
	Origin   r3.Vector // file frame origin, zero for text input
	Centroid r3.Vector
	Bounds   data.Bounds // before centering
	Centered data.Bounds // after centering
	Buckets  map[classification.Code]*Bucket

	HasIntensity bool
	IntensityMin float64
	IntensityMax float64

	Gradients      *gradient.Registry // defaults to gradient.Default()
	Gradient       string             // defaults to gradient.DefaultName
	GradientSource GradientSource     // defaults to GradientSourceHeight
}

// PointCloudModel is the aggregate of one ingest
type PointCloudModel struct {
	id       uuid.UUID
	source   string
	origin   r3.Vector
	centroid r3.Vector
	bounds   data.Bounds
	centered data.Bounds
	buckets  map[classification.Code]*Bucket
	total    int

	hasIntensity bool
	intensityMin float64
	intensityMax float64

	gradients      *gradient.Registry
	gradient       gradient.Ramp
	colorMode      ColorMode
	gradientSource GradientSource

	sync.RWMutex
}

// New assembles a model. The initial gradient must be registered and the initial color mode is
// chosen with DefaultColorMode.
func New(p Params) (*PointCloudModel, error) {
	registry := p.Gradients
	if registry == nil {
		registry = gradient.Default()
	}
	name := p.Gradient
	if name == "" {
		name = gradient.DefaultName
	}
	ramp, err := registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	source := p.GradientSource
	if source == "" {
		source = GradientSourceHeight
	}
	if source != GradientSourceHeight && source != GradientSourceIntensity {
		return nil, errors.Errorf("unknown gradient source %q", source)
	}

	buckets := make(map[classification.Code]*Bucket, len(p.Buckets))
	total := 0
	for code, b := range p.Buckets {
		// no bucket means nothing to draw, never an empty one
		if b == nil || b.Count() == 0 {
			continue
		}
		buckets[code] = b
		total += b.Count()
	}

	m := &PointCloudModel{
		id:             uuid.New(),
		source:         p.Source,
		origin:         p.Origin,
		centroid:       p.Centroid,
		bounds:         p.Bounds,
		centered:       p.Centered,
		buckets:        buckets,
		total:          total,
		hasIntensity:   p.HasIntensity,
		intensityMin:   p.IntensityMin,
		intensityMax:   p.IntensityMax,
		gradients:      registry,
		gradient:       ramp,
		gradientSource: source,
	}
	m.colorMode = m.DefaultColorMode()
	return m, nil
}

func (m *PointCloudModel) ID() uuid.UUID {
	return m.id
}

// Source names where the data was loaded from
func (m *PointCloudModel) Source() string {
	return m.source
}

// ClassesPresent returns the codes that have a non-empty bucket, in ascending order
func (m *PointCloudModel) ClassesPresent() []classification.Code {
	codes := make([]classification.Code, 0, len(m.buckets))
	for code := range m.buckets {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Bucket returns the bucket of the given class, if that class has points
func (m *PointCloudModel) Bucket(code classification.Code) (*Bucket, bool) {
	b, ok := m.buckets[code]
	return b, ok
}

func (m *PointCloudModel) TotalPoints() int {
	return m.total
}

// Centroid is the origin subtracted from every point
func (m *PointCloudModel) Centroid() r3.Vector {
	return m.centroid
}

// Bounds returns the extent before centering
func (m *PointCloudModel) Bounds() data.Bounds {
	return m.bounds
}

// CenteredBounds returns the extent after centering
func (m *PointCloudModel) CenteredBounds() data.Bounds {
	return m.centered
}

// ZExtent returns the centered min and max height used as gradient shading bounds
func (m *PointCloudModel) ZExtent() (float64, float64) {
	return m.centered.Min.Z, m.centered.Max.Z
}

// IntensityExtent returns the normalized intensity range, ok is false without intensity data
func (m *PointCloudModel) IntensityExtent() (min, max float64, ok bool) {
	return m.intensityMin, m.intensityMax, m.hasIntensity
}

// Origin is the corner binary inputs are expressed relative to before centering
func (m *PointCloudModel) Origin() r3.Vector {
	return m.origin
}

// WorldPosition converts a model local position, such as a picked point, back to the input frame
func (m *PointCloudModel) WorldPosition(local r3.Vector) r3.Vector {
	return local.Add(m.centroid).Add(m.origin)
}

// ClassesWithColor returns the codes whose bucket carries per point colors, ascending
func (m *PointCloudModel) ClassesWithColor() []classification.Code {
	codes := make([]classification.Code, 0)
	for _, code := range m.ClassesPresent() {
		if m.buckets[code].HasColors() {
			codes = append(codes, code)
		}
	}
	return codes
}

// DefaultColorMode picks the mode a freshly loaded dataset is shown with. A cloud made only of
// unclassified points is shown with its own colors when it has some, through the gradient
// otherwise. Any classified cloud is shown with class colors.
func (m *PointCloudModel) DefaultColorMode() ColorMode {
	if len(m.buckets) != 1 {
		return ColorModeFlat
	}
	b, ok := m.buckets[classification.Unclassified]
	if !ok {
		return ColorModeFlat
	}
	if b.HasColors() {
		return ColorModeRGB
	}
	return ColorModeGradient
}

// Gradient returns the active gradient
func (m *PointCloudModel) Gradient() gradient.Ramp {
	m.RLock()
	defer m.RUnlock()
	return m.gradient
}

// GradientNames lists the gradients SetGradient accepts
func (m *PointCloudModel) GradientNames() []string {
	return m.gradients.Names()
}

// SetGradient selects a registered gradient. Selecting the active one again is a no-op, an
// unknown name leaves the selection unchanged.
func (m *PointCloudModel) SetGradient(name string) error {
	m.Lock()
	defer m.Unlock()
	if gradient.NormalizeName(name) == m.gradient.Name() {
		return nil
	}
	ramp, err := m.gradients.Lookup(name)
	if err != nil {
		return err
	}
	m.gradient = ramp
	return nil
}

func (m *PointCloudModel) ColorMode() ColorMode {
	m.RLock()
	defer m.RUnlock()
	return m.colorMode
}

func (m *PointCloudModel) SetColorMode(mode ColorMode) error {
	switch mode {
	case ColorModeFlat, ColorModeRGB, ColorModeGradient:
	default:
		return errors.Errorf("unknown color mode %q", mode)
	}
	m.Lock()
	m.colorMode = mode
	m.Unlock()
	return nil
}

func (m *PointCloudModel) GradientSource() GradientSource {
	m.RLock()
	defer m.RUnlock()
	return m.gradientSource
}

func (m *PointCloudModel) SetGradientSource(source GradientSource) error {
	switch source {
	case GradientSourceHeight, GradientSourceIntensity:
	default:
		return errors.Errorf("unknown gradient source %q", source)
	}
	m.Lock()
	m.gradientSource = source
	m.Unlock()
	return nil
}

// ResolveColors derives the color of every point of a class for the active color mode.
// It returns nil when the class has no bucket.
func (m *PointCloudModel) ResolveColors(code classification.Code) []data.Color {
	b, ok := m.buckets[code]
	if !ok {
		return nil
	}

	m.RLock()
	mode, ramp, source := m.colorMode, m.gradient, m.gradientSource
	m.RUnlock()

	base := b.class.BaseColor
	out := make([]data.Color, b.Count())
	switch mode {
	case ColorModeRGB:
		if b.HasColors() {
			copy(out, b.colors)
			return out
		}
		fillColor(out, base)
	case ColorModeGradient:
		useIntensity := source == GradientSourceIntensity && b.HasIntensities() && m.hasIntensity
		zMin, zMax := m.ZExtent()
		for i, p := range b.positions {
			var u float64
			if useIntensity {
				u = gradient.Remap(m.intensityMin, m.intensityMax, b.intensities[i])
			} else {
				u = gradient.Remap(zMin, zMax, p.Z)
			}
			out[i] = ramp.ColorAt(u)
		}
	default:
		fillColor(out, base)
	}
	return out
}

func fillColor(out []data.Color, c data.Color) {
	for i := range out {
		out[i] = c
	}
}
