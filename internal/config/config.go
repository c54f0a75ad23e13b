// Package config handles loading of the point cloud tool configuration file.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/pkg/errors"
)

// Config holds every setting that can be given in the configuration file.
type Config struct {
	Ingest    IngestConfig     `yaml:"ingest"`
	Summary   SummaryConfig    `yaml:"summary"`
	Watch     WatchConfig      `yaml:"watch"`
	Logging   LoggingConfig    `yaml:"logging"`
	Gradients []GradientConfig `yaml:"gradients"`
}

// IngestConfig mirrors ingest.Options.
type IngestConfig struct {
	SourceSrid           int     `yaml:"srid"`
	TargetSrid           int     `yaml:"target_srid"`
	ZOffset              float64 `yaml:"z_offset"`
	ColorDepth           string  `yaml:"color_depth"`
	Gradient             string  `yaml:"gradient"`
	GradientSource       string  `yaml:"gradient_source"`
	MaxReportedMalformed int     `yaml:"max_reported_malformed"`
}

type SummaryConfig struct {
	Workers   int  `yaml:"workers"` // 0 means one per CPU
	Recursive bool `yaml:"recursive"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type LoggingConfig struct {
	Verbosity int  `yaml:"verbosity"` // glog -v level
	ToStderr  bool `yaml:"to_stderr"`
}

// GradientConfig declares an extra named gradient. Colors are "#rrggbb" strings.
type GradientConfig struct {
	Name  string       `yaml:"name"`
	Stops []StopConfig `yaml:"stops"`
}

type StopConfig struct {
	At    float64 `yaml:"at"`
	Color string  `yaml:"color"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	opts := ingest.DefaultOptions()
	return &Config{
		Ingest: IngestConfig{
			SourceSrid:           opts.SourceSrid,
			TargetSrid:           opts.TargetSrid,
			ZOffset:              opts.ZOffset,
			ColorDepth:           opts.ColorDepth.String(),
			Gradient:             opts.Gradient,
			GradientSource:       string(opts.GradientSource),
			MaxReportedMalformed: opts.MaxReportedMalformed,
		},
		Summary: SummaryConfig{
			Workers: 0,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Options converts the ingest section, validating its enumerations.
func (c *Config) Options() (*ingest.Options, error) {
	opts := ingest.DefaultOptions()
	opts.SourceSrid = c.Ingest.SourceSrid
	opts.TargetSrid = c.Ingest.TargetSrid
	opts.ZOffset = c.Ingest.ZOffset
	opts.Gradient = c.Ingest.Gradient
	opts.MaxReportedMalformed = c.Ingest.MaxReportedMalformed
	opts.Recursive = c.Summary.Recursive

	if opts.ColorDepth = ingest.ParseColorDepth(c.Ingest.ColorDepth); opts.ColorDepth == "" {
		return nil, errors.Errorf("color_depth should be one of AUTO, 8 or 16, got %q", c.Ingest.ColorDepth)
	}
	if opts.GradientSource = model.ParseGradientSource(c.Ingest.GradientSource); opts.GradientSource == "" {
		return nil, errors.Errorf("gradient_source should be HEIGHT or INTENSITY, got %q", c.Ingest.GradientSource)
	}
	return opts, nil
}

// Registry returns the built-in gradients plus the ones declared in the file. A declared
// gradient replaces a built-in one with the same name.
func (c *Config) Registry() (*gradient.Registry, error) {
	registry := gradient.NewDefaultRegistry()
	for _, gc := range c.Gradients {
		stops, err := gc.stops()
		if err != nil {
			return nil, errors.Wrapf(err, "gradient %q", gc.Name)
		}
		if err := registry.Register(gc.Name, stops); err != nil {
			return nil, errors.Wrapf(err, "gradient %q", gc.Name)
		}
	}
	return registry, nil
}

func (gc GradientConfig) stops() ([]gradient.Stop, error) {
	stops := make([]gradient.Stop, 0, len(gc.Stops))
	for _, sc := range gc.Stops {
		color, err := ParseHexColor(sc.Color)
		if err != nil {
			return nil, err
		}
		stops = append(stops, gradient.Stop{Boundary: sc.At, Color: color})
	}
	return stops, nil
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(value string) (data.Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(s) != 6 {
		return data.Color{}, errors.Errorf("invalid color %q", value)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return data.Color{}, errors.Errorf("invalid color %q", value)
	}
	return data.Hex(uint32(v)), nil
}
