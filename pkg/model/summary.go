package model

import (
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/golang/geo/r3"
)

// ClassSummary describes one bucket
type ClassSummary struct {
	Code      int    `json:"code"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
	HasColors bool   `json:"has_colors"`
}

// Summary is a serializable digest of a model
type Summary struct {
	ID             string         `json:"id"`
	Source         string         `json:"source"`
	Points         int            `json:"points"`
	Centroid       r3.Vector      `json:"centroid"`
	Bounds         data.Bounds    `json:"bounds"`
	CenteredBounds data.Bounds    `json:"centered_bounds"`
	ZMin           float64        `json:"z_min"`
	ZMax           float64        `json:"z_max"`
	Classes        []ClassSummary `json:"classes"`
	ColorMode      ColorMode      `json:"color_mode"`
	Gradient       string         `json:"gradient"`
	GradientSource GradientSource `json:"gradient_source"`
}

func (m *PointCloudModel) Summary() Summary {
	zMin, zMax := m.ZExtent()
	s := Summary{
		ID:             m.id.String(),
		Source:         m.source,
		Points:         m.total,
		Centroid:       m.centroid,
		Bounds:         m.bounds,
		CenteredBounds: m.centered,
		ZMin:           zMin,
		ZMax:           zMax,
		ColorMode:      m.ColorMode(),
		Gradient:       m.Gradient().Name(),
		GradientSource: m.GradientSource(),
	}
	for _, code := range m.ClassesPresent() {
		b := m.buckets[code]
		s.Classes = append(s.Classes, ClassSummary{
			Code:      int(code),
			Key:       b.class.Key,
			Name:      b.class.Name,
			Points:    b.Count(),
			HasColors: b.HasColors(),
		})
	}
	return s
}
