// Package classification holds the fixed table of point classes a cloud is partitioned into.
package classification

import (
	"strings"

	"github.com/ecopia-map/pointcloud_core/pkg/data"
)

// Code is the numeric level of a class. It is also the bucket key.
type Code uint8

const (
	Unclassified Code = iota
	Default
	Ground
	LowVegetation
	MidVegetation
	HighVegetation
	Roofs
	FalsePoints
	ServiceA
	ServiceB
)

// Number of predefined classes
const Count = 10

// Class is one configured label of the registry
type Class struct {
	Code      Code       `json:"code" yaml:"code"`
	Key       string     `json:"key" yaml:"key"`
	Name      string     `json:"name" yaml:"name"`
	BaseColor data.Color `json:"base_color" yaml:"base_color"`
	PointSize float64    `json:"point_size" yaml:"point_size"`
}

var registry = [Count]Class{
	{Code: Unclassified, Key: "unclassified", Name: "Unclassified", BaseColor: data.Hex(0x22223b), PointSize: 0.15},
	{Code: Default, Key: "default", Name: "Default", BaseColor: data.Hex(0x4a4e69), PointSize: 0.15},
	{Code: Ground, Key: "ground", Name: "Ground", BaseColor: data.Hex(0xe07a5f), PointSize: 0.30},
	{Code: LowVegetation, Key: "lowgreen", Name: "Low green", BaseColor: data.Hex(0x2d6a4f), PointSize: 0.15},
	{Code: MidVegetation, Key: "midgreen", Name: "Mid green", BaseColor: data.Hex(0x74c69d), PointSize: 0.15},
	{Code: HighVegetation, Key: "highgreen", Name: "High green", BaseColor: data.Hex(0x95d5b2), PointSize: 0.15},
	{Code: Roofs, Key: "roofs", Name: "Roofs", BaseColor: data.Hex(0xe2062c), PointSize: 0.70},
	{Code: FalsePoints, Key: "fake", Name: "False points", BaseColor: data.Hex(0x7209b7), PointSize: 0.15},
	{Code: ServiceA, Key: "serviceA", Name: "Service A points", BaseColor: data.Hex(0xf2e9e4), PointSize: 0.15},
	{Code: ServiceB, Key: "serviceB", Name: "Service B point", BaseColor: data.Hex(0xf2e9e4), PointSize: 0.15},
}

// All returns a copy of the registry ordered by code
func All() []Class {
	out := make([]Class, Count)
	copy(out, registry[:])
	return out
}

// Lookup returns the class registered for the given raw code
func Lookup(code int) (Class, bool) {
	if code < 0 || code >= Count {
		return Class{}, false
	}
	return registry[code], true
}

// Resolve maps a raw input code to a registered code, falling back to Unclassified
func Resolve(code int) Code {
	if _, ok := Lookup(code); !ok {
		return Unclassified
	}
	return Code(code)
}

// ByKey finds a class by its key, case-insensitively
func ByKey(key string) (Class, bool) {
	for _, c := range registry {
		if strings.EqualFold(c.Key, key) {
			return c, true
		}
	}
	return Class{}, false
}

// ContributesToExtent reports whether records with this raw code take part in the
// centroid and bounds statistics. False points never do.
func ContributesToExtent(code int) bool {
	return code != int(FalsePoints)
}

func (c Code) Class() Class {
	if int(c) >= Count {
		return registry[Unclassified]
	}
	return registry[c]
}

func (c Code) String() string {
	return c.Class().Key
}
