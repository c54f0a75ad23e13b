package data

import "fmt"

// Color is an RGB triple with components in [0,1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// RGB builds a color from components already in [0,1]
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Hex builds a color from a 0xRRGGBB value
func Hex(v uint32) Color {
	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

// Lerp linearly interpolates between a and b. t is not clamped.
func Lerp(a, b Color, t float64) Color {
	return Color{
		R: a.R + t*(b.R-a.R),
		G: a.G + t*(b.G-a.G),
		B: a.B + t*(b.B-a.B),
	}
}

// Clamp returns the color with every component limited to [0,1]
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

func (c Color) IsFinite() bool {
	return isFinite(c.R) && isFinite(c.G) && isFinite(c.B)
}

// HexString formats the color as #rrggbb
func (c Color) HexString() string {
	cc := c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x", to8(cc.R), to8(cc.G), to8(cc.B))
}

func to8(v float64) uint8 {
	return uint8(v*255 + 0.5)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
