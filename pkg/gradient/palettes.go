package gradient

import "github.com/ecopia-map/pointcloud_core/pkg/data"

const (
	Rainbow     = "RAINBOW"
	Spectral    = "SPECTRAL"
	Plasma      = "PLASMA"
	YellowGreen = "YELLOW_GREEN"
	Viridis     = "VIRIDIS"
	Inferno     = "INFERNO"
	Grayscale   = "GRAYSCALE"
)

// DefaultName is the gradient selected by a freshly built model
const DefaultName = Rainbow

type palette struct {
	name  string
	stops []Stop
}

func rgb255(r, g, b float64) data.Color {
	return data.RGB(r/255, g/255, b/255)
}

// evenly spreads colors over [0,1]
func evenStops(colors ...data.Color) []Stop {
	stops := make([]Stop, len(colors))
	last := float64(len(colors) - 1)
	for i, c := range colors {
		stops[i] = Stop{Boundary: float64(i) / last, Color: c}
	}
	// pin the last boundary, i/last may round below 1
	stops[len(stops)-1].Boundary = 1
	return stops
}

var builtinPalettes = []palette{
	{Rainbow, evenStops(
		data.RGB(0.278, 0, 0.714),
		data.RGB(0, 0, 1),
		data.RGB(0, 1, 1),
		data.RGB(0, 1, 0),
		data.RGB(1, 1, 0),
		data.RGB(1, 0.64, 0),
		data.RGB(1, 0, 0),
	)},
	{Spectral, evenStops(
		rgb255(158, 1, 66),
		rgb255(213, 62, 79),
		rgb255(244, 109, 67),
		rgb255(253, 174, 97),
		rgb255(254, 224, 139),
		rgb255(255, 255, 191),
		rgb255(230, 245, 152),
		rgb255(171, 221, 164),
		rgb255(102, 194, 165),
		rgb255(50, 136, 189),
		rgb255(94, 79, 162),
	)},
	{Plasma, evenStops(
		data.RGB(0.241, 0.015, 0.610),
		data.RGB(0.387, 0.001, 0.654),
		data.RGB(0.524, 0.025, 0.653),
		data.RGB(0.651, 0.125, 0.596),
		data.RGB(0.752, 0.227, 0.513),
		data.RGB(0.837, 0.329, 0.431),
		data.RGB(0.907, 0.435, 0.353),
		data.RGB(0.963, 0.554, 0.272),
		data.RGB(0.992, 0.681, 0.195),
		data.RGB(0.987, 0.822, 0.144),
		data.RGB(0.940, 0.975, 0.131),
	)},
	{YellowGreen, evenStops(
		data.RGB(0.1647, 0.2824, 0.3451),
		data.RGB(0.1338, 0.3555, 0.4227),
		data.RGB(0.0610, 0.4319, 0.4864),
		data.RGB(0.0000, 0.5099, 0.5319),
		data.RGB(0.0000, 0.5881, 0.5569),
		data.RGB(0.1370, 0.6650, 0.5614),
		data.RGB(0.2906, 0.7395, 0.5477),
		data.RGB(0.4453, 0.8099, 0.5201),
		data.RGB(0.6102, 0.8748, 0.4850),
		data.RGB(0.7883, 0.9323, 0.4514),
		data.RGB(0.9804, 0.9804, 0.4314),
	)},
	{Viridis, evenStops(
		data.RGB(0.267, 0.004, 0.329),
		data.RGB(0.283, 0.141, 0.458),
		data.RGB(0.254, 0.265, 0.530),
		data.RGB(0.207, 0.372, 0.553),
		data.RGB(0.164, 0.471, 0.558),
		data.RGB(0.128, 0.567, 0.551),
		data.RGB(0.135, 0.659, 0.518),
		data.RGB(0.267, 0.749, 0.441),
		data.RGB(0.478, 0.821, 0.318),
		data.RGB(0.741, 0.873, 0.150),
		data.RGB(0.993, 0.906, 0.144),
	)},
	{Inferno, evenStops(
		data.RGB(0.077, 0.042, 0.206),
		data.RGB(0.225, 0.036, 0.388),
		data.RGB(0.373, 0.074, 0.432),
		data.RGB(0.522, 0.128, 0.420),
		data.RGB(0.665, 0.182, 0.370),
		data.RGB(0.797, 0.255, 0.287),
		data.RGB(0.902, 0.364, 0.184),
		data.RGB(0.969, 0.516, 0.063),
		data.RGB(0.988, 0.683, 0.072),
		data.RGB(0.961, 0.859, 0.298),
		data.RGB(0.988, 0.998, 0.645),
	)},
	{Grayscale, evenStops(
		data.RGB(0, 0, 0),
		data.RGB(1, 1, 1),
	)},
}
