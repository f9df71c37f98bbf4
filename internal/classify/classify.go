// Package classify maps continuous measurements onto the discrete visual
// buckets used by the map: county fill colors per display mode, wildfire
// marker colors, and wildfire marker radii. Every mapping is a step function
// over a monotonic threshold table and never fails; missing input classifies
// as the neutral "no data" color.
package classify

import "github.com/couchcryptid/wildfire-map-viewer/internal/domain"

// NoDataColor is the neutral fill for counties without a measurement.
const NoDataColor = "rgb(194,194,194)"

// Scale is a threshold step function: value v maps to Colors[i] where
// Thresholds[i-1] <= v < Thresholds[i], the first color below the first
// threshold, and the last color at or above the last threshold. A scale may
// carry one fewer color than thresholds+1, in which case the top bands share
// the final color (the historical precipitation table does this).
type Scale struct {
	Thresholds []float64
	Colors     []string
}

// Color classifies a value. Nil means "no data".
func (s Scale) Color(v *float64) string {
	if v == nil {
		return NoDataColor
	}
	return s.Colors[s.bucket(*v)]
}

// Bucket returns the bucket index for a value, clamped to the color list.
func (s Scale) Bucket(v float64) int {
	return s.bucket(v)
}

func (s Scale) bucket(v float64) int {
	i := 0
	for i < len(s.Thresholds) && v >= s.Thresholds[i] {
		i++
	}
	if i >= len(s.Colors) {
		i = len(s.Colors) - 1
	}
	return i
}

// Threshold tables and palettes, carried verbatim from the deployed map.
var (
	Temperature = Scale{
		Thresholds: []float64{32.00, 47.75, 63.50, 79.25},
		Colors:     []string{"#f2f0f7", "#cbc9e2", "#9e9ac8", "#756bb1", "#54278f"},
	}

	Precipitation = Scale{
		Thresholds: []float64{0.98, 1.97, 2.95, 3.94},
		Colors:     []string{"#deebf7", "#9ecae1", "#4292c6", "#08519c"},
	}

	Wind = Scale{
		Thresholds: []float64{6, 12, 18, 24},
		Colors:     []string{"#f0f9f8", "#bae4e3", "#67c6c4", "#2a9c9b", "#00ffff"},
	}

	FuelMoisture = Scale{
		Thresholds: []float64{0, 50, 100, 150, 200},
		Colors:     []string{"#f7fcb9", "#addd8e", "#78c679", "#31a354", "#006837"},
	}

	WildfireColor = Scale{
		Thresholds: []float64{0.25, 10, 100, 300, 1000},
		Colors:     []string{"#fee5d9", "#fcae91", "#fb6a4a", "#de2d26", "#a50f15", "#67000d"},
	}
)

// ForMode returns the county fill scale for a display mode.
func ForMode(mode domain.DisplayMode) Scale {
	switch mode {
	case domain.ModeTemperature:
		return Temperature
	case domain.ModePrecipitation:
		return Precipitation
	case domain.ModeWind:
		return Wind
	case domain.ModeFuelMoisture:
		return FuelMoisture
	default:
		return Scale{Colors: []string{NoDataColor}}
	}
}

// wildfireRadii pairs a minimum size in acres with a marker radius in pixels.
var wildfireRadii = [...]struct {
	minAcres float64
	radius   float64
}{
	{0.25, 3},
	{10, 5},
	{100, 7},
	{300, 9},
	{1000, 11},
}

// WildfireRadius maps a fire size in acres to a marker radius in pixels.
// Fires under a quarter acre get radius 0 and are not rendered. The mapping
// is non-decreasing over the whole domain.
func WildfireRadius(sizeAcres float64) float64 {
	if sizeAcres < 0.25 {
		return 0
	}
	r := wildfireRadii[0].radius
	for _, step := range wildfireRadii {
		if sizeAcres >= step.minAcres {
			r = step.radius
		}
	}
	return r
}
