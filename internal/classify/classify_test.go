package classify

import (
	"testing"

	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleColorStepFunction(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	t.Run("temperature buckets", func(t *testing.T) {
		assert.Equal(t, "#f2f0f7", Temperature.Color(f(20)))
		assert.Equal(t, "#cbc9e2", Temperature.Color(f(32)))
		assert.Equal(t, "#cbc9e2", Temperature.Color(f(47.74)))
		assert.Equal(t, "#9e9ac8", Temperature.Color(f(47.75)))
		assert.Equal(t, "#54278f", Temperature.Color(f(100)))
	})

	t.Run("precipitation top bands share the last color", func(t *testing.T) {
		assert.Equal(t, "#deebf7", Precipitation.Color(f(0)))
		assert.Equal(t, "#08519c", Precipitation.Color(f(3.0)))
		assert.Equal(t, "#08519c", Precipitation.Color(f(50)))
	})

	t.Run("wildfire color buckets", func(t *testing.T) {
		assert.Equal(t, "#fee5d9", WildfireColor.Color(f(0.1)))
		assert.Equal(t, "#fcae91", WildfireColor.Color(f(0.25)))
		assert.Equal(t, "#67000d", WildfireColor.Color(f(1000)))
	})

	t.Run("nil is no data", func(t *testing.T) {
		assert.Equal(t, NoDataColor, Temperature.Color(nil))
		assert.Equal(t, NoDataColor, FuelMoisture.Color(nil))
	})
}

func TestClassificationIsMonotonic(t *testing.T) {
	scales := map[string]Scale{
		"temperature":   Temperature,
		"precipitation": Precipitation,
		"wind":          Wind,
		"fuel":          FuelMoisture,
		"wildfire":      WildfireColor,
	}

	for name, s := range scales {
		t.Run(name, func(t *testing.T) {
			prev := -1
			for v := -50.0; v <= 2000.0; v += 0.5 {
				b := s.Bucket(v)
				require.GreaterOrEqual(t, b, prev, "bucket decreased at %v", v)
				require.Less(t, b, len(s.Colors))
				prev = b
			}
		})
	}
}

func TestForModeCoversAllModes(t *testing.T) {
	for _, mode := range []domain.DisplayMode{
		domain.ModeTemperature, domain.ModePrecipitation,
		domain.ModeWind, domain.ModeFuelMoisture,
	} {
		s := ForMode(mode)
		assert.NotEmpty(t, s.Thresholds, "mode %s", mode)
		assert.NotEmpty(t, s.Colors, "mode %s", mode)
	}
}

func TestWildfireRadius(t *testing.T) {
	tests := []struct {
		size float64
		want float64
	}{
		{0, 0},
		{0.1, 0},
		{0.25, 3},
		{5, 3},
		{10, 5},
		{99, 5},
		{100, 7},
		{299, 7},
		{300, 9},
		{999, 9},
		{1000, 11},
		{250000, 11},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WildfireRadius(tt.size), "size %v", tt.size)
	}
}

func TestWildfireRadiusNonDecreasing(t *testing.T) {
	prev := 0.0
	for size := 0.0; size <= 5000; size += 0.05 {
		r := WildfireRadius(size)
		require.GreaterOrEqual(t, r, prev, "radius decreased at %v", size)
		prev = r
	}
}

func TestLegendFor(t *testing.T) {
	t.Run("temperature uses fixed range strings", func(t *testing.T) {
		entries := LegendFor(domain.ModeTemperature)
		require.Len(t, entries, 4)
		assert.Equal(t, "32.00 to 47.75 °F", entries[0].Label)
		assert.Equal(t, "79.25 to 95.00 °F", entries[3].Label)
	})

	t.Run("precipitation uses fixed range strings", func(t *testing.T) {
		entries := LegendFor(domain.ModePrecipitation)
		require.Len(t, entries, 4)
		assert.Equal(t, "0.00 to 0.98 inches", entries[0].Label)
		assert.Equal(t, ">2.97 inches", entries[3].Label)
	})

	t.Run("wind is generated from thresholds", func(t *testing.T) {
		entries := LegendFor(domain.ModeWind)
		require.Len(t, entries, 5)
		assert.Equal(t, "0", entries[0].Label)
		assert.Equal(t, "6.0+ mph", entries[1].Label)
		assert.Equal(t, "24.0+ mph", entries[4].Label)
		assert.Equal(t, Wind.Colors[0], entries[0].Color)
	})

	t.Run("fuel moisture is generated with its unit", func(t *testing.T) {
		entries := LegendFor(domain.ModeFuelMoisture)
		require.Len(t, entries, 5)
		assert.Equal(t, "0.0+ tons/acre", entries[0].Label)
		assert.Equal(t, "200.0+ tons/acre", entries[4].Label)
	})
}
