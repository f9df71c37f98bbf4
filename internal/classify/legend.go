package classify

import (
	"fmt"

	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
)

// LegendEntry is one bucket/color row of the active legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Fixed range labels for the temperature and precipitation legends. These
// match the deployed legend text exactly rather than being derived from the
// threshold tables.
var (
	temperatureLegend = []LegendEntry{
		{Label: "32.00 to 47.75 °F", Color: "#f2f0f7"},
		{Label: "47.75 to 63.50 °F", Color: "#cbc9e2"},
		{Label: "63.50 to 79.25 °F", Color: "#9e9ac8"},
		{Label: "79.25 to 95.00 °F", Color: "#756bb1"},
	}

	precipitationLegend = []LegendEntry{
		{Label: "0.00 to 0.98 inches", Color: "#deebf7"},
		{Label: "0.98 to 1.97 inches", Color: "#9ecae1"},
		{Label: "1.97 to 2.95 inches", Color: "#4292c6"},
		{Label: ">2.97 inches", Color: "#08519c"},
	}
)

// LegendFor returns the bucket/color rows for a display mode. Temperature and
// precipitation use fixed literal range strings; wind and fuel moisture are
// generated from the scale's threshold/color pairs plus a unit suffix.
func LegendFor(mode domain.DisplayMode) []LegendEntry {
	switch mode {
	case domain.ModeTemperature:
		return temperatureLegend
	case domain.ModePrecipitation:
		return precipitationLegend
	case domain.ModeWind:
		return generatedLegend(Wind, "mph")
	case domain.ModeFuelMoisture:
		return generatedLegend(FuelMoisture, "tons/acre")
	default:
		return nil
	}
}

// generatedLegend derives one row per color from a scale's thresholds. When
// the first threshold is zero there is no sub-zero band, so rows pair with
// thresholds directly; otherwise the first row is the below-first-threshold
// bucket labeled "0".
func generatedLegend(s Scale, unit string) []LegendEntry {
	entries := make([]LegendEntry, 0, len(s.Colors))
	zeroFirst := len(s.Thresholds) > 0 && s.Thresholds[0] == 0
	for i, color := range s.Colors {
		ti := i
		if !zeroFirst {
			ti = i - 1
		}
		if ti < 0 {
			entries = append(entries, LegendEntry{Label: "0", Color: color})
			continue
		}
		if ti >= len(s.Thresholds) {
			ti = len(s.Thresholds) - 1
		}
		entries = append(entries, LegendEntry{
			Label: fmt.Sprintf("%.1f+ %s", s.Thresholds[ti], unit),
			Color: color,
		})
	}
	return entries
}
