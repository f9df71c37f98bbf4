package domain

import "fmt"

// DisplayMode selects which measurement drives the county color encoding.
type DisplayMode string

const (
	ModeTemperature   DisplayMode = "temperature"
	ModePrecipitation DisplayMode = "precipitation"
	ModeWind          DisplayMode = "wind"
	ModeFuelMoisture  DisplayMode = "fuel"
)

// ParseDisplayMode validates a mode string from the control surface.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(s) {
	case ModeTemperature, ModePrecipitation, ModeWind, ModeFuelMoisture:
		return DisplayMode(s), nil
	default:
		return "", fmt.Errorf("unknown display mode %q", s)
	}
}

// Label returns the human-readable name used in tooltips and legends.
func (m DisplayMode) Label() string {
	switch m {
	case ModeTemperature:
		return "Temperature"
	case ModePrecipitation:
		return "Precipitation"
	case ModeWind:
		return "Wind Speed"
	case ModeFuelMoisture:
		return "Fuel Moisture"
	default:
		return ""
	}
}
