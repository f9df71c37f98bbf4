package domain

import "fmt"

// FormatValue renders a measurement with the units and precision of its kind.
// Values arrive in the feed's native units (Celsius, millimeters, m/s) and are
// converted to the display units here. Nil renders as "N/A".
func FormatValue(v *float64, mode DisplayMode) string {
	if v == nil {
		return "N/A"
	}
	switch mode {
	case ModeTemperature:
		return fmt.Sprintf("%.1f°F", *v*9/5+32)
	case ModePrecipitation:
		return fmt.Sprintf("%.2f inches", *v)
	case ModeWind:
		return fmt.Sprintf("%.1f mph", *v*2.23694)
	case ModeFuelMoisture:
		return fmt.Sprintf("%.1f tons/acre", *v)
	default:
		return fmt.Sprintf("%g", *v)
	}
}
