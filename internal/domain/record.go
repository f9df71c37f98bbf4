package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Continental bounding box for plausible wildfire coordinates.
const (
	LatMin = 24.0
	LatMax = 50.0
	LonMin = -125.0
	LonMax = -66.0
)

// Record is the unified per-county entry from a snapshot: optional weather
// measurements joined with optional wildfire fields, keyed by FIPS code.
// Nil measurement pointers mean "no data" and render as the neutral color.
type Record struct {
	RegionKey string

	MaxTemperatureC *float64
	MinTemperatureC *float64
	PrecipitationMm *float64
	WindSpeedMps    *float64
	FuelMoisturePct *float64

	Latitude  *float64
	Longitude *float64
	SizeAcres *float64
}

// Snapshot is one complete payload for a single requested date. It fully
// replaces any previously held state; there is no incremental merge.
type Snapshot struct {
	Records []Record
}

// HasCoordinates reports whether both wildfire coordinates are present.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// InContinentalBounds reports whether the record's coordinates fall inside the
// plausible continental bounding box. Records without coordinates fail.
func (r Record) InContinentalBounds() bool {
	if !r.HasCoordinates() {
		return false
	}
	lat, lon := *r.Latitude, *r.Longitude
	return lat >= LatMin && lat <= LatMax && lon >= LonMin && lon <= LonMax
}

// Measurement returns the weather field selected by the display mode.
func (r Record) Measurement(mode DisplayMode) *float64 {
	switch mode {
	case ModeTemperature:
		return r.MaxTemperatureC
	case ModePrecipitation:
		return r.PrecipitationMm
	case ModeWind:
		return r.WindSpeedMps
	case ModeFuelMoisture:
		return r.FuelMoisturePct
	default:
		return nil
	}
}

// wireRecord mirrors the producer's field names. Every value is decoded as
// `any` because the upstream CSV-to-JSON conversion emits numbers, quoted
// numbers, or nothing, depending on the year file.
type wireRecord struct {
	FIPS      any `json:"fips"`
	FireSize  any `json:"fire_size"`
	Latitude  any `json:"LATITUDE"`
	Longitude any `json:"LONGITUDE"`
	Fmc       any `json:"fmc"`
	Tmax      any `json:"tmax"`
	Tmin      any `json:"tmin"`
	Prcp      any `json:"prcp"`
	WindSpeed any `json:"wind_speed"`
}

// broadcastPayload is the body of a data_broadcast event.
type broadcastPayload struct {
	Wildfire []json.RawMessage `json:"wildfire"`
}

// ParseSnapshot decodes a data_broadcast payload into a Snapshot. Individual
// records that are not JSON objects are skipped; one bad record never aborts
// the rest. The skipped count is returned for observability.
func ParseSnapshot(data []byte) (Snapshot, int, error) {
	var payload broadcastPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Snapshot{}, 0, fmt.Errorf("parse snapshot payload: %w", err)
	}

	records := make([]Record, 0, len(payload.Wildfire))
	skipped := 0
	for _, raw := range payload.Wildfire {
		var w wireRecord
		if err := json.Unmarshal(raw, &w); err != nil {
			skipped++
			continue
		}
		records = append(records, Record{
			RegionKey:       coerceRegionKey(w.FIPS),
			MaxTemperatureC: coerceFloat(w.Tmax),
			MinTemperatureC: coerceFloat(w.Tmin),
			PrecipitationMm: coerceFloat(w.Prcp),
			WindSpeedMps:    coerceFloat(w.WindSpeed),
			FuelMoisturePct: coerceFloat(w.Fmc),
			Latitude:        coerceFloat(w.Latitude),
			Longitude:       coerceFloat(w.Longitude),
			SizeAcres:       coerceFloat(w.FireSize),
		})
	}
	return Snapshot{Records: records}, skipped, nil
}

// coerceFloat converts a decoded JSON value to a measurement. Numbers pass
// through, numeric strings are parsed, everything else (including NaN and
// empty strings) becomes nil, never an error.
func coerceFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// coerceRegionKey normalizes a FIPS value to a zero-padded 5-digit string.
// Numeric input loses leading zeros upstream, so "6037" and 6037 both map to
// "06037". Unrecognizable input yields an empty key, which never joins.
func coerceRegionKey(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || t < 0 {
			return ""
		}
		s = strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
	if s == "" || len(s) > 5 {
		return s
	}
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}
