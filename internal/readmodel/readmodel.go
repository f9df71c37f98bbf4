// Package readmodel turns a raw feed snapshot into the immutable view the
// renderer and hover resolver consume. A new model fully replaces the old
// one; nothing is merged across snapshots.
package readmodel

import (
	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/couchcryptid/wildfire-map-viewer/internal/geo"
)

// Projector maps a longitude/latitude pair onto the canvas.
type Projector interface {
	Project(lon, lat float64) (geo.Point, bool)
}

// Hazard is one wildfire point with its projected screen position.
type Hazard struct {
	Record domain.Record
	Point  geo.Point
}

// Model is the state of the map for a single snapshot. It is never mutated
// after Build returns; consumers may hold it across goroutines freely.
type Model struct {
	// WeatherByRegion keys measurements by five-digit region key. When a
	// snapshot carries several records for one region the last one wins.
	WeatherByRegion map[string]domain.Record
	// Hazards holds the drawable wildfire points in arrival order.
	Hazards []Hazard
	// Generation increases with each snapshot and keys the frame cache.
	Generation uint64
}

// Stats counts records Build discarded, by reason.
type Stats struct {
	NoCoordinates int
	OutOfBounds   int
	OffCanvas     int
	NoSize        int
}

// Discarded is the total number of records that did not become hazards.
func (s Stats) Discarded() int {
	return s.NoCoordinates + s.OutOfBounds + s.OffCanvas + s.NoSize
}

// Build projects a snapshot into a Model. Every record with a region key
// contributes weather; only records with in-bounds coordinates and a fire
// size become hazard markers. Records are never rejected outright, so a
// coordinate problem still leaves the county colored.
func Build(snap domain.Snapshot, proj Projector, generation uint64) (Model, Stats) {
	m := Model{
		WeatherByRegion: make(map[string]domain.Record, len(snap.Records)),
		Generation:      generation,
	}
	var stats Stats
	for _, rec := range snap.Records {
		if rec.RegionKey != "" {
			m.WeatherByRegion[rec.RegionKey] = rec
		}
		switch {
		case !rec.HasCoordinates():
			stats.NoCoordinates++
			continue
		case !rec.InContinentalBounds():
			stats.OutOfBounds++
			continue
		case rec.SizeAcres == nil:
			stats.NoSize++
			continue
		}
		p, ok := proj.Project(*rec.Longitude, *rec.Latitude)
		if !ok || !geo.Visible(p) {
			stats.OffCanvas++
			continue
		}
		m.Hazards = append(m.Hazards, Hazard{Record: rec, Point: p})
	}
	return m, stats
}
