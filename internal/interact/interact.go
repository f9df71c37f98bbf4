// Package interact resolves the entity under a pointer position and composes
// the tooltip summary for it. Hazard markers sit above county polygons, so
// markers are hit-tested first, topmost (last drawn) first.
package interact

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/wildfire-map-viewer/internal/classify"
	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/couchcryptid/wildfire-map-viewer/internal/geo"
	"github.com/couchcryptid/wildfire-map-viewer/internal/readmodel"
	"github.com/couchcryptid/wildfire-map-viewer/internal/regions"
)

// Tooltip placement relative to the pointer, in pixels.
const (
	TooltipOffsetX = 10.0
	TooltipOffsetY = -28.0
)

// UnknownLocation is shown when the name lookup has no entry for a region.
const UnknownLocation = "Unknown County"

// Names resolves region keys to display names.
type Names interface {
	Name(key string) (string, bool)
}

// Summary is one tooltip: a title, its body lines in display order, and the
// offset the client should apply to the pointer position.
type Summary struct {
	RegionKey string   `json:"region_key"`
	Title     string   `json:"title"`
	Lines     []string `json:"lines"`
	OffsetX   float64  `json:"offset_x"`
	OffsetY   float64  `json:"offset_y"`
}

// Resolver answers hover queries against the current read-model.
type Resolver struct {
	regions *regions.Set
	names   Names
}

// NewResolver builds a resolver over the projected region set. names may not
// be nil; use regions.EmptyNameIndex when no source is configured.
func NewResolver(set *regions.Set, names Names) *Resolver {
	return &Resolver{regions: set, names: names}
}

// Resolve finds what sits under the pointer and composes its summary. The
// boolean is false when the pointer is over neither a marker nor a county.
func (r *Resolver) Resolve(m readmodel.Model, mode domain.DisplayMode, x, y float64) (Summary, bool) {
	p := geo.Point{X: x, Y: y}

	if h, ok := hazardAt(m.Hazards, p); ok {
		return r.summarize(m, mode, h.Record.RegionKey, h.Record.SizeAcres), true
	}
	if region, ok := r.regions.At(p); ok {
		var size *float64
		if h, ok := hazardForRegion(m.Hazards, region.Key); ok {
			size = h.Record.SizeAcres
		}
		return r.summarize(m, mode, region.Key, size), true
	}
	return Summary{}, false
}

// hazardAt returns the topmost marker whose drawn circle covers p.
func hazardAt(hazards []readmodel.Hazard, p geo.Point) (readmodel.Hazard, bool) {
	for i := len(hazards) - 1; i >= 0; i-- {
		h := hazards[i]
		radius := classify.WildfireRadius(*h.Record.SizeAcres)
		if radius == 0 {
			continue
		}
		dx := p.X - h.Point.X
		dy := p.Y - h.Point.Y
		if dx*dx+dy*dy <= radius*radius {
			return h, true
		}
	}
	return readmodel.Hazard{}, false
}

// hazardForRegion finds the first marker sharing the county's key, for the
// size line on county hovers.
func hazardForRegion(hazards []readmodel.Hazard, key string) (readmodel.Hazard, bool) {
	for _, h := range hazards {
		if h.Record.RegionKey == key {
			return h, true
		}
	}
	return readmodel.Hazard{}, false
}

func (r *Resolver) summarize(m readmodel.Model, mode domain.DisplayMode, key string, size *float64) Summary {
	location := UnknownLocation
	if name, ok := r.names.Name(key); ok {
		location = name
	}

	lines := []string{fmt.Sprintf("Location: %s", location)}
	if size != nil {
		lines = append(lines, fmt.Sprintf("Wildfire Size: %s acres", formatSize(*size)))
	} else {
		lines = append(lines, "No wildfires")
	}

	if rec, ok := m.WeatherByRegion[key]; ok {
		if v := rec.Measurement(mode); v != nil {
			lines = append(lines, fmt.Sprintf("%s: %s", mode.Label(), domain.FormatValue(v, mode)))
		}
	}

	return Summary{
		RegionKey: key,
		Title:     "Details",
		Lines:     lines,
		OffsetX:   TooltipOffsetX,
		OffsetY:   TooltipOffsetY,
	}
}

// formatSize prints the size the way the feed delivered it, without forcing
// trailing zeros onto whole-number acreages.
func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
