// Package regions holds the projected county and state geometry the viewer
// renders and hit-tests against. Geometry is projected once at startup and
// never mutated afterwards.
package regions

import (
	"fmt"
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/wildfire-map-viewer/internal/geo"
)

// Projector maps a longitude/latitude pair onto the canvas.
type Projector interface {
	Project(lon, lat float64) (geo.Point, bool)
}

// Region is one county: its projected rings plus a precomputed bounding box
// for cheap hit-test rejection.
type Region struct {
	Key    string
	Rings  []geo.Ring
	Bounds geo.BBox
}

// Contains reports whether the screen point falls inside the region.
func (r *Region) Contains(p geo.Point) bool {
	return r.Bounds.Contains(p) && geo.ContainsPoint(r.Rings, p)
}

// Set is the full projected map: every county plus the state border rings
// drawn on top of them.
type Set struct {
	regions []Region
	byKey   map[string]*Region
	borders []geo.Ring
}

// NewSet projects county and state features onto the canvas. Features without
// a usable identifier are dropped; duplicate identifiers keep the first
// occurrence.
func NewSet(counties, states []*geojson.Feature, proj Projector) *Set {
	s := &Set{
		regions: make([]Region, 0, len(counties)),
		byKey:   make(map[string]*Region, len(counties)),
	}
	for _, f := range counties {
		key := keyFromID(f.ID)
		if key == "" {
			continue
		}
		if _, dup := s.byKey[key]; dup {
			continue
		}
		rings := projectFeature(f, proj)
		if len(rings) == 0 {
			continue
		}
		s.regions = append(s.regions, Region{
			Key:    key,
			Rings:  rings,
			Bounds: geo.BoundsOf(rings),
		})
	}
	for i := range s.regions {
		s.byKey[s.regions[i].Key] = &s.regions[i]
	}
	for _, f := range states {
		s.borders = append(s.borders, projectFeature(f, proj)...)
	}
	return s
}

// All returns every region in document order.
func (s *Set) All() []Region {
	return s.regions
}

// Borders returns the projected state outline rings.
func (s *Set) Borders() []geo.Ring {
	return s.borders
}

// Len reports how many regions the set carries.
func (s *Set) Len() int {
	return len(s.regions)
}

// Lookup finds a region by its five-digit key.
func (s *Set) Lookup(key string) (*Region, bool) {
	r, ok := s.byKey[key]
	return r, ok
}

// At finds the region containing the screen point, if any.
func (s *Set) At(p geo.Point) (*Region, bool) {
	for i := range s.regions {
		if s.regions[i].Contains(p) {
			return &s.regions[i], true
		}
	}
	return nil, false
}

func projectFeature(f *geojson.Feature, proj Projector) []geo.Ring {
	if f.Geometry == nil {
		return nil
	}
	var polygons [][][][]float64
	switch {
	case f.Geometry.IsPolygon():
		polygons = [][][][]float64{f.Geometry.Polygon}
	case f.Geometry.IsMultiPolygon():
		polygons = f.Geometry.MultiPolygon
	default:
		return nil
	}
	var rings []geo.Ring
	for _, poly := range polygons {
		for _, coords := range poly {
			ring := make(geo.Ring, 0, len(coords))
			for _, c := range coords {
				if len(c) < 2 {
					continue
				}
				p, ok := proj.Project(c[0], c[1])
				if !ok {
					continue
				}
				ring = append(ring, p)
			}
			if len(ring) >= 3 {
				rings = append(rings, ring)
			}
		}
	}
	return rings
}

// keyFromID normalizes a feature identifier to the five-digit form used by
// the live feed. Numeric IDs lose their leading zeros in most geometry
// files, so shorter keys are left-padded.
func keyFromID(id any) string {
	var key string
	switch v := id.(type) {
	case string:
		key = strings.TrimSpace(v)
	case float64:
		key = fmt.Sprintf("%.0f", v)
	case int:
		key = fmt.Sprintf("%d", v)
	default:
		return ""
	}
	if key == "" || len(key) > 5 {
		return key
	}
	return strings.Repeat("0", 5-len(key)) + key
}
