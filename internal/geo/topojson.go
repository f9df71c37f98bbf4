package geo

import (
	"encoding/json"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
)

// topology is the subset of the TopoJSON format the map needs: quantized or
// plain arcs plus Polygon/MultiPolygon geometry collections.
type topology struct {
	Type      string                `json:"type"`
	Transform *topoTransform        `json:"transform"`
	Arcs      [][][2]float64        `json:"arcs"`
	Objects   map[string]topoObject `json:"objects"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoObject struct {
	Type       string         `json:"type"`
	Geometries []topoGeometry `json:"geometries"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	ID         any             `json:"id"`
	Properties map[string]any  `json:"properties"`
	Arcs       json.RawMessage `json:"arcs"`
}

// LoadFeatures reads a geometry document from disk. Both plain GeoJSON
// FeatureCollections and TopoJSON topologies are accepted; for a topology,
// object names the geometry collection to extract (e.g. "counties").
func LoadFeatures(path, object string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geometry: %w", err)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}

	if probe.Type == "Topology" {
		return DecodeTopology(data, object)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	return fc.Features, nil
}

// DecodeTopology extracts one object of a TopoJSON document as GeoJSON
// features. Arcs are delta-decoded and dequantized, shared boundaries are
// stitched back into closed rings, and negative arc indexes are reversed per
// the TopoJSON specification. Geometry types other than Polygon and
// MultiPolygon are skipped.
func DecodeTopology(data []byte, object string) ([]*geojson.Feature, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}

	obj, ok := topo.Objects[object]
	if !ok {
		return nil, fmt.Errorf("topology has no object %q", object)
	}

	arcs := decodeArcs(topo)

	features := make([]*geojson.Feature, 0, len(obj.Geometries))
	for _, g := range obj.Geometries {
		var f *geojson.Feature
		switch g.Type {
		case "Polygon":
			var idx [][]int
			if err := json.Unmarshal(g.Arcs, &idx); err != nil {
				return nil, fmt.Errorf("polygon arcs: %w", err)
			}
			f = geojson.NewPolygonFeature(assemblePolygon(arcs, idx))
		case "MultiPolygon":
			var idx [][][]int
			if err := json.Unmarshal(g.Arcs, &idx); err != nil {
				return nil, fmt.Errorf("multipolygon arcs: %w", err)
			}
			polys := make([][][][]float64, 0, len(idx))
			for _, p := range idx {
				polys = append(polys, assemblePolygon(arcs, p))
			}
			f = geojson.NewMultiPolygonFeature(polys...)
		default:
			continue
		}
		f.ID = g.ID
		f.Properties = g.Properties
		features = append(features, f)
	}
	return features, nil
}

// decodeArcs expands the topology's delta-encoded arcs into absolute
// longitude/latitude positions.
func decodeArcs(topo topology) [][][]float64 {
	arcs := make([][][]float64, len(topo.Arcs))
	for i, arc := range topo.Arcs {
		points := make([][]float64, len(arc))
		var x, y float64
		for j, pos := range arc {
			if topo.Transform != nil {
				x += pos[0]
				y += pos[1]
				points[j] = []float64{
					x*topo.Transform.Scale[0] + topo.Transform.Translate[0],
					y*topo.Transform.Scale[1] + topo.Transform.Translate[1],
				}
			} else {
				points[j] = []float64{pos[0], pos[1]}
			}
		}
		arcs[i] = points
	}
	return arcs
}

// assemblePolygon stitches arc indexes into closed rings. Each subsequent arc
// shares its first position with the previous arc's last, so the duplicate
// join point is dropped.
func assemblePolygon(arcs [][][]float64, ringIdx [][]int) [][][]float64 {
	rings := make([][][]float64, 0, len(ringIdx))
	for _, ring := range ringIdx {
		var points [][]float64
		for _, idx := range ring {
			arc := arcAt(arcs, idx)
			if len(points) > 0 && len(arc) > 0 {
				arc = arc[1:]
			}
			points = append(points, arc...)
		}
		rings = append(rings, points)
	}
	return rings
}

// arcAt resolves an arc index; negative indexes mean the complement arc
// traversed in reverse.
func arcAt(arcs [][][]float64, idx int) [][]float64 {
	if idx >= 0 {
		return arcs[idx]
	}
	src := arcs[^idx]
	rev := make([][]float64, len(src))
	for i, p := range src {
		rev[len(src)-1-i] = p
	}
	return rev
}
