package regions

import (
	"os"
	"path/filepath"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-map-viewer/internal/geo"
)

// flatProjector maps degrees straight onto screen units so test geometry can
// be reasoned about directly.
type flatProjector struct{}

func (flatProjector) Project(lon, lat float64) (geo.Point, bool) {
	return geo.Point{X: lon, Y: lat}, true
}

func square(id any, x, y, size float64) *geojson.Feature {
	f := geojson.NewPolygonFeature([][][]float64{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}})
	f.ID = id
	return f
}

func TestNewSet(t *testing.T) {
	counties := []*geojson.Feature{
		square("01001", 0, 0, 10),
		square(6037.0, 20, 0, 10),
		square("01001", 40, 40, 5), // duplicate key, first wins
		square(nil, 60, 60, 5),     // no identifier
	}
	states := []*geojson.Feature{square("01", 0, 0, 30)}

	set := NewSet(counties, states, flatProjector{})

	assert.Equal(t, 2, set.Len())
	assert.Len(t, set.Borders(), 1)

	r, ok := set.Lookup("06037")
	require.True(t, ok, "numeric IDs are zero-padded to five digits")
	assert.Equal(t, "06037", r.Key)

	first, ok := set.Lookup("01001")
	require.True(t, ok)
	assert.Equal(t, geo.BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, first.Bounds)
}

func TestSetAt(t *testing.T) {
	set := NewSet([]*geojson.Feature{
		square("01001", 0, 0, 10),
		square("06037", 20, 0, 10),
	}, nil, flatProjector{})

	r, ok := set.At(geo.Point{X: 25, Y: 5})
	require.True(t, ok)
	assert.Equal(t, "06037", r.Key)

	_, ok = set.At(geo.Point{X: 15, Y: 5})
	assert.False(t, ok, "gap between counties resolves to nothing")
}

func TestMultiPolygonRegion(t *testing.T) {
	f := geojson.NewMultiPolygonFeature(
		[][][]float64{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
		[][][]float64{{{30, 0}, {40, 0}, {40, 10}, {30, 10}, {30, 0}}},
	)
	f.ID = "02016"

	set := NewSet([]*geojson.Feature{f}, nil, flatProjector{})

	r, ok := set.At(geo.Point{X: 35, Y: 5})
	require.True(t, ok, "both parts of a multipolygon county are hittable")
	assert.Equal(t, "02016", r.Key)
}

func TestKeyFromID(t *testing.T) {
	tests := []struct {
		name string
		id   any
		want string
	}{
		{"padded string", "1001", "01001"},
		{"full string", "06037", "06037"},
		{"float", 6037.0, "06037"},
		{"int", 1001, "01001"},
		{"blank", "  ", ""},
		{"unsupported type", []string{"x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyFromID(tt.id))
		})
	}
}

func TestLoadNamesCSV(t *testing.T) {
	csv := "fips,county_name\n01001,Autauga County\n6037,Los Angeles County\n,Missing Key\n"
	path := filepath.Join(t.TempDir(), "names.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	ix, err := LoadNamesCSV(path)

	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())

	name, ok := ix.Name("01001")
	require.True(t, ok)
	assert.Equal(t, "Autauga County", name)

	name, ok = ix.Name("06037")
	require.True(t, ok, "short keys are zero-padded on load")
	assert.Equal(t, "Los Angeles County", name)
}

func TestLoadNamesCSVNoHeader(t *testing.T) {
	csv := "01001,Autauga County\n"
	path := filepath.Join(t.TempDir(), "names.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	ix, err := LoadNamesCSV(path)

	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
}

func TestEmptyNameIndex(t *testing.T) {
	ix := EmptyNameIndex()

	_, ok := ix.Name("01001")
	assert.False(t, ok)
	assert.Equal(t, 0, ix.Len())
}
