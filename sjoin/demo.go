package sjoin

import (
	"github.com/paulmach/orb"
)

// Default demo column names.
const (
	DemoPointIDColumn   = "point_id"
	DemoPolygonIDColumn = "polygon_id"
)

// demoPointCoords places seven points around three unit squares. Points B
// and F sit exactly on the shared corner of polygons "a" and "b", so they
// double-match under "intersects" and match nothing under "within". Point G
// lies outside every polygon.
var demoPointCoords = []orb.Point{
	{-1, -1},     // A: corner of polygon a
	{0, -1},      // B: shared corner of a and b
	{0.5, -0.75}, // C: interior of b
	{-0.5, -0.5}, // D: interior of a
	{0.5, -0.5},  // E: interior of b
	{0, 0},       // F: shared corner of a and b
	{0.5, 0.5},   // G: outside all polygons
}

// demoPolygonCoords defines three unit squares: "a" bottom-left, "b"
// bottom-right, "c" above "a" with a gap so it shares no corner with the
// double-match points.
var demoPolygonCoords = [][]orb.Point{
	{{-1, -1}, {0, -1}, {0, 0}, {-1, 0}},
	{{0, -1}, {1, -1}, {1, 0}, {0, 0}},
	{{-1, 0.25}, {0, 0.25}, {0, 1.25}, {-1, 1.25}},
}

// DemoPoints builds the synthetic demo point collection. Point identities
// are consecutive uppercase letters starting at "A".
func DemoPoints(idColumn string) *Collection {
	if idColumn == "" {
		idColumn = DemoPointIDColumn
	}

	features := make([]*Feature, len(demoPointCoords))
	for i, pt := range demoPointCoords {
		features[i] = NewFeature(pointToGeometry(pt), map[string]interface{}{
			idColumn: string(rune('A' + i)),
		})
	}

	c, _ := NewCollection("points", idColumn, features)
	return c
}

// DemoPolygons builds the synthetic demo polygon collection. Polygon
// identities are consecutive lowercase letters starting at "a".
func DemoPolygons(idColumn string) *Collection {
	if idColumn == "" {
		idColumn = DemoPolygonIDColumn
	}

	features := make([]*Feature, len(demoPolygonCoords))
	for i, ring := range demoPolygonCoords {
		closed := make(orb.Ring, 0, len(ring)+1)
		closed = append(closed, ring...)
		closed = append(closed, ring[0])
		features[i] = NewFeature(polygonToGeometry(orb.Polygon{closed}), map[string]interface{}{
			idColumn: string(rune('a' + i)),
		})
	}

	c, _ := NewCollection("polygons", idColumn, features)
	return c
}

// DemoColumnSpec returns the column configuration the demo joins use.
func DemoColumnSpec() ColumnSpec {
	return ColumnSpec{
		PointID:   DemoPointIDColumn,
		PolygonID: DemoPolygonIDColumn,
		Keep:      []string{DemoPointIDColumn, DemoPolygonIDColumn},
	}
}
