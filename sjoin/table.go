package sjoin

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// PairRow is one point/polygon match (or non-match) before aggregation.
// On a match the geometry cell carries the matched polygon's geometry; on a
// sentinel row it falls back to the point's own geometry, so the cell is
// never empty.
type PairRow struct {
	PointID       string
	PolygonID     string
	Attrs         map[string]interface{}
	PointGeometry orb.Point
	Geometry      orb.Geometry
}

// PairTable is the flat row-per-pair output of the join adapter.
type PairTable struct {
	Spec ColumnSpec
	Rows []PairRow
}

// AggregatedRow is one point after merging all of its matches. PolygonID
// holds the hyphen-joined distinct polygon identities in first-encounter
// order; Geometries holds the distinct geometry values of the group.
type AggregatedRow struct {
	PointID       string
	PolygonID     string
	Attrs         map[string]interface{}
	PointGeometry orb.Point
	Geometries    []orb.Geometry
}

// AggregatedTable is the one-row-per-point output of Deduplicate.
// GeometryArity is the table-wide geometry column count; rows with fewer
// distinct geometries are padded with the missing-value sentinel when the
// table is formatted.
type AggregatedTable struct {
	Spec          ColumnSpec
	GeometryArity int
	Rows          []AggregatedRow
}

// Columns returns the pair table's column names in output order: identity,
// kept attributes, polygon identity, geometry.
func (t *PairTable) Columns() []string {
	spec := t.Spec.withDefaults()
	cols := []string{spec.PointID}
	cols = append(cols, spec.extraKeep()...)
	cols = append(cols, spec.PolygonID, spec.Geometry)
	return cols
}

// String renders the pair table with a fixed column layout.
func (t *PairTable) String() string {
	spec := t.Spec.withDefaults()

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Columns(), "\t"))

	extras := spec.extraKeep()
	for _, row := range t.Rows {
		cells := []string{row.PointID}
		for _, col := range extras {
			cells = append(cells, formatCell(row.Attrs[col], spec.Missing))
		}
		cells = append(cells, row.PolygonID, formatGeometry(row.Geometry, spec.Missing))
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	w.Flush()
	return sb.String()
}

// Columns returns the aggregated table's column names in output order:
// identity, merged polygon identity, then one column per geometry slot.
func (t *AggregatedTable) Columns() []string {
	spec := t.Spec.withDefaults()
	cols := []string{spec.PointID, spec.PolygonID}
	for i := 0; i < t.GeometryArity; i++ {
		name := spec.Geometry
		if i > 0 {
			name = fmt.Sprintf("%s_%d", spec.Geometry, i+1)
		}
		cols = append(cols, name)
	}
	return cols
}

// String renders the aggregated table with a fixed column layout. Geometry
// slots beyond a row's distinct-geometry count render as the sentinel.
func (t *AggregatedTable) String() string {
	spec := t.Spec.withDefaults()

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Columns(), "\t"))

	for _, row := range t.Rows {
		cells := []string{row.PointID, row.PolygonID}
		for i := 0; i < t.GeometryArity; i++ {
			if i < len(row.Geometries) {
				cells = append(cells, formatGeometry(row.Geometries[i], spec.Missing))
			} else {
				cells = append(cells, spec.Missing)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	w.Flush()
	return sb.String()
}

// Find returns the aggregated row for the given point identity.
func (t *AggregatedTable) Find(pointID string) (AggregatedRow, bool) {
	for _, row := range t.Rows {
		if row.PointID == pointID {
			return row, true
		}
	}
	return AggregatedRow{}, false
}

// ToFeatureCollection converts the aggregated result into a GeoJSON
// FeatureCollection. Each row becomes a Point feature located at the
// original point, carrying the merged polygon identity and the match count
// in its properties.
func (t *AggregatedTable) ToFeatureCollection() *FeatureCollection {
	spec := t.Spec.withDefaults()
	fc := NewFeatureCollection()

	for _, row := range t.Rows {
		props := make(map[string]interface{}, len(row.Attrs)+3)
		for k, v := range row.Attrs {
			props[k] = v
		}
		props[spec.PointID] = row.PointID
		props[spec.PolygonID] = row.PolygonID
		if row.PolygonID == spec.Missing {
			props["matches"] = 0
		} else {
			props["matches"] = len(strings.Split(row.PolygonID, IDSeparator))
		}

		fc.AddFeature(NewFeature(pointToGeometry(row.PointGeometry), props))
	}

	return fc
}

// formatCell renders an attribute cell, substituting the sentinel for nil.
func formatCell(v interface{}, missing string) string {
	if v == nil {
		return missing
	}
	return fmt.Sprint(v)
}

// formatGeometry renders a geometry cell as WKT, substituting the sentinel
// for nil.
func formatGeometry(g orb.Geometry, missing string) string {
	if g == nil {
		return missing
	}
	return wkt.MarshalString(g)
}
