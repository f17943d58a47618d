package sjoin

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// IDSeparator joins the distinct polygon identities of a group into the
// merged identity string.
const IDSeparator = "-"

// Deduplicate collapses a row-per-pair table into a row-per-point table.
// Pair rows are grouped by point identity in first-occurrence order; each
// group folds into a single row via foldGroup. The output has exactly one
// row per distinct point identity in the input — no identity is dropped or
// duplicated.
//
// Fails with ErrEmptyGroupKey when a pair row carries an empty point
// identity, and with ErrColumnCountMismatch when a group's distinct
// geometry count exceeds the spec's MaxGeometries cap.
func Deduplicate(pairs *PairTable) (*AggregatedTable, error) {
	spec := pairs.Spec.withDefaults()

	// Group rows by point identity, preserving first-occurrence order.
	var order []string
	groups := make(map[string][]PairRow)
	for i, row := range pairs.Rows {
		if row.PointID == "" {
			return nil, fmt.Errorf("%w: pair row %d", ErrEmptyGroupKey, i)
		}
		if _, seen := groups[row.PointID]; !seen {
			order = append(order, row.PointID)
		}
		groups[row.PointID] = append(groups[row.PointID], row)
	}

	table := &AggregatedTable{Spec: spec}
	for _, key := range order {
		folded := foldGroup(groups[key], spec)
		if spec.MaxGeometries > 0 && len(folded.Geometries) > spec.MaxGeometries {
			return nil, fmt.Errorf("%w: point %q has %d distinct geometries, max %d",
				ErrColumnCountMismatch, key, len(folded.Geometries), spec.MaxGeometries)
		}
		if len(folded.Geometries) > table.GeometryArity {
			table.GeometryArity = len(folded.Geometries)
		}
		table.Rows = append(table.Rows, folded)
	}

	return table, nil
}

// foldGroup folds the pair rows sharing one point identity into a single
// aggregated row. It is a pure function of its arguments:
//
//  1. distinct polygon identities, first-occurrence order, joined with
//     IDSeparator (a single-member group keeps its identity unaltered, so
//     a lone sentinel row folds to the sentinel itself);
//  2. distinct geometry values by geometric equality, first-occurrence
//     order;
//  3. attribute cells taken from the group's first row.
func foldGroup(rows []PairRow, spec ColumnSpec) AggregatedRow {
	var ids []string
	seen := make(map[string]struct{}, len(rows))
	var geoms []orb.Geometry

	for _, row := range rows {
		if _, dup := seen[row.PolygonID]; !dup {
			seen[row.PolygonID] = struct{}{}
			ids = append(ids, row.PolygonID)
		}
		if row.Geometry != nil && !containsGeometry(geoms, row.Geometry) {
			geoms = append(geoms, row.Geometry)
		}
	}

	first := rows[0]
	return AggregatedRow{
		PointID:       first.PointID,
		PolygonID:     strings.Join(ids, IDSeparator),
		Attrs:         first.Attrs,
		PointGeometry: first.PointGeometry,
		Geometries:    geoms,
	}
}

// containsGeometry reports whether an equal geometry is already present.
// Equality is exact coordinate match, not reference identity.
func containsGeometry(geoms []orb.Geometry, g orb.Geometry) bool {
	for _, have := range geoms {
		if orb.Equal(have, g) {
			return true
		}
	}
	return false
}
