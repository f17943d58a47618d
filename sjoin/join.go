package sjoin

import (
	"fmt"

	"github.com/paulmach/orb"
)

// JoinMode selects which side's unmatched rows are retained by the join.
type JoinMode string

const (
	// JoinLeft retains every point; unmatched points get a sentinel row.
	// This is the default and the only mode the aggregator is built for.
	JoinLeft JoinMode = "left"

	// JoinInner retains matched pairs only.
	JoinInner JoinMode = "inner"

	// JoinRight retains every polygon; unmatched polygons get a sentinel
	// row whose point identity is the sentinel value.
	JoinRight JoinMode = "right"
)

// DefaultMissingValue is substituted for null cells produced by outer
// joins, so downstream consumers never see empty cells.
const DefaultMissingValue = "NaN"

// ColumnSpec configures the column layout of a join and its aggregation.
type ColumnSpec struct {
	// PointID is the left identity column. Required.
	PointID string

	// PolygonID is the right identity column. Required.
	PolygonID string

	// Keep lists the columns to retain in the pair table. The geometry
	// column is appended automatically when absent.
	Keep []string

	// Geometry is the left geometry column name. Defaults to
	// DefaultGeometryColumn.
	Geometry string

	// Missing is the sentinel substituted for null join cells. Defaults to
	// DefaultMissingValue.
	Missing string

	// Mode is the join mode. Defaults to JoinLeft.
	Mode JoinMode

	// MaxGeometries caps the geometry arity of the aggregated table.
	// Zero means unbounded; a positive value turns overflow into
	// ErrColumnCountMismatch.
	MaxGeometries int
}

// withDefaults fills the optional fields of the spec.
func (s ColumnSpec) withDefaults() ColumnSpec {
	if s.Geometry == "" {
		s.Geometry = DefaultGeometryColumn
	}
	if s.Missing == "" {
		s.Missing = DefaultMissingValue
	}
	if s.Mode == "" {
		s.Mode = JoinLeft
	}
	return s
}

// extraKeep returns the kept columns that are neither identity nor geometry
// columns, preserving their configured order.
func (s ColumnSpec) extraKeep() []string {
	var extras []string
	for _, col := range s.Keep {
		if col == s.PointID || col == s.PolygonID || col == s.Geometry {
			continue
		}
		extras = append(extras, col)
	}
	return extras
}

// validate checks the spec against the two collection schemas.
func (s ColumnSpec) validate(points, polygons *Collection) error {
	if !points.HasColumn(s.PointID) {
		return fmt.Errorf("%w: column %q not in collection %q", ErrSchemaMismatch, s.PointID, points.Name)
	}
	if !polygons.HasColumn(s.PolygonID) {
		return fmt.Errorf("%w: column %q not in collection %q", ErrSchemaMismatch, s.PolygonID, polygons.Name)
	}
	for _, col := range s.Keep {
		if col == s.PolygonID || points.HasColumn(col) {
			continue
		}
		return fmt.Errorf("%w: keep column %q not in collection %q", ErrSchemaMismatch, col, points.Name)
	}
	return nil
}

// Join performs a point-in-polygon spatial join and returns the flat
// pair-row table. One row is emitted per (point, polygon) pair satisfying
// the predicate; one-to-many matches remain as multiple rows. Under left
// join, points with no match get a single row whose polygon identity is the
// sentinel. Inputs are never mutated.
func Join(points, polygons *Collection, pred Predicate, spec ColumnSpec) (*PairTable, error) {
	spec = spec.withDefaults()

	if !pred.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPredicate, string(pred))
	}
	if err := spec.validate(points, polygons); err != nil {
		return nil, err
	}

	// The left geometry column is always retained downstream.
	if !containsString(spec.Keep, spec.Geometry) {
		keep := make([]string, 0, len(spec.Keep)+1)
		keep = append(keep, spec.Keep...)
		keep = append(keep, spec.Geometry)
		spec.Keep = keep
	}

	left, err := collectPoints(points)
	if err != nil {
		return nil, err
	}
	right, err := collectAreas(polygons)
	if err != nil {
		return nil, err
	}

	idx, err := newPointIndex(coords(left))
	if err != nil {
		return nil, err
	}

	// matches[i] holds the polygon indices matching point i, in polygon
	// input order.
	matches := make([][]int, len(left))
	for gi, area := range right {
		for _, pi := range idx.candidates(area.geom.Bound()) {
			if pred.Evaluate(left[pi].pt, area.geom) {
				matches[pi] = append(matches[pi], gi)
			}
		}
	}

	table := &PairTable{Spec: spec}
	extras := spec.extraKeep()

	emit := func(pi, gi int) {
		p := left[pi]
		row := PairRow{
			PointID:       p.id,
			PointGeometry: p.pt,
			Attrs:         keepAttrs(p.feature, extras),
		}
		if gi >= 0 {
			row.PolygonID = right[gi].id
			row.Geometry = right[gi].geom
		} else {
			row.PolygonID = spec.Missing
			row.Geometry = p.pt
		}
		table.Rows = append(table.Rows, row)
	}

	switch spec.Mode {
	case JoinLeft:
		for pi := range left {
			if len(matches[pi]) == 0 {
				emit(pi, -1)
				continue
			}
			for _, gi := range matches[pi] {
				emit(pi, gi)
			}
		}

	case JoinInner:
		for pi := range left {
			for _, gi := range matches[pi] {
				emit(pi, gi)
			}
		}

	case JoinRight:
		// Invert the match lists so rows follow polygon order.
		matched := make([]bool, len(right))
		byPolygon := make([][]int, len(right))
		for pi, gis := range matches {
			for _, gi := range gis {
				byPolygon[gi] = append(byPolygon[gi], pi)
				matched[gi] = true
			}
		}
		for gi := range right {
			if !matched[gi] {
				table.Rows = append(table.Rows, PairRow{
					PointID:   spec.Missing,
					PolygonID: right[gi].id,
					Geometry:  right[gi].geom,
				})
				continue
			}
			for _, pi := range byPolygon[gi] {
				emit(pi, gi)
			}
		}

	default:
		return nil, fmt.Errorf("unsupported join mode %q", spec.Mode)
	}

	return table, nil
}

// leftEntry is a point feature prepared for joining.
type leftEntry struct {
	id      string
	pt      orb.Point
	feature *Feature
}

// rightEntry is an area feature prepared for joining.
type rightEntry struct {
	id   string
	geom orb.Geometry
}

// collectPoints extracts identity and coordinates from every point feature.
func collectPoints(points *Collection) ([]leftEntry, error) {
	entries := make([]leftEntry, 0, len(points.Features))
	for i, f := range points.Features {
		id, ok := points.IDOf(f)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d of %q lacks column %q", ErrSchemaMismatch, i, points.Name, points.IDColumn)
		}
		pt, ok := orbPoint(f.Geometry)
		if !ok {
			return nil, fmt.Errorf("collection %q: feature %d: expected Point geometry", points.Name, i)
		}
		entries = append(entries, leftEntry{id: id, pt: pt, feature: f})
	}
	return entries, nil
}

// collectAreas extracts identity and geometry from every polygon feature.
func collectAreas(polygons *Collection) ([]rightEntry, error) {
	entries := make([]rightEntry, 0, len(polygons.Features))
	for i, f := range polygons.Features {
		id, ok := polygons.IDOf(f)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d of %q lacks column %q", ErrSchemaMismatch, i, polygons.Name, polygons.IDColumn)
		}
		geom, ok := orbGeometry(f.Geometry)
		if !ok {
			return nil, fmt.Errorf("collection %q: feature %d: unsupported geometry", polygons.Name, i)
		}
		entries = append(entries, rightEntry{id: id, geom: geom})
	}
	return entries, nil
}

// keepAttrs copies the kept attribute cells from a feature. Missing cells
// are recorded as nil so formatting can substitute the sentinel.
func keepAttrs(f *Feature, extras []string) map[string]interface{} {
	if len(extras) == 0 {
		return nil
	}
	attrs := make(map[string]interface{}, len(extras))
	for _, col := range extras {
		if v, ok := f.Properties[col]; ok {
			attrs[col] = v
		} else {
			attrs[col] = nil
		}
	}
	return attrs
}

func coords(entries []leftEntry) []orb.Point {
	pts := make([]orb.Point, len(entries))
	for i, e := range entries {
		pts[i] = e.pt
	}
	return pts
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
