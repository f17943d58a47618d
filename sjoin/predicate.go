package sjoin

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Predicate is a binary spatial relation evaluated between a point and an
// area geometry.
type Predicate string

const (
	// PredicateIntersects holds when the point lies in the area's interior
	// or on its boundary.
	PredicateIntersects Predicate = "intersects"

	// PredicateWithin holds when the point lies strictly in the area's
	// interior. A point exactly on the boundary is not within.
	PredicateWithin Predicate = "within"

	// PredicateTouches holds when the point lies on the area's boundary
	// but not in its interior.
	PredicateTouches Predicate = "touches"

	// PredicateContains holds when the point contains the area, which for
	// a point on the left side is only possible when the area is
	// degenerate to that exact point.
	PredicateContains Predicate = "contains"
)

// boundaryEpsilon is the tolerance for deciding that a point lies on a
// polygon edge. Coordinates within this distance of an edge count as
// boundary hits.
const boundaryEpsilon = 1e-9

// ParsePredicate validates a predicate name. Unknown names fail with
// ErrUnsupportedPredicate.
func ParsePredicate(s string) (Predicate, error) {
	p := Predicate(s)
	if !p.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPredicate, s)
	}
	return p, nil
}

func (p Predicate) valid() bool {
	switch p {
	case PredicateIntersects, PredicateWithin, PredicateTouches, PredicateContains:
		return true
	}
	return false
}

// Evaluate applies the predicate to a point (left) and an area geometry
// (right). Supported right-side geometries are orb.Polygon,
// orb.MultiPolygon, and orb.Point; anything else evaluates to false.
func (p Predicate) Evaluate(pt orb.Point, g orb.Geometry) bool {
	switch area := g.(type) {
	case orb.Polygon:
		return p.evaluate(planar.PolygonContains(area, pt), polygonBoundaryContains(area, pt))
	case orb.MultiPolygon:
		inside := planar.MultiPolygonContains(area, pt)
		boundary := false
		for _, poly := range area {
			if polygonBoundaryContains(poly, pt) {
				boundary = true
				break
			}
		}
		return p.evaluate(inside, boundary)
	case orb.Point:
		// Point-point relations: equal points intersect, are within each
		// other, and contain each other; they never merely touch.
		eq := orb.Equal(pt, area)
		switch p {
		case PredicateIntersects, PredicateWithin, PredicateContains:
			return eq
		default:
			return false
		}
	default:
		return false
	}
}

// evaluate combines an interior-containment result with a boundary result.
// The inside flag may or may not already include the boundary depending on
// the containment routine; treating the two independently makes every
// predicate exact either way.
func (p Predicate) evaluate(inside, boundary bool) bool {
	switch p {
	case PredicateIntersects:
		return inside || boundary
	case PredicateWithin:
		return inside && !boundary
	case PredicateTouches:
		return boundary
	case PredicateContains:
		// A point can only contain an area degenerate to itself, which
		// never occurs with real polygons.
		return false
	}
	return false
}

// polygonBoundaryContains reports whether the point lies on any edge of any
// ring of the polygon, within boundaryEpsilon.
func polygonBoundaryContains(poly orb.Polygon, pt orb.Point) bool {
	for _, ring := range poly {
		if len(ring) < 2 {
			continue
		}
		for i := 0; i < len(ring)-1; i++ {
			if pointOnSegment(ring[i], ring[i+1], pt) {
				return true
			}
		}
		// Rings may arrive unclosed; test the closing edge explicitly.
		first, last := ring[0], ring[len(ring)-1]
		if first != last && pointOnSegment(last, first, pt) {
			return true
		}
	}
	return false
}

// pointOnSegment reports whether p lies on the segment from a to b.
func pointOnSegment(a, b, p orb.Point) bool {
	// Collinearity via cross product.
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	segLen := math.Hypot(b[0]-a[0], b[1]-a[1])
	if segLen == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1]) <= boundaryEpsilon
	}
	if math.Abs(cross)/segLen > boundaryEpsilon {
		return false
	}

	// Projection must fall inside the segment.
	dot := (p[0]-a[0])*(b[0]-a[0]) + (p[1]-a[1])*(b[1]-a[1])
	if dot < -boundaryEpsilon {
		return false
	}
	if dot > segLen*segLen+boundaryEpsilon {
		return false
	}
	return true
}
