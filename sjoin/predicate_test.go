package sjoin

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// unitSquare returns a closed square ring from (0,0) to (1,1).
func unitSquare() orb.Polygon {
	return orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
}

func TestParsePredicate_Valid(t *testing.T) {
	for _, name := range []string{"intersects", "within", "touches", "contains"} {
		p, err := ParsePredicate(name)
		if err != nil {
			t.Errorf("ParsePredicate(%q): %v", name, err)
		}
		if string(p) != name {
			t.Errorf("ParsePredicate(%q) = %q", name, p)
		}
	}
}

func TestParsePredicate_Unsupported(t *testing.T) {
	_, err := ParsePredicate("crosses")
	if err == nil {
		t.Fatal("expected error for unsupported predicate, got nil")
	}
	if !errors.Is(err, ErrUnsupportedPredicate) {
		t.Errorf("expected ErrUnsupportedPredicate, got %v", err)
	}
}

func TestPredicate_InteriorPoint(t *testing.T) {
	poly := unitSquare()
	pt := orb.Point{0.5, 0.5}

	if !PredicateIntersects.Evaluate(pt, poly) {
		t.Error("interior point should intersect")
	}
	if !PredicateWithin.Evaluate(pt, poly) {
		t.Error("interior point should be within")
	}
	if PredicateTouches.Evaluate(pt, poly) {
		t.Error("interior point should not touch")
	}
}

func TestPredicate_BoundaryPoint(t *testing.T) {
	poly := unitSquare()

	// Edge midpoint and corner are both boundary cases.
	for _, pt := range []orb.Point{{0.5, 0}, {0, 0}, {1, 1}} {
		if !PredicateIntersects.Evaluate(pt, poly) {
			t.Errorf("boundary point %v should intersect", pt)
		}
		if PredicateWithin.Evaluate(pt, poly) {
			t.Errorf("boundary point %v should not be within", pt)
		}
		if !PredicateTouches.Evaluate(pt, poly) {
			t.Errorf("boundary point %v should touch", pt)
		}
	}
}

func TestPredicate_ExteriorPoint(t *testing.T) {
	poly := unitSquare()
	pt := orb.Point{2, 2}

	if PredicateIntersects.Evaluate(pt, poly) {
		t.Error("exterior point should not intersect")
	}
	if PredicateWithin.Evaluate(pt, poly) {
		t.Error("exterior point should not be within")
	}
	if PredicateTouches.Evaluate(pt, poly) {
		t.Error("exterior point should not touch")
	}
}

func TestPredicate_Contains(t *testing.T) {
	// A point never contains a real polygon.
	if PredicateContains.Evaluate(orb.Point{0.5, 0.5}, unitSquare()) {
		t.Error("point should not contain a polygon")
	}
}

func TestPredicate_MultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{
		unitSquare(),
		{orb.Ring{{10, 10}, {11, 10}, {11, 11}, {10, 11}, {10, 10}}},
	}

	if !PredicateWithin.Evaluate(orb.Point{10.5, 10.5}, mp) {
		t.Error("point in second member should be within the multipolygon")
	}
	if !PredicateTouches.Evaluate(orb.Point{10, 10.5}, mp) {
		t.Error("point on second member's edge should touch the multipolygon")
	}
	if PredicateIntersects.Evaluate(orb.Point{5, 5}, mp) {
		t.Error("point between members should not intersect")
	}
}

func TestPredicate_PointPoint(t *testing.T) {
	a := orb.Point{1, 2}

	if !PredicateIntersects.Evaluate(a, orb.Point{1, 2}) {
		t.Error("equal points should intersect")
	}
	if PredicateIntersects.Evaluate(a, orb.Point{1, 3}) {
		t.Error("distinct points should not intersect")
	}
	if PredicateTouches.Evaluate(a, orb.Point{1, 2}) {
		t.Error("equal points should not touch")
	}
}

func TestPointOnSegment(t *testing.T) {
	a := orb.Point{0, 0}
	b := orb.Point{10, 0}

	tests := []struct {
		name string
		p    orb.Point
		want bool
	}{
		{"midpoint", orb.Point{5, 0}, true},
		{"endpoint a", orb.Point{0, 0}, true},
		{"endpoint b", orb.Point{10, 0}, true},
		{"off line", orb.Point{5, 1}, false},
		{"beyond b", orb.Point{11, 0}, false},
		{"before a", orb.Point{-1, 0}, false},
	}

	for _, tt := range tests {
		if got := pointOnSegment(a, b, tt.p); got != tt.want {
			t.Errorf("%s: pointOnSegment = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPolygonBoundaryContains_UnclosedRing(t *testing.T) {
	// The closing edge must be tested even when the ring is not closed.
	poly := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}
	if !polygonBoundaryContains(poly, orb.Point{0, 0.5}) {
		t.Error("point on the implicit closing edge should be on the boundary")
	}
}
