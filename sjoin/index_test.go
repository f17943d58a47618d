package sjoin

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestPointIndex_Candidates(t *testing.T) {
	pts := []orb.Point{{0, 0}, {5, 5}, {10, 10}, {0.5, 0.5}}

	idx, err := newPointIndex(pts)
	if err != nil {
		t.Fatalf("newPointIndex: %v", err)
	}

	got := idx.candidates(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}})
	want := []int{0, 3}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPointIndex_Empty(t *testing.T) {
	idx, err := newPointIndex(nil)
	if err != nil {
		t.Fatalf("newPointIndex: %v", err)
	}
	if got := idx.candidates(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}); got != nil {
		t.Errorf("candidates on empty index = %v, want nil", got)
	}
}

func TestPointIndex_SinglePoint(t *testing.T) {
	// A single point has a zero-area extent; the padded bound must still
	// admit it.
	idx, err := newPointIndex([]orb.Point{{3, 3}})
	if err != nil {
		t.Fatalf("newPointIndex: %v", err)
	}

	got := idx.candidates(orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{4, 4}})
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("candidates = %v, want [0]", got)
	}
}

func TestPointIndex_DuplicateCoordinates(t *testing.T) {
	// Coincident points keep distinct indices.
	idx, err := newPointIndex([]orb.Point{{1, 1}, {1, 1}})
	if err != nil {
		t.Fatalf("newPointIndex: %v", err)
	}

	got := idx.candidates(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}})
	if len(got) != 2 {
		t.Fatalf("candidates = %v, want both indices", got)
	}
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("candidates = %v, want [0 1]", got)
	}
}
