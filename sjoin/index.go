package sjoin

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// indexPadding expands the quadtree bound beyond the point extent so that
// degenerate extents (a single point, collinear points) still produce a
// valid non-zero-area bound.
const indexPadding = 1.0

// pointIndex provides candidate lookup for point features by bounding box.
// It backs the pairwise join so each polygon only tests points whose
// coordinates fall inside the polygon's bound.
type pointIndex struct {
	tree  *quadtree.Quadtree
	items []*indexItem
}

// indexItem associates a point with its position in the source collection.
type indexItem struct {
	idx int
	pt  orb.Point
}

// Point implements orb.Pointer.
func (it *indexItem) Point() orb.Point {
	return it.pt
}

// newPointIndex builds a quadtree over the given points. The point order is
// preserved via the stored indices.
func newPointIndex(pts []orb.Point) (*pointIndex, error) {
	if len(pts) == 0 {
		return &pointIndex{}, nil
	}

	bound := orb.MultiPoint(pts).Bound()
	bound = bound.Pad(indexPadding)

	tree := quadtree.New(bound)
	items := make([]*indexItem, len(pts))
	for i, p := range pts {
		items[i] = &indexItem{idx: i, pt: p}
		if err := tree.Add(items[i]); err != nil {
			return nil, fmt.Errorf("indexing point %d: %w", i, err)
		}
	}

	return &pointIndex{tree: tree, items: items}, nil
}

// candidates returns the indices of all points whose coordinates fall
// inside the given bound, in ascending source order.
func (idx *pointIndex) candidates(b orb.Bound) []int {
	if idx.tree == nil {
		return nil
	}

	found := idx.tree.InBound(nil, b)
	result := make([]int, 0, len(found))
	for _, ptr := range found {
		result = append(result, ptr.(*indexItem).idx)
	}
	sort.Ints(result)
	return result
}
