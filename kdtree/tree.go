package kdtree

import (
	"math"

	"github.com/deepfabric/kdquad/internal/vec3"
)

// DefaultBucketSize is the leaf capacity used when callers don't pick
// one explicitly.
const DefaultBucketSize = 10

// box is the axis-aligned bounding box enclosing a node's indices at
// build time.
type box struct {
	lo, hi vec3.Point
}

func boxOf(pts PointSet, idx []int) box {
	p0 := pts.At(idx[0])
	b := box{lo: p0, hi: p0}
	for _, i := range idx[1:] {
		p := pts.At(i)
		for a := 0; a < 3; a++ {
			if p[a] < b.lo[a] {
				b.lo[a] = p[a]
			}
			if p[a] > b.hi[a] {
				b.hi[a] = p[a]
			}
		}
	}
	return b
}

func (b box) maxExtentAxis() int {
	best := 0
	bestExtent := b.hi[0] - b.lo[0]
	for a := 1; a < 3; a++ {
		extent := b.hi[a] - b.lo[a]
		if extent > bestExtent {
			bestExtent = extent
			best = a
		}
	}
	return best
}

func (b box) mid(axis int) float64 { return (b.lo[axis] + b.hi[axis]) / 2 }

// minDist2 returns the squared distance from q to the nearest point
// of b (0 if q is inside b).
func (b box) minDist2(q vec3.Point) float64 {
	var d2 float64
	for a := 0; a < 3; a++ {
		if q[a] < b.lo[a] {
			d := b.lo[a] - q[a]
			d2 += d * d
		} else if q[a] > b.hi[a] {
			d := q[a] - b.hi[a]
			d2 += d * d
		}
	}
	return d2
}

// center returns the box's geometric center.
func (b box) center() vec3.Point {
	return vec3.Point{(b.lo[0] + b.hi[0]) / 2, (b.lo[1] + b.hi[1]) / 2, (b.lo[2] + b.hi[2]) / 2}
}

// halfDiagonal returns half the length of the box's space diagonal:
// every point in the box is within this distance of its center.
func (b box) halfDiagonal() float64 {
	dx := b.hi[0] - b.lo[0]
	dy := b.hi[1] - b.lo[1]
	dz := b.hi[2] - b.lo[2]
	return 0.5 * math.Sqrt(dx*dx+dy*dy+dz*dz)
}

func (b box) disjointFrom(lo, hi vec3.Point) bool {
	for a := 0; a < 3; a++ {
		if b.hi[a] < lo[a] || b.lo[a] > hi[a] {
			return true
		}
	}
	return false
}

// node is either a leaf owning a contiguous block of point indices or
// an internal node owning two children, a split axis/value, and the
// bounding box of everything reachable beneath it.
type node struct {
	box box

	leaf bool

	// leaf fields
	indices []int

	// internal fields
	axis        int
	split       float64
	left, right *node
}

// Tree is a root node plus the borrowed PointSet and the live-count M.
type Tree struct {
	root       *node
	points     PointSet
	bucketSize int
	live       int
}

// New builds a k-d tree over pts with the given leaf bucket size
// (must be >= 1). The tree borrows pts for its lifetime and never
// mutates it.
func New(pts PointSet, bucketSize int) (*Tree, error) {
	if bucketSize < 1 {
		return nil, invalidArgument("bucket size %d must be >= 1", bucketSize)
	}
	n := pts.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return &Tree{
		root:       build(pts, idx, bucketSize),
		points:     pts,
		bucketSize: bucketSize,
		live:       n,
	}, nil
}

// Len returns the current live-count M <= N.
func (t *Tree) Len() int { return t.live }

func build(pts PointSet, idx []int, bucketSize int) *node {
	b := boxOf(pts, idx)
	if len(idx) <= bucketSize {
		return &node{box: b, leaf: true, indices: idx}
	}

	axis := b.maxExtentAxis()
	mid := b.mid(axis)

	left := idx[:0:0]
	right := idx[:0:0]
	for _, i := range idx {
		if pts.At(i)[axis] <= mid {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	// Fall back to a leaf when the midpoint split can't separate the
	// indices (duplicate-heavy clusters): otherwise we'd recurse
	// forever on an unsplittable range.
	if len(left) == 0 || len(right) == 0 {
		return &node{box: b, leaf: true, indices: idx}
	}

	return &node{
		box:   b,
		leaf:  false,
		axis:  axis,
		split: mid,
		left:  build(pts, left, bucketSize),
		right: build(pts, right, bucketSize),
	}
}
