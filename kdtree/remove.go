package kdtree

import "github.com/deepfabric/kdquad/internal/vec3"

// Remove finds the live point with coordinates exactly equal to q
// (zero tolerance) and marks it removed by swap-and-truncate within
// its leaf's index block. Returns 1 if a point was removed, 0
// otherwise. At most one index is removed per call, even if several
// live indices share bit-identical coordinates. Callers must
// serialize Remove with all concurrent readers and with CollectPts.
func (t *Tree) Remove(q vec3.Point) int {
	if removeFrom(t.root, t.points, q) {
		t.live--
		return 1
	}
	return 0
}

func removeFrom(n *node, pts PointSet, q vec3.Point) bool {
	if n == nil {
		return false
	}
	if n.leaf {
		for i, idx := range n.indices {
			if pts.At(idx) == q {
				last := len(n.indices) - 1
				n.indices[i] = n.indices[last]
				n.indices = n.indices[:last]
				return true
			}
		}
		return false
	}
	if q[n.axis] <= n.split {
		if removeFrom(n.left, pts, q) {
			return true
		}
		return removeFrom(n.right, pts, q)
	}
	return removeFrom(n.right, pts, q)
}

// CollectPts returns the current live index set via an in-order leaf
// traversal. Callers must serialize CollectPts with any concurrent
// Remove.
func (t *Tree) CollectPts(s *Scratch) []int {
	out := s.resetResults()
	collect(t.root, &out)
	s.results = out
	return out
}

func collect(n *node, out *[]int) {
	if n == nil {
		return
	}
	if n.leaf {
		*out = append(*out, n.indices...)
		return
	}
	collect(n.left, out)
	collect(n.right, out)
}
