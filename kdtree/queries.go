package kdtree

import (
	"math"

	"github.com/deepfabric/kdquad/internal/vec3"
)

// Infinity is the max-squared-distance ceiling a caller passes to
// express "no distance bound" on FindClosest and the directional /
// segment queries.
const Infinity = math.MaxFloat64

// perpDist2 returns the squared perpendicular distance from p to the
// infinite line {q + t*dir}, dir pre-normalized by the caller.
func perpDist2(p, q, dir vec3.Point) float64 {
	v := vec3.Sub(p, q)
	d := vec3.FromArray(dir)
	t := v.X*d.X + v.Y*d.Y + v.Z*d.Z
	proj := vec3.ToArray(d)
	for i := 0; i < 3; i++ {
		proj[i] *= t
	}
	rem := vec3.Point{v.X - proj[0], v.Y - proj[1], v.Z - proj[2]}
	return rem[0]*rem[0] + rem[1]*rem[1] + rem[2]*rem[2]
}

// lineDist2LowerBound under-approximates the squared distance from a
// box to the infinite line {q + t*dir}: every point in the box lies
// within halfDiagonal of the box center, so the box can't be farther
// from the line than (distance from center to line) - halfDiagonal.
// This is deliberately a conservative (never-too-large) estimate, per
// spec: it only ever causes extra, still-correct descents, never a
// wrongful prune.
func lineDist2LowerBound(b box, q, dir vec3.Point) float64 {
	d := math.Sqrt(perpDist2(b.center(), q, dir)) - b.halfDiagonal()
	if d < 0 {
		return 0
	}
	return d * d
}

// FindClosest returns the index of the live point nearest q within
// maxDist2, or (0, false) if none lies that close.
func (t *Tree) FindClosest(q vec3.Point, maxDist2 float64, s *Scratch) (int, bool) {
	bestIdx := -1
	bestD2 := maxDist2
	t.findClosest(t.root, q, &bestIdx, &bestD2)
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

func (t *Tree) findClosest(n *node, q vec3.Point, bestIdx *int, bestD2 *float64) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			d2 := vec3.Dist2(t.points.At(i), q)
			if d2 < *bestD2 {
				*bestD2 = d2
				*bestIdx = i
			}
		}
		return
	}
	near, far := n.left, n.right
	if q[n.axis] > n.split {
		near, far = n.right, n.left
	}
	t.findClosest(near, q, bestIdx, bestD2)
	d := q[n.axis] - n.split
	if d*d < *bestD2 {
		t.findClosest(far, q, bestIdx, bestD2)
	}
}

// FindClosestAlongDir returns the index of the live point nearest the
// infinite line through q in direction dir (pre-normalized), within
// maxDist2 of perpendicular distance.
func (t *Tree) FindClosestAlongDir(q, dir vec3.Point, maxDist2 float64, s *Scratch) (int, bool) {
	bestIdx := -1
	bestD2 := maxDist2
	t.findClosestAlongDir(t.root, q, dir, &bestIdx, &bestD2)
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

func (t *Tree) findClosestAlongDir(n *node, q, dir vec3.Point, bestIdx *int, bestD2 *float64) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			d2 := perpDist2(t.points.At(i), q, dir)
			if d2 < *bestD2 {
				*bestD2 = d2
				*bestIdx = i
			}
		}
		return
	}
	near, far := n.left, n.right
	if q[n.axis] > n.split {
		near, far = n.right, n.left
	}
	t.findClosestAlongDir(near, q, dir, bestIdx, bestD2)
	if far != nil && lineDist2LowerBound(far.box, q, dir) < *bestD2 {
		t.findClosestAlongDir(far, q, dir, bestIdx, bestD2)
	}
}

// KNearestNeighbors returns up to k indices of the live points
// nearest q. Result order is unspecified; when fewer than k points
// exist, the shorter result is returned.
func (t *Tree) KNearestNeighbors(q vec3.Point, k int, s *Scratch) []int {
	if k <= 0 {
		return nil
	}
	s.heap.reset(k)
	t.knn(t.root, q, &s.heap)
	out := s.resetResults()
	for _, it := range s.heap.items {
		out = append(out, it.idx)
	}
	return out
}

func (t *Tree) knn(n *node, q vec3.Point, h *maxHeap) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			h.offer(i, vec3.Dist2(t.points.At(i), q))
		}
		return
	}
	near, far := n.left, n.right
	if q[n.axis] > n.split {
		near, far = n.right, n.left
	}
	t.knn(near, q, h)
	radius2 := math.Inf(1)
	if h.full() {
		radius2 = h.worst()
	}
	d := q[n.axis] - n.split
	if d*d < radius2 {
		t.knn(far, q, h)
	}
}

// FixedRangeSearch returns every live index within squared distance
// r2 of q.
func (t *Tree) FixedRangeSearch(q vec3.Point, r2 float64, s *Scratch) []int {
	out := s.resetResults()
	t.fixedRangeSearch(t.root, q, r2, &out)
	s.results = out
	return out
}

func (t *Tree) fixedRangeSearch(n *node, q vec3.Point, r2 float64, out *[]int) {
	if n == nil {
		return
	}
	if n.box.minDist2(q) > r2 {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			if vec3.Dist2(t.points.At(i), q) <= r2 {
				*out = append(*out, i)
			}
		}
		return
	}
	t.fixedRangeSearch(n.left, q, r2, out)
	t.fixedRangeSearch(n.right, q, r2, out)
}

// FixedRangeSearchAlongDir returns every live index within squared
// perpendicular distance r2 of the infinite line through q in
// direction dir.
func (t *Tree) FixedRangeSearchAlongDir(q, dir vec3.Point, r2 float64, s *Scratch) []int {
	out := s.resetResults()
	t.fixedRangeSearchAlongDir(t.root, q, dir, r2, &out)
	s.results = out
	return out
}

func (t *Tree) fixedRangeSearchAlongDir(n *node, q, dir vec3.Point, r2 float64, out *[]int) {
	if n == nil {
		return
	}
	if lineDist2LowerBound(n.box, q, dir) > r2 {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			if perpDist2(t.points.At(i), q, dir) <= r2 {
				*out = append(*out, i)
			}
		}
		return
	}
	t.fixedRangeSearchAlongDir(n.left, q, dir, r2, out)
	t.fixedRangeSearchAlongDir(n.right, q, dir, r2, out)
}

// FixedRangeSearchBetween2Points returns every live index within the
// cylindrical tube of squared radius r2 around the line through q and
// q2, restricted to the inclusive projection range [0, |q2-q|].
func (t *Tree) FixedRangeSearchBetween2Points(q, q2 vec3.Point, r2 float64, s *Scratch) []int {
	d := vec3.Sub(q2, q)
	len2 := d.X*d.X + d.Y*d.Y + d.Z*d.Z
	length := math.Sqrt(len2)
	out := s.resetResults()
	if length == 0 {
		// degenerate segment: fall back to a point-radius search.
		t.fixedRangeSearch(t.root, q, r2, &out)
		s.results = out
		return out
	}
	unit := vec3.ToArray(vec3.Normalize(d))
	t.fixedRangeSearchBetween2Points(t.root, q, unit, length, r2, &out)
	s.results = out
	return out
}

func (t *Tree) fixedRangeSearchBetween2Points(n *node, q, dir vec3.Point, length, r2 float64, out *[]int) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			p := t.points.At(i)
			v := vec3.Sub(p, q)
			d := vec3.FromArray(dir)
			proj := v.X*d.X + v.Y*d.Y + v.Z*d.Z
			if proj < 0 || proj > length {
				continue
			}
			perp2 := (v.X*v.X + v.Y*v.Y + v.Z*v.Z) - proj*proj
			if perp2 <= r2 {
				*out = append(*out, i)
			}
		}
		return
	}
	t.fixedRangeSearchBetween2Points(n.left, q, dir, length, r2, out)
	t.fixedRangeSearchBetween2Points(n.right, q, dir, length, r2, out)
}

// AABBSearch returns every live index whose coordinates satisfy
// lo <= p <= hi componentwise. Returns ErrInvalidArgument if the box
// is inverted along any axis.
func (t *Tree) AABBSearch(lo, hi vec3.Point, s *Scratch) ([]int, error) {
	for a := 0; a < 3; a++ {
		if lo[a] > hi[a] {
			return nil, invalidArgument("AABBSearch: lo[%d]=%v > hi[%d]=%v", a, lo[a], a, hi[a])
		}
	}
	out := s.resetResults()
	t.aabbSearch(t.root, lo, hi, &out)
	s.results = out
	return out, nil
}

func (t *Tree) aabbSearch(n *node, lo, hi vec3.Point, out *[]int) {
	if n == nil || n.box.disjointFrom(lo, hi) {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			p := t.points.At(i)
			inside := true
			for a := 0; a < 3; a++ {
				if p[a] < lo[a] || p[a] > hi[a] {
					inside = false
					break
				}
			}
			if inside {
				*out = append(*out, i)
			}
		}
		return
	}
	t.aabbSearch(n.left, lo, hi, out)
	t.aabbSearch(n.right, lo, hi, out)
}

// segmentGeometry bundles the derived quantities both segment queries
// need: direction, length, tube center and combined prune radius.
type segmentGeometry struct {
	dir     vec3.Point
	length  float64
	len2    float64
	center  vec3.Point
	pruneR2 float64
}

func segGeometry(q, q2 vec3.Point, tubeR2 float64) segmentGeometry {
	d := vec3.Sub(q2, q)
	len2 := d.X*d.X + d.Y*d.Y + d.Z*d.Z
	length := math.Sqrt(len2)
	var dir vec3.Point
	if length > 0 {
		dir = vec3.ToArray(vec3.Scaled(d, 1/length))
	}
	center := vec3.Point{(q[0] + q2[0]) / 2, (q[1] + q2[1]) / 2, (q[2] + q2[2]) / 2}
	half := 0.5*length + math.Sqrt(tubeR2)
	return segmentGeometry{dir: dir, length: length, len2: len2, center: center, pruneR2: half * half}
}

// distToSegment2 returns the squared Euclidean distance d2 from p to
// the segment [q, q2] described by geom, the unclamped projection
// parameter t of p along the segment direction (0 at q, geom.length at
// q2), and the squared perpendicular distance perp2 from p to the
// infinite line through the segment.
func distToSegment2(p, q vec3.Point, geom segmentGeometry) (d2 float64, t float64, perp2 float64) {
	v := vec3.Sub(p, q)
	d := vec3.FromArray(geom.dir)
	t = v.X*d.X + v.Y*d.Y + v.Z*d.Z
	perp2 = (v.X*v.X + v.Y*v.Y + v.Z*v.Z) - t*t
	switch {
	case t < 0:
		d2 = vec3.Dist2(p, q)
	case t > geom.length:
		q2 := vec3.Point{q[0] + geom.dir[0]*geom.length, q[1] + geom.dir[1]*geom.length, q[2] + geom.dir[2]*geom.length}
		d2 = vec3.Dist2(p, q2)
	default:
		d2 = perp2
	}
	return
}

// SegmentSearchAll returns every live index within squared distance
// r2 of the line segment [q, q2].
func (t *Tree) SegmentSearchAll(q, q2 vec3.Point, r2 float64, s *Scratch) []int {
	geom := segGeometry(q, q2, r2)
	out := s.resetResults()
	t.segmentSearchAll(t.root, q, geom, r2, &out)
	s.results = out
	return out
}

func (t *Tree) segmentSearchAll(n *node, q vec3.Point, geom segmentGeometry, r2 float64, out *[]int) {
	if n == nil || n.box.minDist2(geom.center) > geom.pruneR2 {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			d2, _, _ := distToSegment2(t.points.At(i), q, geom)
			if d2 <= r2 {
				*out = append(*out, i)
			}
		}
		return
	}
	t.segmentSearchAll(n.left, q, geom, r2, out)
	t.segmentSearchAll(n.right, q, geom, r2, out)
}

// SegmentSearch1NearestPoint returns the single live index nearest
// the line segment [q, q2], among those within squared distance r2 of
// it, or (0, false) if none qualifies. Among candidates at exactly the
// same distance to the segment, the one nearest the segment's
// midpoint is returned.
func (t *Tree) SegmentSearch1NearestPoint(q, q2 vec3.Point, r2 float64, s *Scratch) (int, bool) {
	geom := segGeometry(q, q2, r2)
	length0 := math.Sqrt(vec3.Dist2(q, q2))
	bestD2 := (length0 + math.Sqrt(r2)) * (length0 + math.Sqrt(r2))
	bestIdx := -1
	t.segmentSearch1NN(t.root, q, geom, r2, &bestIdx, &bestD2)
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

func (t *Tree) segmentSearch1NN(n *node, q vec3.Point, geom segmentGeometry, r2 float64, bestIdx *int, bestD2 *float64) {
	if n == nil {
		return
	}
	half := 0.5*geom.length + math.Sqrt(*bestD2)
	if n.box.minDist2(geom.center) > half*half {
		return
	}
	if n.leaf {
		for _, i := range n.indices {
			p := t.points.At(i)
			d2, _, _ := distToSegment2(p, q, geom)
			if d2 > r2 {
				continue
			}
			// At an exact tie in distance to the segment, the candidate
			// nearer the segment's midpoint wins.
			if d2 < *bestD2 || (d2 == *bestD2 && (*bestIdx < 0 ||
				vec3.Dist2(p, geom.center) < vec3.Dist2(t.points.At(*bestIdx), geom.center))) {
				*bestD2 = d2
				*bestIdx = i
			}
		}
		return
	}
	t.segmentSearch1NN(n.left, q, geom, r2, bestIdx, bestD2)
	t.segmentSearch1NN(n.right, q, geom, r2, bestIdx, bestD2)
}
