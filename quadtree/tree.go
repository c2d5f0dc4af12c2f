// Package quadtree implements a spherical quadtree indexing unit
// directions: the eight faces of an octahedron inscribed in the unit
// sphere, each recursively refined into four triangular quadtree
// children, supporting angular-radius search and area-proportional
// stochastic downsampling.
package quadtree

import (
	"github.com/deepfabric/kdquad/internal/vec3"
	"gonum.org/v1/gonum/spatial/r3"
)

// leafCutoff bounds the number of indices a quad leaf may hold before
// it's worth refining further; degenerateCcr floors the circumcircle
// angular half-extent below which refining further would recurse
// forever on coincident points.
const (
	leafCutoff    = 100
	degenerateCcr = 1e-10
)

// pairKey is a canonically-ordered (smaller index first) vertex pair,
// used as the MiddleMap key so adjacent triangles share subdivided
// edge midpoints.
type pairKey struct{ a, b int }

func canonical(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// vertexPool is the growable list of unit vectors serving as shared
// triangle corners, plus the MiddleMap recording already-computed
// edge midpoints.
type vertexPool struct {
	verts  []r3.Vec
	middle map[pairKey]int
}

func (vp *vertexPool) midpoint(a, b int) int {
	key := canonical(a, b)
	if i, ok := vp.middle[key]; ok {
		return i
	}
	m := r3.Scale(0.5, r3.Add(vp.verts[a], vp.verts[b]))
	m = vec3.Normalize(m)
	vp.verts = append(vp.verts, m)
	i := len(vp.verts) - 1
	vp.middle[key] = i
	return i
}

// node is a spherical triangle: either an internal node owning four
// children, or a leaf owning the point indices classified into it.
type node struct {
	v1, v2, v3 int
	ccp        r3.Vec
	ccr        float64
	area       float64
	leaf       bool
	indices    []int
	children   [4]*node
}

// Tree is eight root nodes (one per octahedron octant) over the
// shared vertex pool.
type Tree struct {
	vp    *vertexPool
	pts   []r3.Vec
	roots [8]*node
}

// Build normalizes every point in pts to unit length and indexes the
// resulting directions into a spherical quadtree.
func Build(pts []vec3.Point) *Tree {
	unit := make([]r3.Vec, len(pts))
	for i, p := range pts {
		unit[i] = vec3.Normalize(vec3.FromArray(p))
	}

	vp := &vertexPool{
		verts: []r3.Vec{
			{X: -1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
			{X: 0, Y: -1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: -1}, {X: 0, Y: 0, Z: 1},
		},
		middle: make(map[pairKey]int),
	}

	// Eight octants of the octahedron; vertex winding is flipped per
	// octant so the outward normal always points away from the
	// sphere center (right-hand rule) — equivalent to swapping two
	// corners exactly when the octant's sign-parity is even.
	var mainVerts [8][3]int
	for xi, x := range []int{-1, 1} {
		for yi, y := range []int{-1, 1} {
			for zi, z := range []int{-1, 1} {
				// v1 in {0,1}, v2 in {2,3}, v3 in {4,5}
				v1, v2, v3 := xi, 2+yi, 4+zi
				idx := xi<<2 | yi<<1 | zi
				if !((x > 0) != (y > 0) != (z > 0)) {
					v1, v3 = v3, v1
				}
				mainVerts[idx] = [3]int{v1, v2, v3}
			}
		}
	}

	var buckets [8][]int
	for i, p := range unit {
		buckets[octant(p)] = append(buckets[octant(p)], i)
	}

	t := &Tree{vp: vp, pts: unit}
	for i := 0; i < 8; i++ {
		mv := mainVerts[i]
		t.roots[i] = buildNode(mv[0], mv[1], mv[2], buckets[i], unit, vp)
	}
	return t
}

// octant classifies a unit vector into one of the eight octahedron
// faces by the signs of its three components.
func octant(p r3.Vec) int {
	idx := 0
	if p.X > 0 {
		idx |= 1 << 2
	}
	if p.Y > 0 {
		idx |= 1 << 1
	}
	if p.Z > 0 {
		idx |= 1
	}
	return idx
}

func buildNode(v1, v2, v3 int, indices []int, pts []r3.Vec, vp *vertexPool) *node {
	w1, w2, w3 := vp.verts[v1], vp.verts[v2], vp.verts[v3]
	ccp, ccr := vec3.Circumcircle(w1, w2, w3)
	area := vec3.SphericalTriangleArea(w1, w2, w3)

	n := &node{v1: v1, v2: v2, v3: v3, ccp: ccp, ccr: ccr, area: area}
	if len(indices) <= leafCutoff || ccr < degenerateCcr {
		n.leaf = true
		n.indices = indices
		return n
	}

	v4 := vp.midpoint(v1, v2)
	v5 := vp.midpoint(v2, v3)
	v6 := vp.midpoint(v3, v1)
	w4, w5, w6 := vp.verts[v4], vp.verts[v5], vp.verts[v6]

	var bucket [4][]int
	for _, i := range indices {
		p := pts[i]
		switch {
		case vec3.TripleProduct(w4, w6, p) >= 0:
			bucket[0] = append(bucket[0], i)
		case vec3.TripleProduct(w5, w4, p) >= 0:
			bucket[1] = append(bucket[1], i)
		case vec3.TripleProduct(w6, w5, p) >= 0:
			bucket[2] = append(bucket[2], i)
		default:
			bucket[3] = append(bucket[3], i)
		}
	}

	n.children[0] = buildNode(v1, v4, v6, bucket[0], pts, vp)
	n.children[1] = buildNode(v2, v5, v4, bucket[1], pts, vp)
	n.children[2] = buildNode(v3, v6, v5, bucket[2], pts, vp)
	n.children[3] = buildNode(v4, v5, v6, bucket[3], pts, vp)
	return n
}
