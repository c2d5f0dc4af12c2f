// Package vec3 holds the elementary 3-vector math shared by the
// indexed k-d tree (kdtree) and the spherical quadtree (quadtree)
// cores: plain Euclidean ops plus the two geometric predicates
// (circumcircle-of-three-on-a-sphere, spherical-triangle area) that
// QuadCore's build needs.
//
// Coordinates cross the package boundary as [3]float64 (matching the
// "N×3 of f64" wire shape both cores expose); internally every
// cross/dot/normalize-heavy computation is lifted to gonum's r3.Vec.
package vec3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is the coordinate shape both cores accept and return.
type Point = [3]float64

// FromArray lifts a [3]float64 to a gonum r3.Vec.
func FromArray(p Point) r3.Vec { return r3.Vec{X: p[0], Y: p[1], Z: p[2]} }

// ToArray lowers a gonum r3.Vec back to [3]float64.
func ToArray(v r3.Vec) Point { return Point{v.X, v.Y, v.Z} }

// At returns component i (0=x, 1=y, 2=z) of v.
func At(v r3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Dist2 returns the squared Euclidean distance between a and b.
func Dist2(a, b Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// Sub returns a-b as a vector.
func Sub(a, b Point) r3.Vec { return r3.Sub(FromArray(a), FromArray(b)) }

// Scaled returns v scaled by k.
func Scaled(v r3.Vec, k float64) r3.Vec { return r3.Scale(k, v) }

// Normalize scales v to unit length. The zero vector is returned
// unchanged since it has no well-defined direction.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return v
	}
	return r3.Scale(1/n, v)
}

// TripleProduct returns (a x b) . c, used by QuadCore's child-triangle
// classification cascade.
func TripleProduct(a, b, c r3.Vec) float64 {
	return r3.Dot(r3.Cross(a, b), c)
}

// AngularDistance returns acos(a . b), clamping the dot product into
// [-1, 1] first to absorb floating-point overshoot for near-parallel
// unit vectors.
func AngularDistance(a, b r3.Vec) float64 {
	d := r3.Dot(a, b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

// Circumcircle computes the center (as a unit vector projected onto
// the sphere) and angular half-extent of the smallest spherical cap
// containing the three triangle corners v1, v2, v3 (each already a
// unit vector). This follows the planar-circumradius-then-asin
// derivation of the original spherical-quadtree implementation rather
// than a direct spherical formula.
func Circumcircle(v1, v2, v3 r3.Vec) (center r3.Vec, theta float64) {
	a := r3.Sub(v1, v3)
	b := r3.Sub(v2, v3)
	c := r3.Sub(a, b)
	la := r3.Norm(a)
	la2 := la * la
	lb := r3.Norm(b)
	lb2 := lb * lb
	axb := r3.Cross(a, b)
	laxb := r3.Norm(axb)
	laxb2 := 2 * laxb * laxb

	r := (la * lb * r3.Norm(c)) / (2 * laxb)
	theta = math.Asin(r)

	sa := r3.Scale(lb2, a)
	sb := r3.Scale(la2, b)
	di := r3.Sub(sb, sa)
	p := r3.Cross(di, axb)
	p = r3.Scale(1/laxb2, p)
	p = r3.Add(p, v3)
	center = Normalize(p)
	return
}

// SphericalTriangleArea returns the area on the unit sphere of the
// triangle with corners v1, v2, v3 (unit vectors), via the spherical
// excess A = alpha + beta + gamma - pi, where each interior angle is
// measured between the planes through the sphere center and each
// triangle edge.
func SphericalTriangleArea(v1, v2, v3 r3.Vec) float64 {
	a := r3.Sub(v1, v2)
	b := r3.Sub(v2, v3)
	c := r3.Sub(v3, v1)

	na := Normalize(r3.Cross(a, v1))
	nb := Normalize(r3.Cross(b, v2))
	nc := Normalize(r3.Cross(c, v3))

	clamp := func(x float64) float64 {
		if x > 1 {
			return 1
		}
		if x < -1 {
			return -1
		}
		return x
	}
	alpha := math.Pi - math.Acos(clamp(r3.Dot(na, nb)))
	beta := math.Pi - math.Acos(clamp(r3.Dot(nb, nc)))
	gamma := math.Pi - math.Acos(clamp(r3.Dot(nc, na)))
	return alpha + beta + gamma - math.Pi
}
