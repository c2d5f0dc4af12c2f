package vec3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCircumcircleOfOctantFace(t *testing.T) {
	ex := r3.Vec{X: 1}
	ey := r3.Vec{Y: 1}
	ez := r3.Vec{Z: 1}

	center, theta := Circumcircle(ex, ey, ez)

	want := Normalize(r3.Add(r3.Add(ex, ey), ez))
	assert.InDelta(t, want.X, center.X, 1e-9)
	assert.InDelta(t, want.Y, center.Y, 1e-9)
	assert.InDelta(t, want.Z, center.Z, 1e-9)
	assert.InDelta(t, AngularDistance(center, ex), theta, 1e-9)
}

func TestSphericalTriangleAreaOctantIsOneEighthSphere(t *testing.T) {
	ex := r3.Vec{X: 1}
	ey := r3.Vec{Y: 1}
	ez := r3.Vec{Z: 1}

	area := SphericalTriangleArea(ex, ey, ez)
	assert.InDelta(t, math.Pi/2, area, 1e-9)
}

func TestAngularDistanceClampsOvershoot(t *testing.T) {
	v := Normalize(r3.Vec{X: 1, Y: 1, Z: 1})
	assert.InDelta(t, 0, AngularDistance(v, v), 1e-12)
}

func TestTripleProductSignMatchesOrientation(t *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{Y: 1}
	c := r3.Vec{Z: 1}
	assert.Greater(t, TripleProduct(a, b, c), 0.0)
	assert.Less(t, TripleProduct(b, a, c), 0.0)
}
