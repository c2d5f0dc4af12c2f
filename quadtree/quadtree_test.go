package quadtree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/deepfabric/kdquad/internal/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"
)

func randomUnitPoints(rng *rand.Rand, n int) []vec3.Point {
	pts := make([]vec3.Point, n)
	for i := range pts {
		x := rng.NormFloat64()
		y := rng.NormFloat64()
		z := rng.NormFloat64()
		norm := math.Sqrt(x*x + y*y + z*z)
		pts[i] = vec3.Point{x / norm, y / norm, z / norm}
	}
	return pts
}

func TestSearchIsReflexive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := randomUnitPoints(rng, 2000)
	tr := Build(pts)

	for i := 0; i < 20; i++ {
		got := tr.Search(pts[i], 1e-6)
		assert.Contains(t, got, i)
	}
}

func TestLeavesPartitionFullIndexSet(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pts := randomUnitPoints(rng, 3000)
	tr := Build(pts)

	all := tr.GetAll()
	require.Len(t, all, len(pts))

	seen := make(map[int]int)
	for _, i := range all {
		seen[i]++
	}
	for i := range pts {
		assert.Equal(t, 1, seen[i], "index %d should appear exactly once across leaves", i)
	}
}

func TestSearchHemisphereSeedCase(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var pts []vec3.Point
	for len(pts) < 100 {
		y := rng.NormFloat64()
		z := rng.NormFloat64()
		x := math.Abs(rng.NormFloat64())
		norm := math.Sqrt(x*x + y*y + z*z)
		pts = append(pts, vec3.Point{x / norm, y / norm, z / norm})
	}
	tr := Build(pts)

	got := tr.Search(vec3.Point{1, 0, 0}, math.Pi/2+1e-9)
	assert.Len(t, got, 100)
}

func TestReduceRejectsNonPositiveNumpts(t *testing.T) {
	pts := randomUnitPoints(rand.New(rand.NewSource(4)), 10)
	tr := Build(pts)
	src := xrand.NewSource(0)
	rng := xrand.New(src)

	_, err := tr.Reduce(math.Pi/4, 0, rng)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReduceExpectedCountWithinTolerance(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pts := randomUnitPoints(rng, 10000)
	tr := Build(pts)

	theta := math.Pi / 4
	numpts := 50
	capArea := 2 * math.Pi * (1 - math.Cos(theta))
	want := float64(numpts) * (4 * math.Pi / capArea)

	src := xrand.NewSource(42)
	xrng := xrand.New(src)
	got, err := tr.Reduce(theta, numpts, xrng)
	require.NoError(t, err)

	assert.InDelta(t, want, float64(len(got)), want*0.25)
	assert.LessOrEqual(t, len(got), len(pts))
}
