package kdtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/deepfabric/kdquad/internal/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadBucketSize(t *testing.T) {
	_, err := New(Points{{0, 0, 0}}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFindClosestSeedCase(t *testing.T) {
	pts := Points{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	tr, err := New(pts, 1)
	require.NoError(t, err)
	s := NewScratch()

	idx, ok := tr.FindClosest(vec3.Point{0.1, 0.1, 0.1}, 1.0, s)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func bruteForceClosest(pts Points, q vec3.Point, maxDist2 float64) (int, bool) {
	best := -1
	bestD2 := maxDist2
	for i, p := range pts {
		d2 := vec3.Dist2(p, q)
		if d2 < bestD2 {
			bestD2 = d2
			best = i
		}
	}
	return best, best >= 0
}

func TestFindClosestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := randomPoints(rng, 500)
	tr, err := New(pts, 8)
	require.NoError(t, err)
	s := NewScratch()

	for i := 0; i < 50; i++ {
		q := vec3.Point{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
		got, gotOk := tr.FindClosest(q, Infinity, s)
		want, wantOk := bruteForceClosest(pts, q, Infinity)
		require.Equal(t, wantOk, gotOk)
		if wantOk {
			assert.InDelta(t, vec3.Dist2(pts[want], q), vec3.Dist2(pts[got], q), 1e-9)
		}
	}
}

func randomPoints(rng *rand.Rand, n int) Points {
	pts := make(Points, n)
	for i := range pts {
		pts[i] = vec3.Point{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 10}
	}
	return pts
}

func TestKNearestNeighborsGridSeedCase(t *testing.T) {
	var pts Points
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				pts = append(pts, vec3.Point{float64(x), float64(y), float64(z)})
			}
		}
	}
	tr, err := New(pts, 4)
	require.NoError(t, err)
	s := NewScratch()

	got := tr.KNearestNeighbors(vec3.Point{1, 1, 1}, 7, s)
	require.Len(t, got, 7)

	want := map[int]bool{}
	for i, p := range pts {
		if vec3.Dist2(p, vec3.Point{1, 1, 1}) <= 1.0 {
			want[i] = true
		}
	}
	require.Len(t, want, 7)
	for _, idx := range got {
		assert.True(t, want[idx], "unexpected index %d in kNN result", idx)
	}
}

func TestKNearestNeighborsMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pts := randomPoints(rng, 300)
	tr, err := New(pts, 6)
	require.NoError(t, err)
	s := NewScratch()

	q := vec3.Point{5, 5, 5}
	k := 10
	got := tr.KNearestNeighbors(q, k, s)
	require.Len(t, got, k)

	type cand struct {
		idx int
		d2  float64
	}
	all := make([]cand, len(pts))
	for i, p := range pts {
		all[i] = cand{i, vec3.Dist2(p, q)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].d2 < all[j].d2 })
	kth := all[k-1].d2

	for _, idx := range got {
		assert.LessOrEqual(t, vec3.Dist2(pts[idx], q), kth+1e-9)
	}
}

func TestKNearestNeighborsShorterThanKWhenFewPoints(t *testing.T) {
	pts := Points{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	tr, err := New(pts, 2)
	require.NoError(t, err)
	s := NewScratch()

	got := tr.KNearestNeighbors(vec3.Point{0, 0, 0}, 10, s)
	assert.Len(t, got, 3)
}

func TestFixedRangeSearchIsExactSet(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pts := randomPoints(rng, 400)
	tr, err := New(pts, 5)
	require.NoError(t, err)
	s := NewScratch()

	q := vec3.Point{5, 5, 5}
	r2 := 4.0
	got := tr.FixedRangeSearch(q, r2, s)

	var want []int
	for i, p := range pts {
		if vec3.Dist2(p, q) <= r2 {
			want = append(want, i)
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestAABBSearchMatches(t *testing.T) {
	pts := Points{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 1}, {-1, -1, -1}, {0.4, 0.4, 0.4},
	}
	tr, err := New(pts, 2)
	require.NoError(t, err)
	s := NewScratch()

	got, err := tr.AABBSearch(vec3.Point{-1, -1, -1}, vec3.Point{0.5, 0.5, 0.5}, s)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 5, 6}, got)
}

func TestAABBSearchRejectsInvertedBox(t *testing.T) {
	pts := Points{{0, 0, 0}}
	tr, err := New(pts, 1)
	require.NoError(t, err)
	s := NewScratch()

	_, err = tr.AABBSearch(vec3.Point{1, 1, 1}, vec3.Point{0, 0, 0}, s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSegmentSearchSeedCase(t *testing.T) {
	pts := Points{{0, 0, 0}, {10, 0, 0}, {5, 0, 0}, {5, 1, 0}}
	tr, err := New(pts, 2)
	require.NoError(t, err)
	s := NewScratch()

	all := tr.SegmentSearchAll(vec3.Point{0, 0, 0}, vec3.Point{10, 0, 0}, 4, s)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, all)

	nearest, ok := tr.SegmentSearch1NearestPoint(vec3.Point{0, 0, 0}, vec3.Point{10, 0, 0}, 4, s)
	require.True(t, ok)
	assert.Equal(t, 2, nearest)
}

func TestSegmentSearch1NearestPointIsRefinementOfAll(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	pts := randomPoints(rng, 200)
	tr, err := New(pts, 5)
	require.NoError(t, err)
	s := NewScratch()

	q, q2 := vec3.Point{0, 0, 0}, vec3.Point{10, 10, 10}
	r2 := 9.0
	all := tr.SegmentSearchAll(q, q2, r2, s)
	nearest, ok := tr.SegmentSearch1NearestPoint(q, q2, r2, s)
	if !ok {
		assert.Empty(t, all)
		return
	}
	assert.Contains(t, all, nearest)

	geom := segGeometry(q, q2, r2)
	nearestD2, _, _ := distToSegment2(pts[nearest], q, geom)
	for _, idx := range all {
		d2, _, _ := distToSegment2(pts[idx], q, geom)
		assert.LessOrEqual(t, nearestD2, d2+1e-9)
	}
}

func TestRemoveMakesPointDisappear(t *testing.T) {
	pts := Points{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	tr, err := New(pts, 1)
	require.NoError(t, err)
	s := NewScratch()

	removed := tr.Remove(vec3.Point{1, 0, 0})
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, tr.Len())

	live := tr.CollectPts(s)
	assert.ElementsMatch(t, []int{0, 2}, live)

	// idempotent: removing again finds nothing.
	assert.Equal(t, 0, tr.Remove(vec3.Point{1, 0, 0}))
}

func TestFindClosestAlongDir(t *testing.T) {
	// Point 0 sits exactly on the query line, so it's the true
	// perpendicular-distance minimum (0); point 1 is off the line by
	// a perpendicular distance of 1.
	pts := Points{{0, 0, 0}, {5, 1, 0}, {5, 0, 5}, {20, 20, 20}}
	tr, err := New(pts, 1)
	require.NoError(t, err)
	s := NewScratch()

	idx, ok := tr.FindClosestAlongDir(vec3.Point{0, 0, 0}, vec3.Point{1, 0, 0}, 4, s)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestFixedRangeSearchBetween2PointsInclusiveEndpoints(t *testing.T) {
	pts := Points{{0, 0, 0}, {10, 0, 0}, {5, 0, 0}}
	tr, err := New(pts, 2)
	require.NoError(t, err)
	s := NewScratch()

	got := tr.FixedRangeSearchBetween2Points(vec3.Point{0, 0, 0}, vec3.Point{10, 0, 0}, math.Pow(0.01, 2), s)
	assert.ElementsMatch(t, []int{0, 1, 2}, got)
}
