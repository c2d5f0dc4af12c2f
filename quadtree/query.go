package quadtree

import (
	"math"

	"github.com/deepfabric/kdquad/internal/vec3"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// Search returns every indexed direction whose angular distance from
// q (a unit vector) is strictly less than r (radians).
func (t *Tree) Search(q vec3.Point, r float64) []int {
	qv := vec3.Normalize(vec3.FromArray(q))
	var out []int
	for _, root := range t.roots {
		out = searchNode(root, t.pts, qv, r, out)
	}
	return out
}

func searchNode(n *node, pts []r3.Vec, q r3.Vec, r float64, out []int) []int {
	if n.leaf {
		for _, i := range n.indices {
			dot := r3.Dot(q, pts[i])
			if dot >= 1.0 {
				out = append(out, i)
				continue
			}
			if math.Acos(dot) < r {
				out = append(out, i)
			}
		}
		return out
	}
	phi := vec3.AngularDistance(q, n.ccp)
	if phi > r+n.ccr {
		return out
	}
	if phi < r-n.ccr {
		return getall(n, out)
	}
	for _, c := range n.children {
		out = searchNode(c, pts, q, r, out)
	}
	return out
}

func getall(n *node, out []int) []int {
	if n.leaf {
		return append(out, n.indices...)
	}
	for _, c := range n.children {
		out = getall(c, out)
	}
	return out
}

// GetAll returns every index indexed anywhere in the tree.
func (t *Tree) GetAll() []int {
	var out []int
	for _, root := range t.roots {
		out = getall(root, out)
	}
	return out
}

// Reduce performs area-proportional stochastic downsampling: roughly
// numpts points are kept per spherical cap of angular radius theta
// uniformly across the sphere. rng drives every per-point admission
// coin flip of the call; the whole descent draws from that one
// source, so workers calling Reduce concurrently each need their own
// independently seeded *rand.Rand. Returns ErrInvalidArgument if
// numpts <= 0.
func (t *Tree) Reduce(theta float64, numpts int, rng *rand.Rand) ([]int, error) {
	if numpts <= 0 {
		return nil, invalidArgument("reduce: numpts %d must be > 0", numpts)
	}
	capArea := 2 * math.Pi * (1 - math.Cos(theta))
	var out []int
	for _, root := range t.roots {
		out = reduceNode(root, theta, capArea, numpts, rng, out)
	}
	return out, nil
}

func reduceNode(n *node, theta, capArea float64, numpts int, rng *rand.Rand, out []int) []int {
	if n.leaf || 2*n.ccr < theta {
		all := getall(n, nil)
		newNumpts := float64(numpts) * n.area / capArea
		if float64(len(all)) <= newNumpts {
			return append(out, all...)
		}
		p := newNumpts / float64(len(all))
		b := distuv.Bernoulli{P: p, Src: rng}
		for _, i := range all {
			if b.Rand() != 0 {
				out = append(out, i)
			}
		}
		return out
	}
	for _, c := range n.children {
		out = reduceNode(c, theta, capArea, numpts, rng, out)
	}
	return out
}
