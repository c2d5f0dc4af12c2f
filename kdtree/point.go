package kdtree

import "github.com/deepfabric/kdquad/internal/vec3"

// PointSet is an external, immutable, indexable collection of 3D
// points that the tree borrows for its lifetime and never mutates.
// Each point is addressed by a stable index in [0, Len()).
type PointSet interface {
	Len() int
	At(i int) vec3.Point
}

// Points is the PointSet implementation backing plain in-memory
// slices; most callers will reach for this directly.
type Points []vec3.Point

func (p Points) Len() int            { return len(p) }
func (p Points) At(i int) vec3.Point { return p[i] }
