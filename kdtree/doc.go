// Package kdtree implements an indexed k-d tree over points in
// Euclidean 3-space: a balanced binary space partition built once
// over a borrowed, immutable point set and queried many times via
// nearest-neighbor, k-nearest-neighbor, fixed-radius, axis-aligned
// box, line-segment, and directional searches.
//
// The tree never copies or mutates the caller's PointSet; every
// result is a set of stable indices into it. Queries are read-only
// except Remove, which marks an index as no longer reachable; callers
// running Remove or CollectPts concurrently with readers must
// serialize those calls themselves.
package kdtree
