package kdtree

// Scratch is per-caller query working state: the reusable buffers the
// query families need (k-heap, result accumulator). Callers that query concurrently must
// each own a distinct Scratch; a Scratch must never be shared between
// goroutines mid-query. Reset happens automatically at the start of
// every query, so a Scratch can and should be reused across many
// queries by the same caller to avoid per-query allocation.
type Scratch struct {
	results []int
	heap    maxHeap
}

// NewScratch allocates a fresh query-scratch handle.
func NewScratch() *Scratch {
	return &Scratch{}
}

func (s *Scratch) resetResults() []int {
	s.results = s.results[:0]
	return s.results
}
