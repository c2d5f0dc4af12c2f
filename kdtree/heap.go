package kdtree

import "container/heap"

// heapItem is one candidate in kNearestNeighbors' bounded max-heap.
type heapItem struct {
	idx int
	d2  float64
}

// maxHeap is a bounded max-heap keyed by squared distance, used so
// kNearestNeighbors can maintain only the k best candidates seen so
// far and prune against the current worst (the heap root) once full.
type maxHeap struct {
	items []heapItem
	k     int
}

func (h *maxHeap) reset(k int) {
	h.items = h.items[:0]
	h.k = k
}

func (h *maxHeap) Len() int            { return len(h.items) }
func (h *maxHeap) Less(i, j int) bool  { return h.items[i].d2 > h.items[j].d2 }
func (h *maxHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *maxHeap) Push(x interface{})  { h.items = append(h.items, x.(heapItem)) }
func (h *maxHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

// full reports whether the heap has reached its bound k.
func (h *maxHeap) full() bool { return len(h.items) >= h.k }

// worst returns the current maximum squared distance held, used as
// the pruning radius once the heap is full.
func (h *maxHeap) worst() float64 { return h.items[0].d2 }

// offer inserts (idx, d2) if the heap isn't full yet, or if it's
// tighter than the current worst candidate (evicting the worst).
func (h *maxHeap) offer(idx int, d2 float64) {
	if !h.full() {
		heap.Push(h, heapItem{idx: idx, d2: d2})
		return
	}
	if d2 < h.worst() {
		heap.Pop(h)
		heap.Push(h, heapItem{idx: idx, d2: d2})
	}
}
