package router

import "math"

// minHeap is a concrete-typed min-heap over edge-keyed priority queue
// entries, ported from the teacher's node-keyed dijkstra.MinHeap and
// generalized to float64 edge costs (avoids container/heap's interface
// boxing, same rationale as the teacher's version).
type minHeap struct {
	items []pqItem
}

// pqItem is a priority queue entry: a graph edge reached at cost Dist.
type pqItem struct {
	Edge uint32
	Dist float64
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(edge uint32, dist float64) {
	h.items = append(h.items, pqItem{edge, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) PeekDist() float64 {
	if len(h.items) == 0 {
		return math.Inf(1)
	}
	return h.items[0].Dist
}

func (h *minHeap) Reset() {
	h.items = h.items[:0]
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Dist < h.items[smallest].Dist {
			smallest = left
		}
		if right < n && h.items[right].Dist < h.items[smallest].Dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
