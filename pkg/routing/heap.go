package routing

// minHeap is a concrete-typed min-heap for the A* open set.
// Avoids interface boxing overhead of container/heap.
type minHeap struct {
	items []pqItem
}

// pqItem is an open-set entry. Ordering is by f, then h (prefer the more
// goal-directed frontier), then node index for determinism.
type pqItem struct {
	Node int32
	F    float64
	H    float64
}

func (a pqItem) less(b pqItem) bool {
	if a.F != b.F {
		return a.F < b.F
	}
	if a.H != b.H {
		return a.H < b.H
	}
	return a.Node < b.Node
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(item pqItem) {
	h.items = append(h.items, item)
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

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].less(h.items[parent]) {
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
		if left < n && h.items[left].less(h.items[smallest]) {
			smallest = left
		}
		if right < n && h.items[right].less(h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
