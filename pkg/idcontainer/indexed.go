package idcontainer

import "container/heap"

// NewIndexed returns a container that keeps released ids in a min-heap and
// resolves ids through an id to position index. Add is O(log N) and id lookups
// are O(1); Remove is still O(N) because later positions shift down.
func NewIndexed[T any](opts ...Option) Container[T] {
	c := newConfig(opts)
	return &indexedContainer[T]{
		store: store[T]{
			entries: make([]entry[T], 0, c.capacity),
			maxID:   c.maxID,
		},
		index: make(map[ID]int, c.capacity),
		next:  1,
	}
}

// indexedContainer keeps every id below next either in use or in free.
type indexedContainer[T any] struct {
	store[T]
	index map[ID]int
	free  idHeap
	next  ID
}

func (r *indexedContainer[T]) Add(v T) (ID, error) {
	var id ID
	switch {
	case r.free.Len() > 0:
		id = heap.Pop(&r.free).(ID)
	case r.next > r.maxID:
		return 0, exhausted(r.maxID)
	default:
		id = r.next
		r.next++
	}
	r.index[id] = len(r.entries)
	r.entries = append(r.entries, entry[T]{id: id, value: v})
	return id, nil
}

func (r *indexedContainer[T]) Remove(id ID) {
	pos, ok := r.index[id]
	if !ok {
		return
	}
	delete(r.index, id)
	r.removeAt(pos)
	for i := pos; i < len(r.entries); i++ {
		r.index[r.entries[i].id] = i
	}
	r.release(id)
}

// release returns id to the free pool, lowering next instead when id is the
// highest id handed out so the heap does not grow past the live set.
func (r *indexedContainer[T]) release(id ID) {
	if id != r.next-1 {
		heap.Push(&r.free, id)
		return
	}
	r.next--
	for r.free.Len() > 0 && r.free.max() == r.next-1 {
		r.free.removeMax()
		r.next--
	}
}

func (r *indexedContainer[T]) GetByID(id ID) (T, error) {
	var v T
	pos, ok := r.index[id]
	if !ok {
		return v, notFound(id)
	}
	return r.entries[pos].value, nil
}

func (r *indexedContainer[T]) PositionOf(id ID) (int, error) {
	pos, ok := r.index[id]
	if !ok {
		return -1, notFound(id)
	}
	return pos, nil
}

func (r *indexedContainer[T]) Has(id ID) bool {
	_, ok := r.index[id]
	return ok
}

func (r *indexedContainer[T]) Clear() {
	r.clear()
	clear(r.index)
	r.free = r.free[:0]
	r.next = 1
}

// idHeap is a min-heap of ids, see container/heap.
type idHeap []ID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *idHeap) Push(x any) { *h = append(*h, x.(ID)) }

func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// max scans the leaves, where the largest element of a min-heap lives.
func (h idHeap) max() ID {
	return h[h.maxIndex()]
}

func (h *idHeap) removeMax() {
	heap.Remove(h, h.maxIndex())
}

func (h idHeap) maxIndex() int {
	idx := len(h) / 2
	for i := idx + 1; i < len(h); i++ {
		if h[i] > h[idx] {
			idx = i
		}
	}
	return idx
}
