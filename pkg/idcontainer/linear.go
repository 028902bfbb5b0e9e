package idcontainer

// New returns a container that scans its entries to generate and resolve ids.
// Add, Remove and id lookups are O(N).
func New[T any](opts ...Option) Container[T] {
	c := newConfig(opts)
	return &container[T]{
		store: store[T]{
			entries: make([]entry[T], 0, c.capacity),
			maxID:   c.maxID,
		},
	}
}

type container[T any] struct {
	store[T]
}

func (r *container[T]) Add(v T) (ID, error) {
	id, err := r.generateID()
	if err != nil {
		return 0, err
	}
	r.entries = append(r.entries, entry[T]{id: id, value: v})
	return id, nil
}

// generateID returns the smallest id not in use. With N entries the answer is
// at most N+1, so only ids up to N+1 need tracking.
func (r *container[T]) generateID() (ID, error) {
	n := len(r.entries)
	used := make([]bool, n+2)
	for _, e := range r.entries {
		if e.id <= ID(n+1) {
			used[e.id] = true
		}
	}
	id := ID(1)
	for used[id] {
		id++
	}
	if id > r.maxID {
		return 0, exhausted(r.maxID)
	}
	return id, nil
}

func (r *container[T]) Remove(id ID) {
	pos := r.find(id)
	if pos < 0 {
		return
	}
	r.removeAt(pos)
}

func (r *container[T]) GetByID(id ID) (T, error) {
	var v T
	pos := r.find(id)
	if pos < 0 {
		return v, notFound(id)
	}
	return r.entries[pos].value, nil
}

func (r *container[T]) PositionOf(id ID) (int, error) {
	pos := r.find(id)
	if pos < 0 {
		return -1, notFound(id)
	}
	return pos, nil
}

func (r *container[T]) Has(id ID) bool {
	return r.find(id) >= 0
}

func (r *container[T]) Clear() {
	r.clear()
}

func (r *container[T]) find(id ID) int {
	for i, e := range r.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}
