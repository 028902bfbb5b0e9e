package idcontainer

// Iterator walks a snapshot of the container entries in insertion order.
// Call Next before reading the first entry.
type Iterator[T any] struct {
	current int
	entries []entry[T]
}

func newIterator[T any](entries []entry[T]) *Iterator[T] {
	snapshot := make([]entry[T], len(entries))
	copy(snapshot, entries)
	return &Iterator[T]{current: -1, entries: snapshot}
}

func (r *Iterator[T]) Next() bool {
	if r.current < len(r.entries) {
		r.current++
	}
	return r.current < len(r.entries)
}

func (r *Iterator[T]) ID() ID {
	return r.entries[r.current].id
}

func (r *Iterator[T]) Value() T {
	return r.entries[r.current].value
}

func (r *Iterator[T]) Entry() Entry[T] {
	return r.entries[r.current]
}

// Position returns the position the current entry had when the iterator was created.
func (r *Iterator[T]) Position() int {
	return r.current
}

func (r *Iterator[T]) Len() int {
	return len(r.entries)
}
