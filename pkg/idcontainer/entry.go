package idcontainer

// ID is the identifier the container assigns to a stored value. Valid ids are >= 1.
type ID int64

type Entry[T any] interface {
	ID() ID
	Value() T
}

type entry[T any] struct {
	id    ID
	value T
}

type Entries[T any] []Entry[T]

func (r entry[T]) ID() ID   { return r.id }
func (r entry[T]) Value() T { return r.value }

func NewEntry[T any](id ID, v T) Entry[T] {
	return entry[T]{
		id:    id,
		value: v,
	}
}
