// Package idcontainer provides an ordered store of values, each paired with an
// id the container generates: the smallest positive integer not in use.
//
// Ids and positions are distinct. An id is stable for the lifetime of its
// entry; a position is the zero-based offset in insertion order and shifts
// down when an earlier entry is removed.
//
// Containers are not safe for concurrent use.
package idcontainer

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrOutOfRange   = errors.New("position out of range")
	ErrNotFound     = errors.New("id not found")
	ErrIDsExhausted = errors.New("no free id available")
)

// DefaultMaxID is the id ceiling used when WithMaxID is not supplied.
const DefaultMaxID ID = math.MaxInt32

type Container[T any] interface {
	// Add stores v at the end and returns the smallest free id.
	Add(v T) (ID, error)
	// Remove deletes the entry with the given id. Unknown ids are ignored.
	Remove(id ID)

	GetByPosition(pos int) (T, error)
	// RefByPosition returns a pointer to the stored value. It is valid until
	// the next Add, Remove or Clear.
	RefByPosition(pos int) (*T, error)
	SetByPosition(pos int, v T) error
	IDAt(pos int) (ID, error)

	GetByID(id ID) (T, error)
	PositionOf(id ID) (int, error)
	Has(id ID) bool

	Count() int
	Clear()

	Iterate() *Iterator[T]
	Entries() Entries[T]
}

type Option func(*config)

type config struct {
	maxID    ID
	capacity int
}

// WithMaxID sets the largest id the container hands out. Values below 1 are ignored.
func WithMaxID(maxID ID) Option {
	return func(c *config) {
		if maxID >= 1 {
			c.maxID = maxID
		}
	}
}

func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{maxID: DefaultMaxID}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// store holds the positional part shared by both implementations.
type store[T any] struct {
	entries []entry[T]
	maxID   ID
}

func (r *store[T]) validatePosition(pos int) error {
	if pos < 0 || pos >= len(r.entries) {
		return fmt.Errorf("position %d, count %d: %w", pos, len(r.entries), ErrOutOfRange)
	}
	return nil
}

func (r *store[T]) GetByPosition(pos int) (T, error) {
	var v T
	if err := r.validatePosition(pos); err != nil {
		return v, err
	}
	return r.entries[pos].value, nil
}

func (r *store[T]) RefByPosition(pos int) (*T, error) {
	if err := r.validatePosition(pos); err != nil {
		return nil, err
	}
	return &r.entries[pos].value, nil
}

func (r *store[T]) SetByPosition(pos int, v T) error {
	if err := r.validatePosition(pos); err != nil {
		return err
	}
	r.entries[pos].value = v
	return nil
}

func (r *store[T]) IDAt(pos int) (ID, error) {
	if err := r.validatePosition(pos); err != nil {
		return 0, err
	}
	return r.entries[pos].id, nil
}

func (r *store[T]) Count() int {
	return len(r.entries)
}

func (r *store[T]) Iterate() *Iterator[T] {
	return newIterator(r.entries)
}

func (r *store[T]) Entries() Entries[T] {
	entries := make(Entries[T], 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return entries
}

// removeAt drops the entry at pos keeping the order of the others.
func (r *store[T]) removeAt(pos int) {
	copy(r.entries[pos:], r.entries[pos+1:])
	var zero entry[T]
	r.entries[len(r.entries)-1] = zero
	r.entries = r.entries[:len(r.entries)-1]
}

func (r *store[T]) clear() {
	clear(r.entries)
	r.entries = r.entries[:0]
}

func exhausted(maxID ID) error {
	return fmt.Errorf("all ids from 1 to %d are in use: %w", maxID, ErrIDsExhausted)
}

func notFound(id ID) error {
	return fmt.Errorf("id %d: %w", id, ErrNotFound)
}
