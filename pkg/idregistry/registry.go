// Package idregistry keeps label sets under ids generated by an idcontainer.
// A Registry is safe for concurrent use.
package idregistry

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/henderiw/idcontainer/pkg/idcontainer"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
)

type Registry interface {
	Register(l labels.Set) (idcontainer.ID, error)
	Release(id idcontainer.ID)
	Get(id idcontainer.ID) (labels.Set, error)
	Update(id idcontainer.ID, l labels.Set) error

	Has(id idcontainer.ID) bool
	Count() int
	Clear()

	GetAll() map[idcontainer.ID]labels.Set
	GetByLabel(selector labels.Selector) map[idcontainer.ID]labels.Set
	// List returns the entries in registration order.
	List() idcontainer.Entries[labels.Set]
}

type Option func(*registry)

func WithLogger(l logr.Logger) Option {
	return func(r *registry) {
		r.log = l
	}
}

func WithMaxID(maxID idcontainer.ID) Option {
	return func(r *registry) {
		r.containerOpts = append(r.containerOpts, idcontainer.WithMaxID(maxID))
	}
}

// WithIndexed backs the registry with idcontainer.NewIndexed.
func WithIndexed() Option {
	return func(r *registry) {
		r.indexed = true
	}
}

func New(opts ...Option) Registry {
	r := &registry{
		m:   new(sync.RWMutex),
		log: logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.indexed {
		r.container = idcontainer.NewIndexed[labels.Set](r.containerOpts...)
	} else {
		r.container = idcontainer.New[labels.Set](r.containerOpts...)
	}
	return r
}

type registry struct {
	m             *sync.RWMutex
	container     idcontainer.Container[labels.Set]
	log           logr.Logger
	indexed       bool
	containerOpts []idcontainer.Option
}

func (r *registry) Register(l labels.Set) (idcontainer.ID, error) {
	r.m.Lock()
	defer r.m.Unlock()

	id, err := r.container.Add(copySet(l))
	if err != nil {
		return 0, fmt.Errorf("register %v failed: %w", l, err)
	}
	r.log.V(1).Info("registered", "id", id, "labels", l.String())
	return id, nil
}

func (r *registry) Release(id idcontainer.ID) {
	r.m.Lock()
	defer r.m.Unlock()

	if !r.container.Has(id) {
		r.log.V(1).Info("release of unknown id ignored", "id", id)
		return
	}
	r.container.Remove(id)
	r.log.V(1).Info("released", "id", id)
}

func (r *registry) Get(id idcontainer.ID) (labels.Set, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	l, err := r.container.GetByID(id)
	if err != nil {
		return nil, err
	}
	return copySet(l), nil
}

func (r *registry) Update(id idcontainer.ID, l labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	pos, err := r.container.PositionOf(id)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if err := r.container.SetByPosition(pos, copySet(l)); err != nil {
		return err
	}
	r.log.V(1).Info("updated", "id", id, "labels", l.String())
	return nil
}

func (r *registry) Has(id idcontainer.ID) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.container.Has(id)
}

func (r *registry) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.container.Count()
}

func (r *registry) Clear() {
	r.m.Lock()
	defer r.m.Unlock()

	r.container.Clear()
	r.log.V(1).Info("cleared")
}

func (r *registry) GetAll() map[idcontainer.ID]labels.Set {
	return r.GetByLabel(labels.Everything())
}

func (r *registry) GetByLabel(selector labels.Selector) map[idcontainer.ID]labels.Set {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := map[idcontainer.ID]labels.Set{}

	iter := r.container.Iterate()
	for iter.Next() {
		if selector.Matches(iter.Value()) {
			entries[iter.ID()] = copySet(iter.Value())
		}
	}
	return entries
}

func (r *registry) List() idcontainer.Entries[labels.Set] {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := make(idcontainer.Entries[labels.Set], 0, r.container.Count())
	iter := r.container.Iterate()
	for iter.Next() {
		entries = append(entries, idcontainer.NewEntry(iter.ID(), copySet(iter.Value())))
	}
	return entries
}

// ParseSelector returns a selector matching every key/value pair in l.
func ParseSelector(l map[string]string) (labels.Selector, error) {
	fullselector := labels.NewSelector()
	for k, v := range l {
		req, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, err
		}
		fullselector = fullselector.Add(*req)
	}
	return fullselector, nil
}

func copySet(l labels.Set) labels.Set {
	if l == nil {
		return labels.Set{}
	}
	n := make(labels.Set, len(l))
	for k, v := range l {
		n[k] = v
	}
	return n
}
