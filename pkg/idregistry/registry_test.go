package idregistry

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/henderiw/idcontainer/pkg/idcontainer"
	"github.com/tj/assert"
	"k8s.io/apimachinery/pkg/labels"
)

var initEntries = []labels.Set{
	{"type": "player", "name": "x"},
	{"type": "npc", "name": "y"},
	{"type": "player", "name": "z"},
}

var registries = map[string][]Option{
	"Linear":  nil,
	"Indexed": {WithIndexed()},
}

func newRegistry(t *testing.T, opts []Option, entries []labels.Set) Registry {
	r := New(opts...)
	for _, l := range entries {
		_, err := r.Register(l)
		assert.NoError(t, err)
	}
	return r
}

func TestRegister(t *testing.T) {
	cases := map[string]struct {
		maxID           idcontainer.ID
		register        []labels.Set
		expectedIDs     []idcontainer.ID
		expectedFailed  int
		expectedEntries int
	}{
		"Normal": {
			register:        initEntries,
			expectedIDs:     []idcontainer.ID{1, 2, 3},
			expectedEntries: 3,
		},
		"Nil": {
			register:        []labels.Set{nil},
			expectedIDs:     []idcontainer.ID{1},
			expectedEntries: 1,
		},
		"ErrorMax": {
			maxID:           2,
			register:        initEntries,
			expectedIDs:     []idcontainer.ID{1, 2},
			expectedFailed:  1,
			expectedEntries: 2,
		},
	}
	for rname, opts := range registries {
		for name, tc := range cases {
			t.Run(rname+"/"+name, func(t *testing.T) {
				o := append([]Option{}, opts...)
				if tc.maxID > 0 {
					o = append(o, WithMaxID(tc.maxID))
				}
				r := New(o...)

				ids := []idcontainer.ID{}
				failed := 0
				for _, l := range tc.register {
					id, err := r.Register(l)
					if err != nil {
						assert.True(t, errors.Is(err, idcontainer.ErrIDsExhausted))
						failed++
						continue
					}
					ids = append(ids, id)
				}
				if diff := cmp.Diff(tc.expectedIDs, ids); diff != "" {
					t.Errorf("%s: -want, +got:\n%s", name, diff)
				}
				assert.Equal(t, tc.expectedFailed, failed)
				if r.Count() != tc.expectedEntries {
					t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
				}
			})
		}
	}
}

func TestRelease(t *testing.T) {
	cases := map[string]struct {
		release         []idcontainer.ID
		expectedEntries int
		expectedNames   []string
	}{
		"Normal": {
			release:         []idcontainer.ID{2},
			expectedEntries: 2,
			expectedNames:   []string{"x", "z"},
		},
		"Unknown": {
			release:         []idcontainer.ID{20, 0},
			expectedEntries: 3,
			expectedNames:   []string{"x", "y", "z"},
		},
		"All": {
			release:         []idcontainer.ID{1, 2, 3},
			expectedEntries: 0,
			expectedNames:   []string{},
		},
	}
	for rname, opts := range registries {
		for name, tc := range cases {
			t.Run(rname+"/"+name, func(t *testing.T) {
				r := newRegistry(t, opts, initEntries)
				for _, id := range tc.release {
					r.Release(id)
					assert.False(t, r.Has(id))
				}
				names := []string{}
				for _, e := range r.List() {
					names = append(names, e.Value()["name"])
				}
				if diff := cmp.Diff(tc.expectedNames, names); diff != "" {
					t.Errorf("%s: -want, +got:\n%s", name, diff)
				}
				if r.Count() != tc.expectedEntries {
					t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
				}
			})
		}
	}
}

func TestReleaseReuse(t *testing.T) {
	for rname, opts := range registries {
		t.Run(rname, func(t *testing.T) {
			r := newRegistry(t, opts, initEntries)
			r.Release(2)

			id, err := r.Register(labels.Set{"name": "w"})
			assert.NoError(t, err)
			assert.Equal(t, idcontainer.ID(2), id)

			names := []string{}
			for _, e := range r.List() {
				names = append(names, e.Value()["name"])
			}
			if diff := cmp.Diff([]string{"x", "z", "w"}, names); diff != "" {
				t.Errorf("-want, +got:\n%s", diff)
			}
		})
	}
}

func TestGetUpdate(t *testing.T) {
	for rname, opts := range registries {
		t.Run(rname, func(t *testing.T) {
			r := newRegistry(t, opts, initEntries)
			r.Release(1)

			l, err := r.Get(3)
			assert.NoError(t, err)
			assert.Equal(t, labels.Set{"type": "player", "name": "z"}, l)

			err = r.Update(3, labels.Set{"type": "npc", "name": "z"})
			assert.NoError(t, err)
			l, err = r.Get(3)
			assert.NoError(t, err)
			assert.Equal(t, "npc", l["type"])

			_, err = r.Get(1)
			assert.True(t, errors.Is(err, idcontainer.ErrNotFound))
			err = r.Update(1, labels.Set{})
			assert.True(t, errors.Is(err, idcontainer.ErrNotFound))
		})
	}
}

func TestCopy(t *testing.T) {
	r := New()
	in := labels.Set{"name": "x"}
	id, err := r.Register(in)
	assert.NoError(t, err)

	in["name"] = "changed"
	out, err := r.Get(id)
	assert.NoError(t, err)
	assert.Equal(t, "x", out["name"])

	out["name"] = "changed"
	for _, l := range r.GetAll() {
		assert.Equal(t, "x", l["name"])
	}
}

func TestGetByLabel(t *testing.T) {
	cases := map[string]struct {
		selector    map[string]string
		expectedIDs []idcontainer.ID
	}{
		"Player": {
			selector:    map[string]string{"type": "player"},
			expectedIDs: []idcontainer.ID{1, 3},
		},
		"PlayerName": {
			selector:    map[string]string{"type": "player", "name": "z"},
			expectedIDs: []idcontainer.ID{3},
		},
		"None": {
			selector:    map[string]string{"type": "item"},
			expectedIDs: []idcontainer.ID{},
		},
		"Everything": {
			selector:    map[string]string{},
			expectedIDs: []idcontainer.ID{1, 2, 3},
		},
	}
	for rname, opts := range registries {
		for name, tc := range cases {
			t.Run(rname+"/"+name, func(t *testing.T) {
				r := newRegistry(t, opts, initEntries)

				selector, err := ParseSelector(tc.selector)
				assert.NoError(t, err)

				entries := r.GetByLabel(selector)
				assert.Equal(t, len(tc.expectedIDs), len(entries))
				for _, id := range tc.expectedIDs {
					if _, ok := entries[id]; !ok {
						t.Errorf("%s expecting entry: %d\n", name, id)
					}
				}
			})
		}
	}
}

func TestParseSelectorError(t *testing.T) {
	_, err := ParseSelector(map[string]string{"in valid": "x"})
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	for rname, opts := range registries {
		t.Run(rname, func(t *testing.T) {
			r := newRegistry(t, opts, initEntries)
			r.Clear()
			assert.Equal(t, 0, r.Count())
			assert.Equal(t, 0, len(r.GetAll()))

			id, err := r.Register(labels.Set{})
			assert.NoError(t, err)
			assert.Equal(t, idcontainer.ID(1), id)
		})
	}
}

func TestConcurrentRegister(t *testing.T) {
	for rname, opts := range registries {
		t.Run(rname, func(t *testing.T) {
			r := New(opts...)

			const workers = 8
			const perWorker = 50

			var wg sync.WaitGroup
			results := make(chan idcontainer.ID, workers*perWorker)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						id, err := r.Register(labels.Set{"worker": "w"})
						if err != nil {
							t.Error(err)
							return
						}
						results <- id
					}
				}()
			}
			wg.Wait()
			close(results)

			seen := map[idcontainer.ID]bool{}
			for id := range results {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
			assert.Equal(t, workers*perWorker, r.Count())
			for id := idcontainer.ID(1); id <= workers*perWorker; id++ {
				assert.True(t, seen[id])
			}
		})
	}
}
