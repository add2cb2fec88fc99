package store

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nasdf/entity"
	"github.com/nasdf/entity/selector"
)

var (
	// ErrFeatureExists is returned when a feature name is registered twice.
	ErrFeatureExists = errors.New("feature already registered")
	// ErrFeatureNotFound is returned when no feature has the given name.
	ErrFeatureNotFound = errors.New("feature not found")
)

// Feature is a store registered on a Root.
type Feature interface {
	// Current returns the current published state.
	Current() any
	// Len returns the number of records in the current state.
	Len() int
}

// Snapshot holds the current state of every feature by name.
type Snapshot map[string]any

// Root is a registry of features owned by the application.
type Root struct {
	mu       sync.RWMutex
	features map[string]Feature
}

// NewRoot returns an empty root.
func NewRoot() *Root {
	return &Root{features: make(map[string]Feature)}
}

// Register adds a feature under the given name.
func (r *Root) Register(name string, feature Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.features[name]; ok {
		return fmt.Errorf("%w: %s", ErrFeatureExists, name)
	}
	r.features[name] = feature
	return nil
}

// Feature returns the feature with the given name.
func (r *Root) Feature(name string) (Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feature, ok := r.features[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFeatureNotFound, name)
	}
	return feature, nil
}

// Names returns the sorted names of all features.
func (r *Root) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.features))
	for name := range r.features {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns the current state of every feature.
//
// Features whose state did not change between two snapshots hold the same
// state pointer in both.
func (r *Root) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(Snapshot, len(r.features))
	for name, feature := range r.features {
		snap[name] = feature.Current()
	}
	return snap
}

// Lookup returns the typed store registered under the given name.
func Lookup[K cmp.Ordered, V any](r *Root, name string) (*Store[K, V], error) {
	feature, err := r.Feature(name)
	if err != nil {
		return nil, err
	}
	store, ok := feature.(*Store[K, V])
	if !ok {
		return nil, fmt.Errorf("feature %s has type %T", name, feature)
	}
	return store, nil
}

// Slice returns a selector of the named feature state in a snapshot.
//
// A missing feature selects an empty state created by the adapter.
func Slice[K cmp.Ordered, V any](name string, adapter *entity.Adapter[K, V]) selector.Selector[Snapshot, *entity.State[K, V]] {
	empty := adapter.InitialState()
	return selector.Func[Snapshot, *entity.State[K, V]](func(snap Snapshot) *entity.State[K, V] {
		state, ok := snap[name].(*entity.State[K, V])
		if !ok {
			return empty
		}
		return state
	})
}
