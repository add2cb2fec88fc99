// Package entity implements a normalized entity store.
//
// A State is an immutable snapshot holding an ordered list of unique ids and
// a map from id to record. An Adapter holds the fixed configuration of a
// collection (how to extract ids, and optionally how to sort records) and
// implements every mutation as a pure function from one State to the next.
// Each mutation also returns a Change describing what happened, so callers
// can keep the previous snapshot when nothing changed.
package entity

import (
	"cmp"
	"errors"
	"reflect"
	"sync"

	"github.com/benbjohnson/immutable"
	"github.com/nasdf/entity/internal/identity"
	"github.com/rs/zerolog"
)

// IDFunc returns the id of a record and false if the record has none.
type IDFunc[K cmp.Ordered, V any] func(V) (K, bool)

// Keyed is implemented by records that know their own id.
//
// It is used when no IDFunc is configured. A zero key means the record has
// no id.
type Keyed[K cmp.Ordered] interface {
	Key() K
}

// KeyOf returns an IDFunc that treats the zero key as undefined.
func KeyOf[K cmp.Ordered, V any](get func(V) K) IDFunc[K, V] {
	return func(v V) (K, bool) {
		var zero K
		id := get(v)
		return id, id != zero
	}
}

func keyedID[K cmp.Ordered, V any](v V) (K, bool) {
	var zero K
	keyed, ok := any(v).(Keyed[K])
	if !ok {
		return zero, false
	}
	id := keyed.Key()
	return id, id != zero
}

// Option configures an Adapter.
type Option[K cmp.Ordered, V any] func(*Adapter[K, V])

// WithSelectID sets the function used to extract record ids.
func WithSelectID[K cmp.Ordered, V any](fn IDFunc[K, V]) Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.selectID = fn
	}
}

// WithSortComparer keeps ids sorted by the given comparator.
func WithSortComparer[K cmp.Ordered, V any](fn func(a, b V) int) Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.compare = fn
	}
}

// WithMerge sets how upserts fold an incoming record onto an existing one.
func WithMerge[K cmp.Ordered, V any](fn MergeFunc[V]) Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.merge = fn
	}
}

// WithEqual sets how Map decides whether a transformed record changed.
func WithEqual[K cmp.Ordered, V any](fn func(a, b V) bool) Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.equal = fn
	}
}

// WithLogger sets the logger used to report usage errors.
func WithLogger[K cmp.Ordered, V any](logger zerolog.Logger) Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.logger = logger
	}
}

// WithErrorHandler sets a function that receives every usage error.
func WithErrorHandler[K cmp.Ordered, V any](fn func(error)) Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.onError = fn
	}
}

// WithStrict records the first usage error so it can be checked with Err.
func WithStrict[K cmp.Ordered, V any]() Option[K, V] {
	return func(a *Adapter[K, V]) {
		a.strict = true
	}
}

// Adapter implements the mutations of a collection.
//
// The configuration of an Adapter is fixed when it is created. All methods
// are safe for concurrent use; states passed in are never modified.
type Adapter[K cmp.Ordered, V any] struct {
	selectID IDFunc[K, V]
	compare  func(a, b V) int
	merge    MergeFunc[V]
	equal    func(a, b V) bool
	logger   zerolog.Logger
	onError  func(error)
	hasher   immutable.Hasher[K]

	mu       sync.Mutex
	strict   bool
	firstErr error
}

// New returns an Adapter configured with the given options.
//
// If no id function is given the record type must implement Keyed,
// otherwise ErrNoSelectID is returned.
func New[K cmp.Ordered, V any](opts ...Option[K, V]) (*Adapter[K, V], error) {
	a := &Adapter[K, V]{
		merge:  replaceMerge[V],
		equal:  identity.Same[V],
		logger: zerolog.Nop(),
		hasher: newKeyHasher[K](),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.selectID == nil {
		if !reflect.TypeFor[V]().Implements(reflect.TypeFor[Keyed[K]]()) {
			return nil, ErrNoSelectID
		}
		a.selectID = keyedID[K, V]
	}
	return a, nil
}

// MustNew is like New but panics if the adapter cannot be created.
func MustNew[K cmp.Ordered, V any](opts ...Option[K, V]) *Adapter[K, V] {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Sorted returns true if the adapter keeps ids sorted.
func (a *Adapter[K, V]) Sorted() bool {
	return a.compare != nil
}

// SelectID returns the id of the given record.
func (a *Adapter[K, V]) SelectID(v V) (K, bool) {
	return a.selectID(v)
}

// Err returns the first usage error seen by a strict adapter.
func (a *Adapter[K, V]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.firstErr
}

// InitialState returns a new empty state.
func (a *Adapter[K, V]) InitialState() *State[K, V] {
	return &State[K, V]{
		ids:      immutable.NewList[K](),
		entities: immutable.NewMap[K, V](a.hasher),
	}
}

// StateOf returns a new state containing the given records.
func (a *Adapter[K, V]) StateOf(records ...V) *State[K, V] {
	s, _ := a.SetAll(a.InitialState(), records)
	return s
}

// Validate returns all usage errors the given batch would report.
func (a *Adapter[K, V]) Validate(records []V) error {
	var errs []error
	seen := make(map[K]struct{}, len(records))
	for _, r := range records {
		id, ok := a.selectID(r)
		if !ok {
			errs = append(errs, &UsageError{Op: "Validate", Record: r, Err: ErrUndefinedID})
			continue
		}
		if _, ok := seen[id]; ok {
			errs = append(errs, &UsageError{Op: "Validate", ID: id, Record: r, Err: ErrDuplicateID})
			continue
		}
		seen[id] = struct{}{}
	}
	return errors.Join(errs...)
}

func (a *Adapter[K, V]) report(err *UsageError) {
	a.logger.Warn().
		Str("op", err.Op).
		Interface("id", err.ID).
		Interface("record", err.Record).
		Err(err.Err).
		Msg("entity usage error")

	if a.strict {
		a.mu.Lock()
		if a.firstErr == nil {
			a.firstErr = err
		}
		a.mu.Unlock()
	}
	if a.onError != nil {
		a.onError(err)
	}
}
