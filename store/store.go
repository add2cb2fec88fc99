// Package store publishes entity states to concurrent readers.
//
// A Store serializes writers and publishes each new snapshot atomically, so
// readers never need a lock. A Root is an explicit registry of the stores
// of an application, built once at startup.
package store

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/nasdf/entity"
	"github.com/rs/zerolog"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger  zerolog.Logger
	metrics *Metrics
}

// WithLogger sets the logger used for published mutations.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics updated on every mutation.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// Listener is called with every published state and its change.
type Listener[K cmp.Ordered, V any] func(*entity.State[K, V], entity.Change)

type subscription[K cmp.Ordered, V any] struct {
	fn Listener[K, V]
}

// Store holds the current state of one collection.
type Store[K cmp.Ordered, V any] struct {
	name    string
	adapter *entity.Adapter[K, V]
	logger  zerolog.Logger
	metrics *Metrics

	mu    sync.Mutex
	state atomic.Pointer[entity.State[K, V]]

	// notifyMu is taken before mu is released so listeners see
	// publications in order without holding the writer lock.
	notifyMu sync.Mutex
	// subMu serializes changes to listeners, which is copy on write.
	subMu     sync.Mutex
	listeners atomic.Pointer[[]*subscription[K, V]]
}

// New returns a store with an empty initial state.
func New[K cmp.Ordered, V any](name string, adapter *entity.Adapter[K, V], opts ...Option) *Store[K, V] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store[K, V]{
		name:    name,
		adapter: adapter,
		logger:  o.logger.With().Str("feature", name).Logger(),
		metrics: o.metrics,
	}
	s.state.Store(adapter.InitialState())
	return s
}

// Name returns the name of the store.
func (s *Store[K, V]) Name() string {
	return s.name
}

// Adapter returns the adapter used for mutations.
func (s *Store[K, V]) Adapter() *entity.Adapter[K, V] {
	return s.adapter
}

// State returns the current published state.
func (s *Store[K, V]) State() *entity.State[K, V] {
	return s.state.Load()
}

// Current returns the current published state as an untyped value.
func (s *Store[K, V]) Current() any {
	return s.state.Load()
}

// Len returns the number of records in the current state.
func (s *Store[K, V]) Len() int {
	return s.state.Load().Len()
}

// Subscribe registers a listener for published states.
//
// Listeners are called in subscription order for every publication, in
// publish order, after the writer lock is released. A listener may
// subscribe or unsubscribe, but must not mutate the store it listens to.
// The returned function removes the listener.
func (s *Store[K, V]) Subscribe(fn Listener[K, V]) (unsubscribe func()) {
	sub := &subscription[K, V]{fn: fn}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	next := append(slices.Clone(s.subscriptions()), sub)
	s.listeners.Store(&next)

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		next := slices.DeleteFunc(slices.Clone(s.subscriptions()), func(other *subscription[K, V]) bool {
			return other == sub
		})
		s.listeners.Store(&next)
	}
}

func (s *Store[K, V]) subscriptions() []*subscription[K, V] {
	if subs := s.listeners.Load(); subs != nil {
		return *subs
	}
	return nil
}

// Apply runs the mutation against the current state and publishes the
// result.
//
// When the mutation reports NoChange the current state is kept and no
// listener is called.
func (s *Store[K, V]) Apply(mutate func(*entity.State[K, V]) (*entity.State[K, V], entity.Change)) entity.Change {
	next, change, subs := s.publish(mutate)
	if change == entity.NoChange {
		return change
	}
	defer s.notifyMu.Unlock()

	for _, sub := range subs {
		sub.fn(next, change)
	}
	return change
}

// publish stores the result of mutate. Unless the change is NoChange it
// returns with notifyMu held and the listeners to call.
func (s *Store[K, V]) publish(mutate func(*entity.State[K, V]) (*entity.State[K, V], entity.Change)) (*entity.State[K, V], entity.Change, []*subscription[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.Load()
	next, change := mutate(prev)
	if change == entity.NoChange {
		next = prev
	}
	if s.metrics != nil {
		s.metrics.ObserveMutation(s.name, change, next.Len())
	}
	if change == entity.NoChange {
		return prev, change, nil
	}
	s.state.Store(next)
	s.logger.Debug().
		Stringer("change", change).
		Int("total", next.Len()).
		Msg("state published")

	s.notifyMu.Lock()
	return next, change, s.subscriptions()
}

// Reset publishes an empty state.
func (s *Store[K, V]) Reset() entity.Change {
	return s.RemoveAll()
}
