package entity

import (
	"cmp"
	"hash/maphash"
	"iter"

	"github.com/benbjohnson/immutable"
)

// State is an immutable snapshot of a collection.
//
// The ids list defines iteration order and the entities map holds exactly
// one record per id. A State is never modified after it is returned, so it
// can be shared between goroutines without synchronization.
type State[K cmp.Ordered, V any] struct {
	ids      *immutable.List[K]
	entities *immutable.Map[K, V]
}

// Len returns the number of records in the state.
func (s *State[K, V]) Len() int {
	return s.ids.Len()
}

// Has returns true if a record with the given id exists.
func (s *State[K, V]) Has(id K) bool {
	_, ok := s.entities.Get(id)
	return ok
}

// Get returns the record with the given id.
func (s *State[K, V]) Get(id K) (V, bool) {
	return s.entities.Get(id)
}

// IDs returns a copy of the ids in order.
func (s *State[K, V]) IDs() []K {
	ids := make([]K, 0, s.ids.Len())
	for itr := s.ids.Iterator(); !itr.Done(); {
		_, id := itr.Next()
		ids = append(ids, id)
	}
	return ids
}

// Values returns the records in id order.
func (s *State[K, V]) Values() []V {
	values := make([]V, 0, s.ids.Len())
	for _, v := range s.All() {
		values = append(values, v)
	}
	return values
}

// Keys returns the ordered id list backing this state.
//
// The list is shared with every state derived from this one that did not
// change membership or order, so its pointer identity can be used to detect
// changes to the ids.
func (s *State[K, V]) Keys() *immutable.List[K] {
	return s.ids
}

// Entities returns the id to record map backing this state.
func (s *State[K, V]) Entities() *immutable.Map[K, V] {
	return s.entities
}

// All returns an iterator over the ids and records in id order.
func (s *State[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for itr := s.ids.Iterator(); !itr.Done(); {
			_, id := itr.Next()
			v, _ := s.entities.Get(id)
			if !yield(id, v) {
				return
			}
		}
	}
}

// keyHasher hashes any comparable key type, including named types and
// floats that immutable's default hasher does not support.
type keyHasher[K comparable] struct {
	seed maphash.Seed
}

func newKeyHasher[K comparable]() *keyHasher[K] {
	return &keyHasher[K]{seed: maphash.MakeSeed()}
}

func (h *keyHasher[K]) Hash(key K) uint32 {
	sum := maphash.Comparable(h.seed, key)
	return uint32(sum ^ (sum >> 32))
}

func (h *keyHasher[K]) Equal(a, b K) bool {
	return a == b
}
