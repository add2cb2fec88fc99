package selector

import (
	"cmp"

	"github.com/benbjohnson/immutable"
	"github.com/nasdf/entity"
)

// Entities holds the standard selectors of a collection.
type Entities[S any, K cmp.Ordered, V any] struct {
	// SelectIDs returns the ids in order.
	SelectIDs *Memo[S, []K]
	// SelectEntities returns the id to record map.
	SelectEntities Selector[S, *immutable.Map[K, V]]
	// SelectAll returns the records in id order.
	SelectAll *Memo[S, []V]
	// SelectTotal returns the number of records.
	SelectTotal *Memo[S, int]
}

// ForState returns the collection selectors over a raw state.
func ForState[K cmp.Ordered, V any](opts ...Option) *Entities[*entity.State[K, V], K, V] {
	return ForSlice(Identity[*entity.State[K, V]](), opts...)
}

// ForSlice returns the collection selectors over the state selected by slice.
//
// The name set with WithName is used as a prefix of the selector names.
func ForSlice[S any, K cmp.Ordered, V any](slice Selector[S, *entity.State[K, V]], opts ...Option) *Entities[S, K, V] {
	o := newOptions(opts)
	named := func(suffix string) []Option {
		name := suffix
		if o.name != "" {
			name = o.name + "." + suffix
		}
		return []Option{WithName(name), WithObserver(o.observer)}
	}
	keys := Func[S, *immutable.List[K]](func(s S) *immutable.List[K] {
		return slice.Select(s).Keys()
	})
	entities := Func[S, *immutable.Map[K, V]](func(s S) *immutable.Map[K, V] {
		return slice.Select(s).Entities()
	})

	e := &Entities[S, K, V]{SelectEntities: entities}
	e.SelectIDs = New1(keys, listIDs[K], named("ids")...)
	e.SelectAll = New2(e.SelectIDs, entities, func(ids []K, m *immutable.Map[K, V]) []V {
		values := make([]V, 0, len(ids))
		for _, id := range ids {
			v, _ := m.Get(id)
			values = append(values, v)
		}
		return values
	}, named("all")...)
	e.SelectTotal = New1[S, []K, int](e.SelectIDs, func(ids []K) int {
		return len(ids)
	}, named("total")...)
	return e
}

// Lookup returns a memo selecting the record whose id is chosen by id.
//
// The memo returns the zero value when no record has the id, and
// recomputes only when the map or the selected id changes.
func Lookup[S any, K cmp.Ordered, V any](entities Selector[S, *immutable.Map[K, V]], id Selector[S, K], opts ...Option) *Memo[S, V] {
	return New2(entities, id, func(m *immutable.Map[K, V], id K) V {
		v, _ := m.Get(id)
		return v
	}, opts...)
}

func listIDs[K cmp.Ordered](list *immutable.List[K]) []K {
	ids := make([]K, 0, list.Len())
	for itr := list.Iterator(); !itr.Done(); {
		_, id := itr.Next()
		ids = append(ids, id)
	}
	return ids
}
