package entity

import (
	"cmp"

	"github.com/benbjohnson/immutable"
)

// draft accumulates the changes of a single operation.
type draft[K cmp.Ordered, V any] struct {
	ids      *immutable.List[K]
	entities *immutable.Map[K, V]
}

// entry is a record paired with its extracted id.
type entry[K cmp.Ordered, V any] struct {
	id K
	v  V
}

func newDraft[K cmp.Ordered, V any](s *State[K, V]) *draft[K, V] {
	return &draft[K, V]{
		ids:      s.ids,
		entities: s.entities,
	}
}

// commit returns the state for the given change, reusing as much of the
// input state as the change allows.
func commit[K cmp.Ordered, V any](s *State[K, V], d *draft[K, V], c Change) (*State[K, V], Change) {
	switch c {
	case NoChange:
		return s, NoChange
	case EntitiesOnly:
		return &State[K, V]{ids: s.ids, entities: d.entities}, EntitiesOnly
	default:
		return &State[K, V]{ids: d.ids, entities: d.entities}, Both
	}
}

// collect extracts the ids of a batch, dropping records without an id.
//
// When an id appears more than once the last record wins and keeps the
// position of the first occurrence.
func (a *Adapter[K, V]) collect(op string, records []V) []entry[K, V] {
	batch := make([]entry[K, V], 0, len(records))
	var index map[K]int
	if len(records) > 1 {
		index = make(map[K]int, len(records))
	}
	for _, r := range records {
		id, ok := a.selectID(r)
		if !ok {
			a.report(&UsageError{Op: op, Record: r, Err: ErrUndefinedID})
			continue
		}
		if i, ok := index[id]; ok {
			a.report(&UsageError{Op: op, ID: id, Record: r, Err: ErrDuplicateID})
			batch[i].v = r
			continue
		}
		if index != nil {
			index[id] = len(batch)
		}
		batch = append(batch, entry[K, V]{id: id, v: r})
	}
	return batch
}

// insert adds the records whose ids are not present yet.
func (a *Adapter[K, V]) insert(d *draft[K, V], batch []entry[K, V]) Change {
	var added []entry[K, V]
	for _, e := range batch {
		if _, ok := d.entities.Get(e.id); !ok {
			added = append(added, e)
		}
	}
	if len(added) == 0 {
		return NoChange
	}
	if a.Sorted() {
		a.mergeInsert(d, added)
		return Both
	}
	for _, e := range added {
		d.ids = d.ids.Append(e.id)
		d.entities = d.entities.Set(e.id, e.v)
	}
	return Both
}

// remove deletes the records with the given ids.
func (a *Adapter[K, V]) remove(d *draft[K, V], ids []K) Change {
	removed := false
	for _, id := range ids {
		if _, ok := d.entities.Get(id); ok {
			d.entities = d.entities.Delete(id)
			removed = true
		}
	}
	if !removed {
		return NoChange
	}
	d.ids = presentIDs(d.ids, d.entities)
	return Both
}

// update applies the updates in order to the records that exist.
func (a *Adapter[K, V]) update(d *draft[K, V], op string, updates []Update[K, V]) Change {
	if a.Sorted() {
		return a.updateSorted(d, op, updates)
	}
	var (
		changed bool
		renamed map[K]K // original id to current id
		origin  map[K]K // current id to original id
	)
	for _, u := range updates {
		cur, ok := d.entities.Get(u.ID)
		if !ok {
			continue
		}
		next := u.Changes(cur)
		id, ok := a.selectID(next)
		if !ok {
			a.report(&UsageError{Op: op, ID: u.ID, Record: next, Err: ErrUndefinedID})
			continue
		}
		changed = true
		if id != u.ID {
			if renamed == nil {
				renamed = make(map[K]K)
				origin = make(map[K]K)
			}
			if _, ok := d.entities.Get(id); ok {
				a.report(&UsageError{Op: op, ID: id, Record: next, Err: ErrDuplicateID})
			}
			d.entities = d.entities.Delete(u.ID)
			o, ok := origin[u.ID]
			if ok {
				delete(origin, u.ID)
			} else {
				o = u.ID
			}
			renamed[o] = id
			origin[id] = o
		}
		d.entities = d.entities.Set(id, next)
	}
	if !changed {
		return NoChange
	}
	if renamed == nil {
		return EntitiesOnly
	}
	prev := d.ids
	d.ids = renameIDs(prev, renamed, d.entities)
	if sameOrder(prev, d.ids) {
		return EntitiesOnly
	}
	return Both
}

// updateSorted applies updates and repositions every changed record.
func (a *Adapter[K, V]) updateSorted(d *draft[K, V], op string, updates []Update[K, V]) Change {
	var (
		order   []K
		pending map[K]V
	)
	for _, u := range updates {
		cur, held := pending[u.ID]
		if !held {
			v, ok := d.entities.Get(u.ID)
			if !ok {
				continue
			}
			cur = v
		}
		next := u.Changes(cur)
		id, ok := a.selectID(next)
		if !ok {
			a.report(&UsageError{Op: op, ID: u.ID, Record: next, Err: ErrUndefinedID})
			continue
		}
		if pending == nil {
			pending = make(map[K]V)
		}
		if held {
			delete(pending, u.ID)
		} else {
			d.entities = d.entities.Delete(u.ID)
		}
		if id != u.ID {
			if _, ok := pending[id]; ok {
				a.report(&UsageError{Op: op, ID: id, Record: next, Err: ErrDuplicateID})
			} else if _, ok := d.entities.Get(id); ok {
				a.report(&UsageError{Op: op, ID: id, Record: next, Err: ErrDuplicateID})
				d.entities = d.entities.Delete(id)
			}
		}
		pending[id] = next
		order = append(order, id)
	}
	if pending == nil {
		return NoChange
	}
	models := make([]entry[K, V], 0, len(pending))
	for _, id := range order {
		v, ok := pending[id]
		if !ok {
			continue
		}
		models = append(models, entry[K, V]{id: id, v: v})
		delete(pending, id)
	}
	prev := d.ids
	d.ids = presentIDs(prev, d.entities)
	a.mergeInsert(d, models)
	if sameOrder(prev, d.ids) {
		return EntitiesOnly
	}
	return Both
}

// transform replaces every record of s with the result of fn.
//
// Every result is computed from the original record. Changed records are
// removed before any result is placed, so records that exchange ids are
// all kept.
func (a *Adapter[K, V]) transform(d *draft[K, V], op string, s *State[K, V], fn func(V) V) Change {
	var (
		moved   map[K]K // original id to result id
		order   []K
		results map[K]V
	)
	for id, v := range s.All() {
		next := fn(v)
		if a.equal(v, next) {
			continue
		}
		to, ok := a.selectID(next)
		if !ok {
			a.report(&UsageError{Op: op, ID: id, Record: next, Err: ErrUndefinedID})
			continue
		}
		if moved == nil {
			moved = make(map[K]K)
			results = make(map[K]V)
		}
		if _, ok := results[to]; ok {
			a.report(&UsageError{Op: op, ID: to, Record: next, Err: ErrDuplicateID})
		} else {
			order = append(order, to)
		}
		results[to] = next
		moved[id] = to
	}
	if moved == nil {
		return NoChange
	}

	for id := range moved {
		d.entities = d.entities.Delete(id)
	}
	for _, to := range order {
		if _, ok := d.entities.Get(to); ok {
			a.report(&UsageError{Op: op, ID: to, Record: results[to], Err: ErrDuplicateID})
			d.entities = d.entities.Delete(to)
		}
	}

	prev := d.ids
	if a.Sorted() {
		models := make([]entry[K, V], 0, len(order))
		for _, to := range order {
			models = append(models, entry[K, V]{id: to, v: results[to]})
		}
		d.ids = presentIDs(prev, d.entities)
		a.mergeInsert(d, models)
	} else {
		for _, to := range order {
			d.entities = d.entities.Set(to, results[to])
		}
		d.ids = renameIDs(prev, moved, d.entities)
	}
	if sameOrder(prev, d.ids) {
		return EntitiesOnly
	}
	return Both
}

// upsert routes records with existing ids to update and the rest to insert.
func (a *Adapter[K, V]) upsert(d *draft[K, V], op string, records []V, merge MergeFunc[V]) Change {
	batch := a.collect(op, records)
	updates := make([]Update[K, V], 0, len(batch))
	var added []entry[K, V]
	for _, e := range batch {
		if _, ok := d.entities.Get(e.id); !ok {
			added = append(added, e)
			continue
		}
		incoming := e.v
		updates = append(updates, Update[K, V]{
			ID:      e.id,
			Changes: func(existing V) V { return merge(existing, incoming) },
		})
	}
	changed := a.update(d, op, updates)
	return changed.Max(a.insert(d, added))
}

// presentIDs returns the ids that still have a record.
func presentIDs[K cmp.Ordered, V any](ids *immutable.List[K], entities *immutable.Map[K, V]) *immutable.List[K] {
	b := immutable.NewListBuilder[K]()
	for itr := ids.Iterator(); !itr.Done(); {
		_, id := itr.Next()
		if _, ok := entities.Get(id); ok {
			b.Append(id)
		}
	}
	return b.List()
}

// renameIDs returns ids with every renamed id replaced by its new id.
//
// Ids without a record are dropped. When two ids end up the same, the
// earlier position is kept.
func renameIDs[K cmp.Ordered, V any](ids *immutable.List[K], renamed map[K]K, entities *immutable.Map[K, V]) *immutable.List[K] {
	seen := make(map[K]struct{}, ids.Len())
	b := immutable.NewListBuilder[K]()
	for itr := ids.Iterator(); !itr.Done(); {
		_, id := itr.Next()
		if r, ok := renamed[id]; ok {
			id = r
		}
		if _, ok := entities.Get(id); !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		b.Append(id)
	}
	return b.List()
}

// sameOrder returns true if both lists hold the same ids in the same order.
func sameOrder[K comparable](a, b *immutable.List[K]) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	ia, ib := a.Iterator(), b.Iterator()
	for !ia.Done() {
		_, x := ia.Next()
		_, y := ib.Next()
		if x != y {
			return false
		}
	}
	return true
}
