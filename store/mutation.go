package store

import "github.com/nasdf/entity"

// AddOne adds a record if its id is not present.
func (s *Store[K, V]) AddOne(record V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.AddOne(st, record)
	})
}

// AddMany adds every record whose id is not present.
func (s *Store[K, V]) AddMany(records []V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.AddMany(st, records)
	})
}

// AddAll replaces the collection with the given records.
func (s *Store[K, V]) AddAll(records []V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.AddAll(st, records)
	})
}

// SetAll replaces the collection with the given records.
func (s *Store[K, V]) SetAll(records []V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.SetAll(st, records)
	})
}

// SetOne adds a record or replaces the record with the same id.
func (s *Store[K, V]) SetOne(record V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.SetOne(st, record)
	})
}

// SetMany applies SetOne for each record in order.
func (s *Store[K, V]) SetMany(records []V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.SetMany(st, records)
	})
}

// RemoveOne removes the record with the given id.
func (s *Store[K, V]) RemoveOne(id K) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.RemoveOne(st, id)
	})
}

// RemoveMany removes the records with the given ids.
func (s *Store[K, V]) RemoveMany(ids []K) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.RemoveMany(st, ids)
	})
}

// RemoveManyFunc removes the records matching the predicate.
func (s *Store[K, V]) RemoveManyFunc(match func(V) bool) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.RemoveManyFunc(st, match)
	})
}

// RemoveAll removes every record.
func (s *Store[K, V]) RemoveAll() entity.Change {
	return s.Apply(s.adapter.RemoveAll)
}

// UpdateOne applies the update if its id is present.
func (s *Store[K, V]) UpdateOne(update entity.Update[K, V]) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.UpdateOne(st, update)
	})
}

// UpdateMany applies the updates in order.
func (s *Store[K, V]) UpdateMany(updates []entity.Update[K, V]) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.UpdateMany(st, updates)
	})
}

// UpsertOne merges a record into the existing one or adds it.
func (s *Store[K, V]) UpsertOne(record V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.UpsertOne(st, record)
	})
}

// UpsertMany merges records with existing ids and adds the rest.
func (s *Store[K, V]) UpsertMany(records []V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.UpsertMany(st, records)
	})
}

// Map replaces every record with the result of fn.
func (s *Store[K, V]) Map(fn func(V) V) entity.Change {
	return s.Apply(func(st *entity.State[K, V]) (*entity.State[K, V], entity.Change) {
		return s.adapter.Map(st, fn)
	})
}
