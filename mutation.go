package entity

// AddOne adds a record if its id is not present.
func (a *Adapter[K, V]) AddOne(s *State[K, V], record V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.insert(d, a.collect("AddOne", []V{record})))
}

// AddMany adds every record whose id is not present.
//
// Existing records are left untouched.
func (a *Adapter[K, V]) AddMany(s *State[K, V], records []V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.insert(d, a.collect("AddMany", records)))
}

// AddAll replaces the collection with the given records.
func (a *Adapter[K, V]) AddAll(s *State[K, V], records []V) (*State[K, V], Change) {
	return a.setAll(s, "AddAll", records)
}

// SetAll replaces the collection with the given records.
func (a *Adapter[K, V]) SetAll(s *State[K, V], records []V) (*State[K, V], Change) {
	return a.setAll(s, "SetAll", records)
}

func (a *Adapter[K, V]) setAll(s *State[K, V], op string, records []V) (*State[K, V], Change) {
	d := newDraft(a.InitialState())
	changed := a.insert(d, a.collect(op, records))
	if changed == NoChange && s.Len() == 0 {
		return s, NoChange
	}
	return commit(s, d, Both)
}

// SetOne adds a record or replaces the record with the same id.
func (a *Adapter[K, V]) SetOne(s *State[K, V], record V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.upsert(d, "SetOne", []V{record}, replaceMerge[V]))
}

// SetMany applies SetOne for each record in order.
func (a *Adapter[K, V]) SetMany(s *State[K, V], records []V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.upsert(d, "SetMany", records, replaceMerge[V]))
}

// RemoveOne removes the record with the given id.
func (a *Adapter[K, V]) RemoveOne(s *State[K, V], id K) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.remove(d, []K{id}))
}

// RemoveMany removes the records with the given ids.
//
// Ids that are not present are ignored.
func (a *Adapter[K, V]) RemoveMany(s *State[K, V], ids []K) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.remove(d, ids))
}

// RemoveManyFunc removes the records matching the predicate.
func (a *Adapter[K, V]) RemoveManyFunc(s *State[K, V], match func(V) bool) (*State[K, V], Change) {
	var ids []K
	for id, v := range s.All() {
		if match(v) {
			ids = append(ids, id)
		}
	}
	return a.RemoveMany(s, ids)
}

// RemoveAll removes every record.
func (a *Adapter[K, V]) RemoveAll(s *State[K, V]) (*State[K, V], Change) {
	if s.Len() == 0 {
		return s, NoChange
	}
	return a.InitialState(), Both
}

// UpdateOne applies the update if its id is present.
func (a *Adapter[K, V]) UpdateOne(s *State[K, V], update Update[K, V]) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.update(d, "UpdateOne", []Update[K, V]{update}))
}

// UpdateMany applies the updates in order.
//
// Updates for ids that are not present are ignored. An update that changes
// the id of a record moves the record to the new id.
func (a *Adapter[K, V]) UpdateMany(s *State[K, V], updates []Update[K, V]) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.update(d, "UpdateMany", updates))
}

// UpsertOne merges a record into the existing one or adds it.
func (a *Adapter[K, V]) UpsertOne(s *State[K, V], record V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.upsert(d, "UpsertOne", []V{record}, a.merge))
}

// UpsertMany merges records with existing ids and adds the rest.
func (a *Adapter[K, V]) UpsertMany(s *State[K, V], records []V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.upsert(d, "UpsertMany", records, a.merge))
}

// Map replaces every record with the result of fn.
//
// Records for which fn returns an equal value are left untouched. Every
// result is computed from the input state, so fn may move records onto
// each other's ids without losing any of them.
func (a *Adapter[K, V]) Map(s *State[K, V], fn func(V) V) (*State[K, V], Change) {
	d := newDraft(s)
	return commit(s, d, a.transform(d, "Map", s, fn))
}
