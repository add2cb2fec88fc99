package entity

import (
	"slices"

	"github.com/benbjohnson/immutable"
)

// mergeInsert places the models into the sorted ids and stores them.
//
// The ids in the draft must be sorted and must not contain any model id.
// Models are sorted stably, and a model that compares equal to an existing
// record is placed before it.
func (a *Adapter[K, V]) mergeInsert(d *draft[K, V], models []entry[K, V]) {
	slices.SortStableFunc(models, func(x, y entry[K, V]) int {
		return a.compare(x.v, y.v)
	})
	defer func() {
		for _, m := range models {
			d.entities = d.entities.Set(m.id, m.v)
		}
	}()

	n := d.ids.Len()
	if n > 0 {
		last, _ := d.entities.Get(d.ids.Get(n - 1))
		if a.compare(models[0].v, last) > 0 {
			for _, m := range models {
				d.ids = d.ids.Append(m.id)
			}
			return
		}
	}

	b := immutable.NewListBuilder[K]()
	itr := d.ids.Iterator()
	i := 0
	for !itr.Done() {
		_, id := itr.Next()
		cur, _ := d.entities.Get(id)
		for i < len(models) && a.compare(models[i].v, cur) <= 0 {
			b.Append(models[i].id)
			i++
		}
		b.Append(id)
	}
	for ; i < len(models); i++ {
		b.Append(models[i].id)
	}
	d.ids = b.List()
}
