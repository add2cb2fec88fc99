package entity

import "cmp"

// Patch applies partial changes to a copy of a record and returns it.
//
// A patch must not modify the record it is given.
type Patch[V any] func(V) V

// Update is a partial change addressed to the record with the given id.
type Update[K cmp.Ordered, V any] struct {
	ID      K
	Changes Patch[V]
}

// MergeFunc folds an incoming record onto an existing one.
type MergeFunc[V any] func(existing, incoming V) V

// Replace returns a patch that replaces the record with the given value.
func Replace[V any](v V) Patch[V] {
	return func(V) V { return v }
}

func replaceMerge[V any](_, incoming V) V {
	return incoming
}
