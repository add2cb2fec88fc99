// Package identity compares values the way memoization needs: reference
// types by address, everything else by value.
package identity

import "reflect"

// Same returns true if a and b refer to the same value.
//
// Pointers, maps and channels are equal only when they share an address.
// Functions are never the same unless both are nil, since closures built
// from one literal share a code pointer. Slices are equal when they share a backing array and length.
// Comparable values are compared with ==, and anything else falls back to
// reflect.DeepEqual.
func Same[T any](a, b T) bool {
	return same(reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem())
}

func same(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return same(a.Elem(), b.Elem())
	}
	if a.Comparable() && b.Comparable() {
		return a.Equal(b)
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}
