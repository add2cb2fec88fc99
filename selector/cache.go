package selector

import (
	"sync/atomic"

	"github.com/nasdf/entity/internal/identity"
)

type cached[R any] struct {
	inputs []any
	output R
}

// Cache holds the inputs and output of the last computation.
//
// The zero value is an empty cache ready to use. A Cache is safe for
// concurrent use; when two computations race the first one published
// wins and the other still returns its own result.
type Cache[R any] struct {
	last           atomic.Pointer[cached[R]]
	recomputations atomic.Int64
}

// Get returns the cached output if every input is the same as the last
// inputs, otherwise it calls compute and caches the result.
//
// The second return value is true on a cache hit.
func (c *Cache[R]) Get(inputs []any, compute func() R) (R, bool) {
	last := c.last.Load()
	if last != nil && sameInputs(last.inputs, inputs) {
		return last.output, true
	}
	output := compute()
	c.recomputations.Add(1)
	c.last.CompareAndSwap(last, &cached[R]{inputs: inputs, output: output})
	return output, false
}

// Recomputations returns the number of times compute was called.
func (c *Cache[R]) Recomputations() int {
	return int(c.recomputations.Load())
}

// Reset empties the cache and clears the recomputation count.
func (c *Cache[R]) Reset() {
	c.last.Store(nil)
	c.recomputations.Store(0)
}

func sameInputs(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !identity.Same(a[i], b[i]) {
			return false
		}
	}
	return true
}
