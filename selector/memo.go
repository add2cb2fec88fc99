package selector

// Memo is a selector that caches its last evaluation.
type Memo[S, R any] struct {
	opts  options
	cache Cache[R]
	eval  func(s S, c *Cache[R]) (R, bool)
}

// Select returns the derived value for the given state.
func (m *Memo[S, R]) Select(s S) R {
	out, hit := m.eval(s, &m.cache)
	if m.opts.observer != nil {
		m.opts.observer.ObserveSelector(m.opts.name, hit)
	}
	return out
}

// Name returns the name of the memo.
func (m *Memo[S, R]) Name() string {
	return m.opts.name
}

// Recomputations returns the number of times the projection ran.
func (m *Memo[S, R]) Recomputations() int {
	return m.cache.Recomputations()
}

// Reset empties the cache of the memo.
func (m *Memo[S, R]) Reset() {
	m.cache.Reset()
}

// New1 returns a memo projecting the output of one selector.
func New1[S, A, R any](a Selector[S, A], project func(A) R, opts ...Option) *Memo[S, R] {
	return &Memo[S, R]{
		opts: newOptions(opts),
		eval: func(s S, c *Cache[R]) (R, bool) {
			va := a.Select(s)
			return c.Get([]any{va}, func() R { return project(va) })
		},
	}
}

// New2 returns a memo projecting the outputs of two selectors.
func New2[S, A, B, R any](a Selector[S, A], b Selector[S, B], project func(A, B) R, opts ...Option) *Memo[S, R] {
	return &Memo[S, R]{
		opts: newOptions(opts),
		eval: func(s S, c *Cache[R]) (R, bool) {
			va, vb := a.Select(s), b.Select(s)
			return c.Get([]any{va, vb}, func() R { return project(va, vb) })
		},
	}
}

// New3 returns a memo projecting the outputs of three selectors.
func New3[S, A, B, C, R any](a Selector[S, A], b Selector[S, B], c Selector[S, C], project func(A, B, C) R, opts ...Option) *Memo[S, R] {
	return &Memo[S, R]{
		opts: newOptions(opts),
		eval: func(s S, cache *Cache[R]) (R, bool) {
			va, vb, vc := a.Select(s), b.Select(s), c.Select(s)
			return cache.Get([]any{va, vb, vc}, func() R { return project(va, vb, vc) })
		},
	}
}
