// Package selector implements memoized read views over entity states.
//
// A Memo caches the inputs and output of its last evaluation and returns
// the cached output while every input is the same value as before. Inputs
// are compared by reference for pointers, maps and slices, so selectors
// built over published snapshots recompute only when the snapshot parts
// they read were replaced.
package selector

// Selector derives a value from a state.
type Selector[S, R any] interface {
	Select(S) R
}

// Func adapts a plain function to a Selector.
type Func[S, R any] func(S) R

// Select calls f.
func (f Func[S, R]) Select(s S) R {
	return f(s)
}

// Identity returns a selector that returns the state itself.
func Identity[S any]() Selector[S, S] {
	return Func[S, S](func(s S) S { return s })
}

// Observer is notified of every memo evaluation.
type Observer interface {
	ObserveSelector(name string, hit bool)
}

// Option configures a Memo.
type Option func(*options)

type options struct {
	name     string
	observer Observer
}

// WithName sets the name reported to the observer.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver sets the observer notified of hits and misses.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
