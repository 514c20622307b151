package tagless

import "sync"

// Monoid is an associative Combine with Empty as its identity.
type Monoid[S any] interface {
	Empty() S
	Combine(a, b S) S
}

// Fold combines values left to right starting from m.Empty().
func Fold[S any](m Monoid[S], values ...S) S {
	acc := m.Empty()
	for _, v := range values {
		acc = m.Combine(acc, v)
	}
	return acc
}

// Accumulator folds summaries as an analysis algebra reports them. It is
// safe for concurrent use.
type Accumulator[S any] struct {
	mu     sync.Mutex
	monoid Monoid[S]
	value  S
}

// NewAccumulator starts at m.Empty().
func NewAccumulator[S any](m Monoid[S]) *Accumulator[S] {
	return &Accumulator[S]{monoid: m, value: m.Empty()}
}

// Add combines s into the accumulated value.
func (a *Accumulator[S]) Add(s S) {
	a.mu.Lock()
	a.value = a.monoid.Combine(a.value, s)
	a.mu.Unlock()
}

// Value returns the accumulated value.
func (a *Accumulator[S]) Value() S {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}
