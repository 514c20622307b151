// Variable for rxfrp
// A mutable cell that is observable and replays its current value.
package rxfrp

// Variable holds exactly one current value. It is an Observer (writes) and
// an Observable (reads): a new subscriber first receives the current value,
// then every later write.
//
// Writes replace the value atomically under a lock, so concurrent writers
// never leave a partially written value behind and Value always returns one
// of the values written. Once terminated with OnError or OnComplete the
// value is frozen and further writes are ignored.
type Variable[T any] struct {
	subject *Subject[T]
	value   T // guarded by subject.mu
}

// NewVariable creates a Variable holding initial.
func NewVariable[T any](initial T) *Variable[T] {
	v := &Variable[T]{value: initial}
	v.subject = newSubject(func(observer Observer[T]) {
		current := v.value
		v.subject.out.push(func() { observer.OnNext(current) })
	})
	return v
}

// Value returns the current value.
func (v *Variable[T]) Value() T {
	v.subject.mu.Lock()
	defer v.subject.mu.Unlock()
	return v.value
}

// Set replaces the current value and notifies subscribers. It reports
// whether the write was accepted.
func (v *Variable[T]) Set(value T) bool {
	return v.subject.nextWith(func() T {
		v.value = value
		return value
	})
}

// Update replaces the value with f(current) in one atomic step and returns
// the value held afterwards. f runs under the Variable's lock and must not
// call back into v.
func (v *Variable[T]) Update(f func(current T) T) T {
	var result T
	accepted := v.subject.nextWith(func() T {
		v.value = f(v.value)
		result = v.value
		return result
	})
	if !accepted {
		return v.Value()
	}
	return result
}

// OnNext is Set without the result, so a Variable can be subscribed to
// another Observable.
func (v *Variable[T]) OnNext(value T) {
	v.Set(value)
}

// OnError terminates the Variable.
func (v *Variable[T]) OnError(err error) {
	v.subject.OnError(err)
}

// OnComplete terminates the Variable.
func (v *Variable[T]) OnComplete() {
	v.subject.OnComplete()
}

// Subscribe delivers the current value, then every later write.
func (v *Variable[T]) Subscribe(observer Observer[T]) Subscription {
	return v.subject.Subscribe(observer)
}

// ObserverCount returns the number of subscribed observers.
func (v *Variable[T]) ObserverCount() int {
	return v.subject.ObserverCount()
}
