// Transformation operators for rxfrp
// Map, Filter, Take, Skip and DistinctUntilChanged.
package rxfrp

// Transformer maps a value and may fail.
type Transformer[T, U any] func(value T) (U, error)

// Predicate selects values.
type Predicate[T any] func(value T) bool

// Map applies f to every value, synchronously and in order. An error
// returned by f, or a panic inside it, terminates the stream with OnError.
func Map[T, U any](src Observable[T], f Transformer[T, U]) Observable[U] {
	return NewObservable(func(observer Observer[U]) Subscription {
		return src.Subscribe(&relay[T, U]{
			down: observer,
			onNext: func(v T) {
				var (
					out U
					err error
				)
				if p := SafeExecute(func() { out, err = f(v) }); p != nil {
					err = p
				}
				if err != nil {
					observer.OnError(err)
					return
				}
				observer.OnNext(out)
			},
		})
	})
}

// Filter forwards the values for which pred holds.
func Filter[T any](src Observable[T], pred Predicate[T]) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				var ok bool
				if p := SafeExecute(func() { ok = pred(v) }); p != nil {
					observer.OnError(p)
					return
				}
				if ok {
					observer.OnNext(v)
				}
			},
		})
	})
}

// Take forwards the first count values, then completes and disposes the
// upstream subscription.
func Take[T any](src Observable[T], count int) Observable[T] {
	if count <= 0 {
		return Empty[T]()
	}
	return NewObservable(func(observer Observer[T]) Subscription {
		taken := 0
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				if taken >= count {
					return
				}
				taken++
				observer.OnNext(v)
				if taken == count {
					observer.OnComplete()
				}
			},
		})
	})
}

// Skip drops the first count values.
func Skip[T any](src Observable[T], count int) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		skipped := 0
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				if skipped < count {
					skipped++
					return
				}
				observer.OnNext(v)
			},
		})
	})
}

// DistinctUntilChanged drops values equal to the previous one.
func DistinctUntilChanged[T comparable](src Observable[T]) Observable[T] {
	return DistinctUntilChangedFunc(src, func(a, b T) bool { return a == b })
}

// DistinctUntilChangedFunc is DistinctUntilChanged with a custom equality.
func DistinctUntilChangedFunc[T any](src Observable[T], equal func(a, b T) bool) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			last    T
			hasLast bool
		)
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				same := false
				if hasLast {
					if p := SafeExecute(func() { same = equal(last, v) }); p != nil {
						observer.OnError(p)
						return
					}
				}
				if same {
					return
				}
				last, hasLast = v, true
				observer.OnNext(v)
			},
		})
	})
}
