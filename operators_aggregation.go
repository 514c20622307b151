// Aggregation operators for rxfrp
// Scan emits every intermediate fold, Reduce only the final one.
package rxfrp

// Reducer folds a value into an accumulator.
type Reducer[A, T any] func(acc A, value T) A

// Scan folds values with f starting from seed and emits the accumulator after
// every value. The accumulator belongs to one subscription; independent
// subscriptions start from seed again.
func Scan[T, A any](src Observable[T], seed A, f Reducer[A, T]) Observable[A] {
	return NewObservable(func(observer Observer[A]) Subscription {
		acc := seed
		return src.Subscribe(&relay[T, A]{
			down: observer,
			onNext: func(v T) {
				var next A
				if p := SafeExecute(func() { next = f(acc, v) }); p != nil {
					observer.OnError(p)
					return
				}
				acc = next
				observer.OnNext(acc)
			},
		})
	})
}

// Reduce folds values with f and emits the result once src completes.
func Reduce[T, A any](src Observable[T], seed A, f Reducer[A, T]) Observable[A] {
	return NewObservable(func(observer Observer[A]) Subscription {
		acc := seed
		return src.Subscribe(&relay[T, A]{
			down: observer,
			onNext: func(v T) {
				var next A
				if p := SafeExecute(func() { next = f(acc, v) }); p != nil {
					observer.OnError(p)
					return
				}
				acc = next
			},
			onComplete: func() {
				observer.OnNext(acc)
				observer.OnComplete()
			},
		})
	})
}

// Count emits the number of values once src completes.
func Count[T any](src Observable[T]) Observable[int] {
	return Reduce(src, 0, func(n int, _ T) int { return n + 1 })
}
