// Side effect operators for rxfrp
// DoOnNext, DoOnError, DoOnComplete and DoFinally.
package rxfrp

// DoOnNext runs action for every value before forwarding it.
func DoOnNext[T any](src Observable[T], action OnNext[T]) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				if p := SafeExecute(func() { action(v) }); p != nil {
					observer.OnError(p)
					return
				}
				observer.OnNext(v)
			},
		})
	})
}

// DoOnError runs action before forwarding the error.
func DoOnError[T any](src Observable[T], action OnError) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return src.Subscribe(&relay[T, T]{
			down:   observer,
			onNext: observer.OnNext,
			onError: func(err error) {
				reportUndeliverable(SafeExecute(func() { action(err) }))
				observer.OnError(err)
			},
		})
	})
}

// DoOnComplete runs action before forwarding completion.
func DoOnComplete[T any](src Observable[T], action OnComplete) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return src.Subscribe(&relay[T, T]{
			down:   observer,
			onNext: observer.OnNext,
			onComplete: func() {
				if p := SafeExecute(action); p != nil {
					observer.OnError(p)
					return
				}
				observer.OnComplete()
			},
		})
	})
}

// DoFinally runs action once, after the terminal signal was delivered or the
// subscription was disposed, whichever happens first.
func DoFinally[T any](src Observable[T], action func()) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		link(observer, NewActionDisposable(action))
		return src.Subscribe(&relay[T, T]{down: observer, onNext: observer.OnNext})
	})
}
