// Error handling operators for rxfrp
// Catch, OnErrorReturn, OnErrorResumeNext and Retry.
package rxfrp

import (
	"sync"
)

// Catch switches to handler(err) when src fails.
func Catch[T any](src Observable[T], handler func(err error) Observable[T]) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return src.Subscribe(&relay[T, T]{
			down:   observer,
			onNext: observer.OnNext,
			onError: func(err error) {
				var recovery Observable[T]
				if p := SafeExecute(func() { recovery = handler(err) }); p != nil {
					observer.OnError(p)
					return
				}
				recovery.Subscribe(&relay[T, T]{down: observer, onNext: observer.OnNext})
			},
		})
	})
}

// OnErrorReturn emits value and completes when src fails.
func OnErrorReturn[T any](src Observable[T], value T) Observable[T] {
	return Catch(src, func(error) Observable[T] { return Just(value) })
}

// OnErrorResumeNext continues with next when src fails.
func OnErrorResumeNext[T any](src Observable[T], next Observable[T]) Observable[T] {
	return Catch(src, func(error) Observable[T] { return next })
}

// Retry resubscribes to src after an error, at most count times. The error
// of the last attempt is delivered downstream.
func Retry[T any](src Observable[T], count int) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			mu       sync.Mutex
			current  Subscription
			stopped  bool
			attempts int
		)
		link(observer, NewDisposable(func() error {
			mu.Lock()
			stopped = true
			c := current
			current = nil
			mu.Unlock()
			if c != nil {
				return c.Dispose()
			}
			return nil
		}))

		var subscribe func()
		subscribe = func() {
			mu.Lock()
			attempt := attempts
			mu.Unlock()
			sub := src.Subscribe(NewObserver(
				observer.OnNext,
				func(err error) {
					mu.Lock()
					retry := !stopped && attempts < count
					attempts++
					mu.Unlock()
					if !retry {
						observer.OnError(err)
						return
					}
					subscribe()
				},
				observer.OnComplete,
			))
			mu.Lock()
			if stopped {
				mu.Unlock()
				reportUndeliverable(sub.Dispose())
				return
			}
			// A synchronous failure may already have started a newer attempt.
			if attempt == attempts {
				current = sub
			}
			mu.Unlock()
		}
		subscribe()
		return nil
	})
}
