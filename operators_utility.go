// Utility operators for rxfrp
package rxfrp

import (
	"sync"
)

// DefaultIfEmpty emits value when src completes without emitting.
func DefaultIfEmpty[T any](src Observable[T], value T) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		empty := true
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				empty = false
				observer.OnNext(v)
			},
			onComplete: func() {
				if empty {
					observer.OnNext(value)
				}
				observer.OnComplete()
			},
		})
	})
}

// IgnoreElements forwards only the terminal signal of src.
func IgnoreElements[T any](src Observable[T]) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return src.Subscribe(&relay[T, T]{down: observer, onNext: func(T) {}})
	})
}

// TakeLast emits the last count values of src when it completes.
func TakeLast[T any](src Observable[T], count int) Observable[T] {
	if count <= 0 {
		return IgnoreElements(src)
	}
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			mu  sync.Mutex
			buf []T
		)
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				mu.Lock()
				buf = append(buf, v)
				if len(buf) > count {
					buf = buf[len(buf)-count:]
				}
				mu.Unlock()
			},
			onComplete: func() {
				mu.Lock()
				out := buf
				buf = nil
				mu.Unlock()
				for _, v := range out {
					observer.OnNext(v)
				}
				observer.OnComplete()
			},
		})
	})
}

// Notification is a materialized signal.
type Notification[T any] struct {
	Value    T
	Err      error
	Complete bool
}

// Materialize turns every signal of src, terminal ones included, into a
// value. The result completes after the materialized terminal signal.
func Materialize[T any](src Observable[T]) Observable[Notification[T]] {
	return NewObservable(func(observer Observer[Notification[T]]) Subscription {
		return src.Subscribe(&relay[T, Notification[T]]{
			down:   observer,
			onNext: func(v T) { observer.OnNext(Notification[T]{Value: v}) },
			onError: func(err error) {
				observer.OnNext(Notification[T]{Err: err})
				observer.OnComplete()
			},
			onComplete: func() {
				observer.OnNext(Notification[T]{Complete: true})
				observer.OnComplete()
			},
		})
	})
}
