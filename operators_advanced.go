// Advanced operators for rxfrp
// SwitchMap and WithLatestFrom.
package rxfrp

import (
	"sync"
)

// SwitchMap maps every value of src to an inner Observable and mirrors the
// most recent one; the previous inner subscription is disposed first. It
// completes once src and the current inner Observable have completed.
func SwitchMap[T, R any](src Observable[T], selector func(value T) Observable[R]) Observable[R] {
	return NewObservable(func(observer Observer[R]) Subscription {
		var (
			mu         sync.Mutex
			gen        uint64
			inner      Subscription
			innerDone  = true
			outerDone  bool
			terminated bool
			out        serializer
		)
		// finishLocked queues completion once nothing is left running.
		finishLocked := func() {
			if outerDone && innerDone && !terminated {
				terminated = true
				out.push(observer.OnComplete)
			}
		}
		fail := func(err error) {
			mu.Lock()
			if terminated {
				mu.Unlock()
				return
			}
			terminated = true
			out.push(func() { observer.OnError(err) })
			mu.Unlock()
			out.drain()
		}
		disposeInner := func() error {
			mu.Lock()
			prev := inner
			inner = nil
			gen++
			mu.Unlock()
			if prev != nil {
				return prev.Dispose()
			}
			return nil
		}
		link(observer, NewDisposable(disposeInner))

		return src.Subscribe(&relay[T, R]{
			down: observer,
			onNext: func(v T) {
				var next Observable[R]
				if p := SafeExecute(func() { next = selector(v) }); p != nil {
					fail(p)
					return
				}
				reportUndeliverable(disposeInner())

				mu.Lock()
				if terminated {
					mu.Unlock()
					return
				}
				current := gen
				innerDone = false
				mu.Unlock()

				sub := next.Subscribe(NewObserver(
					func(r R) {
						mu.Lock()
						if gen == current && !terminated {
							out.push(func() { observer.OnNext(r) })
						}
						mu.Unlock()
						out.drain()
					},
					func(err error) {
						mu.Lock()
						stale := gen != current
						mu.Unlock()
						if !stale {
							fail(err)
						}
					},
					func() {
						mu.Lock()
						if gen == current {
							innerDone = true
							finishLocked()
						}
						mu.Unlock()
						out.drain()
					},
				))

				mu.Lock()
				if gen == current && !terminated {
					inner = sub
					sub = nil
				}
				mu.Unlock()
				if sub != nil {
					reportUndeliverable(sub.Dispose())
				}
			},
			onError: fail,
			onComplete: func() {
				mu.Lock()
				outerDone = true
				finishLocked()
				mu.Unlock()
				out.drain()
			},
		})
	})
}

// WithLatestFrom combines every value of src with the latest value of
// other. Values of src that arrive before other has emitted are dropped.
// Completion of other does not complete the result; its error does.
func WithLatestFrom[T, U, R any](src Observable[T], other Observable[U], combiner func(T, U) R) Observable[R] {
	return NewObservable(func(observer Observer[R]) Subscription {
		var (
			mu     sync.Mutex
			latest U
			has    bool
			out    serializer
		)
		other.Subscribe(&relay[U, R]{
			down: observer,
			onNext: func(u U) {
				mu.Lock()
				latest, has = u, true
				mu.Unlock()
			},
			onError:    func(err error) { out.emit(func() { observer.OnError(err) }) },
			onComplete: func() {},
		})

		return src.Subscribe(&relay[T, R]{
			down: observer,
			onNext: func(v T) {
				mu.Lock()
				u, ok := latest, has
				mu.Unlock()
				if !ok {
					return
				}
				var combined R
				if p := SafeExecute(func() { combined = combiner(v, u) }); p != nil {
					out.emit(func() { observer.OnError(p) })
					return
				}
				out.emit(func() { observer.OnNext(combined) })
			},
			onError:    func(err error) { out.emit(func() { observer.OnError(err) }) },
			onComplete: func() { out.emit(observer.OnComplete) },
		})
	})
}
