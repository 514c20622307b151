// Combination operators for rxfrp
// CombineLatest, ParApply, Merge, Concat and StartWith.
package rxfrp

import (
	"sync"
)

// ============================================================================
// CombineLatest
// ============================================================================

// CombineLatest emits combiner(latest values) whenever any source emits,
// once every source has emitted at least once. The latest-value slots are
// read and written under one lock, so a combined value never mixes a torn
// pair. It completes when every source has completed, or at once when a
// source completes without ever emitting. The first error from any source
// terminates the result and disposes the other sources.
func CombineLatest[T, R any](sources []Observable[T], combiner func(values []T) R) Observable[R] {
	if len(sources) == 0 {
		return Empty[R]()
	}
	return NewObservable(func(observer Observer[R]) Subscription {
		n := len(sources)
		var (
			mu        sync.Mutex
			latest    = make([]T, n)
			has       = make([]bool, n)
			ready     int
			completed int
			out       serializer
		)

		for i, src := range sources {
			src.Subscribe(&relay[T, R]{
				down: observer,
				onNext: func(v T) {
					mu.Lock()
					if !has[i] {
						has[i] = true
						ready++
					}
					latest[i] = v
					if ready == n {
						snapshot := append([]T(nil), latest...)
						out.push(func() {
							var combined R
							if p := SafeExecute(func() { combined = combiner(snapshot) }); p != nil {
								observer.OnError(p)
								return
							}
							observer.OnNext(combined)
						})
					}
					mu.Unlock()
					out.drain()
				},
				onError: func(err error) {
					out.emit(func() { observer.OnError(err) })
				},
				onComplete: func() {
					mu.Lock()
					completed++
					done := completed == n || !has[i]
					if done {
						out.push(observer.OnComplete)
					}
					mu.Unlock()
					out.drain()
				},
			})
		}
		return nil
	})
}

// CombineLatest2 is CombineLatest for two sources of different types.
func CombineLatest2[A, B, R any](a Observable[A], b Observable[B], combiner func(A, B) R) Observable[R] {
	left := Map(a, func(v A) (pair[A, B], error) { return pair[A, B]{a: v}, nil })
	right := Map(b, func(v B) (pair[A, B], error) { return pair[A, B]{b: v}, nil })
	return CombineLatest([]Observable[pair[A, B]]{left, right}, func(values []pair[A, B]) R {
		return combiner(values[0].a, values[1].b)
	})
}

// pair carries one side of CombineLatest2.
type pair[A, B any] struct {
	a A
	b B
}

// ParApply applies the latest function of fs to the latest value of values,
// re-emitting whenever either side changes.
func ParApply[A, B any](fs Observable[func(A) B], values Observable[A]) Observable[B] {
	return CombineLatest2(fs, values, func(f func(A) B, v A) B { return f(v) })
}

// ============================================================================
// Merge / Concat
// ============================================================================

// Merge interleaves the values of all sources, one signal at a time. It
// completes when every source has completed; the first error terminates it.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	if len(sources) == 0 {
		return Empty[T]()
	}
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			mu        sync.Mutex
			completed int
			out       serializer
		)
		for _, src := range sources {
			src.Subscribe(&relay[T, T]{
				down: observer,
				onNext: func(v T) {
					out.emit(func() { observer.OnNext(v) })
				},
				onError: func(err error) {
					out.emit(func() { observer.OnError(err) })
				},
				onComplete: func() {
					mu.Lock()
					completed++
					if completed == len(sources) {
						out.push(observer.OnComplete)
					}
					mu.Unlock()
					out.drain()
				},
			})
		}
		return nil
	})
}

// Concat subscribes to each source after the previous one completed.
func Concat[T any](sources ...Observable[T]) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		var subscribeAt func(i int)
		subscribeAt = func(i int) {
			if i == len(sources) {
				observer.OnComplete()
				return
			}
			sources[i].Subscribe(&relay[T, T]{
				down:       observer,
				onNext:     observer.OnNext,
				onComplete: func() { subscribeAt(i + 1) },
			})
		}
		subscribeAt(0)
		return nil
	})
}

// StartWith emits values before the values of src.
func StartWith[T any](src Observable[T], values ...T) Observable[T] {
	return Concat(FromSlice(values), src)
}
