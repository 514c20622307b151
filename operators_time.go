// Time-based operators for rxfrp
// Debounce and Throttle, driven by the injected Scheduler.
package rxfrp

import (
	"sync"
	"time"
)

// Debounce emits a value only after src has been quiet for duration.
// Values followed by another one within duration are discarded. On
// completion a pending value is flushed before completing; on error it is
// dropped. Timers come from the scheduler given with WithScheduler.
func Debounce[T any](src Observable[T], duration time.Duration, options ...Option) Observable[T] {
	config := newConfig(options)
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			mu      sync.Mutex
			latest  T
			has     bool
			gen     uint64
			pending Disposable
			out     serializer
		)
		// cancelLocked must be called with mu held.
		cancelLocked := func() {
			if pending != nil {
				config.handleError(pending.Dispose())
				pending = nil
			}
		}
		takeLocked := func() (T, bool) {
			v, ok := latest, has
			var zero T
			latest, has = zero, false
			return v, ok
		}

		link(observer, NewActionDisposable(func() {
			mu.Lock()
			cancelLocked()
			takeLocked()
			mu.Unlock()
		}))

		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				mu.Lock()
				defer mu.Unlock()
				cancelLocked()
				latest, has = v, true
				gen++
				current := gen
				pending = config.Scheduler.ScheduleWithDelay(func() {
					mu.Lock()
					if gen != current {
						mu.Unlock()
						return
					}
					value, ok := takeLocked()
					pending = nil
					if ok {
						out.push(func() { observer.OnNext(value) })
					}
					mu.Unlock()
					out.drain()
				}, duration)
			},
			onError: func(err error) {
				mu.Lock()
				cancelLocked()
				takeLocked()
				out.push(func() { observer.OnError(err) })
				mu.Unlock()
				out.drain()
			},
			onComplete: func() {
				mu.Lock()
				cancelLocked()
				if value, ok := takeLocked(); ok {
					out.push(func() { observer.OnNext(value) })
				}
				out.push(observer.OnComplete)
				mu.Unlock()
				out.drain()
			},
		})
	})
}

// Throttle emits the first value of every window of length duration and
// drops the rest of the window.
func Throttle[T any](src Observable[T], duration time.Duration, options ...Option) Observable[T] {
	config := newConfig(options)
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			mu        sync.Mutex
			windowEnd time.Time
			started   bool
		)
		return src.Subscribe(&relay[T, T]{
			down: observer,
			onNext: func(v T) {
				now := config.Scheduler.Now()
				mu.Lock()
				if started && now.Before(windowEnd) {
					mu.Unlock()
					return
				}
				started = true
				windowEnd = now.Add(duration)
				mu.Unlock()
				observer.OnNext(v)
			},
		})
	})
}
