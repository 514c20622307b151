// Factory functions for rxfrp
// Sources built from values, slices, channels and the scheduler's clock.
package rxfrp

import (
	"context"
	"sync"
	"time"
)

// ============================================================================
// Basic sources
// ============================================================================

// Just emits values synchronously on subscribe and completes.
func Just[T any](values ...T) Observable[T] {
	return FromSlice(values)
}

// FromSlice emits the elements of slice in order and completes. Emission
// stops early once the subscription is disposed.
func FromSlice[T any](slice []T) Observable[T] {
	return Create(func(ctx context.Context, observer Observer[T]) error {
		for _, v := range slice {
			if ctx.Err() != nil {
				return nil
			}
			observer.OnNext(v)
		}
		return nil
	})
}

// Range emits count consecutive integers starting at start.
func Range(start, count int) Observable[int] {
	return Create(func(ctx context.Context, observer Observer[int]) error {
		for i := range count {
			if ctx.Err() != nil {
				return nil
			}
			observer.OnNext(start + i)
		}
		return nil
	})
}

// Empty completes immediately.
func Empty[T any]() Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		observer.OnComplete()
		return nil
	})
}

// Never emits nothing and never terminates.
func Never[T any]() Observable[T] {
	return NewObservable(func(Observer[T]) Subscription {
		return nil
	})
}

// Throw terminates immediately with err.
func Throw[T any](err error) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		observer.OnError(err)
		return nil
	})
}

// ============================================================================
// Channels
// ============================================================================

// FromChannel emits the values received from ch on a new goroutine and
// completes when ch is closed. Disposing stops the reader; ch is not closed.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-ch:
					if !ok {
						observer.OnComplete()
						return
					}
					observer.OnNext(v)
				}
			}
		}()

		return NewActionDisposable(cancel)
	})
}

// ============================================================================
// Time
// ============================================================================

// Interval emits 0, 1, 2, ... every period on the configured scheduler.
func Interval(period time.Duration, options ...Option) Observable[int] {
	config := newConfig(options)
	return NewObservable(func(observer Observer[int]) Subscription {
		var (
			mu      sync.Mutex
			pending Disposable
			stopped bool
			counter int
		)
		var tick func()
		tick = func() {
			observer.OnNext(counter)
			counter++
			mu.Lock()
			if !stopped {
				pending = config.Scheduler.ScheduleWithDelay(tick, period)
			}
			mu.Unlock()
		}
		mu.Lock()
		pending = config.Scheduler.ScheduleWithDelay(tick, period)
		mu.Unlock()

		return NewDisposable(func() error {
			mu.Lock()
			stopped = true
			p := pending
			mu.Unlock()
			return p.Dispose()
		})
	})
}

// Timer emits 0 after delay and completes.
func Timer(delay time.Duration, options ...Option) Observable[int] {
	config := newConfig(options)
	return NewObservable(func(observer Observer[int]) Subscription {
		return config.Scheduler.ScheduleWithDelay(func() {
			observer.OnNext(0)
			observer.OnComplete()
		}, delay)
	})
}
