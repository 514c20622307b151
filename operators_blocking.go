// Blocking operators for rxfrp
// Helpers that wait for a stream on the calling goroutine.
package rxfrp

import (
	"context"
)

// BlockingForEach calls action for every value of src and waits until src
// terminates or ctx ends. It returns the error src failed with, or
// ctx.Err().
func BlockingForEach[T any](ctx context.Context, src Observable[T], action func(value T)) error {
	done := make(chan error, 1)
	sub := src.Subscribe(NewObserver(
		OnNext[T](action),
		func(err error) { done <- err },
		func() { done <- nil },
	))
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		reportUndeliverable(sub.Dispose())
		return ctx.Err()
	}
}

// BlockingFirst waits for the first value of src. It returns ErrNoElements
// when src completes empty.
func BlockingFirst[T any](ctx context.Context, src Observable[T]) (T, error) {
	var (
		first T
		found bool
	)
	err := BlockingForEach(ctx, Take(src, 1), func(v T) {
		first, found = v, true
	})
	if err == nil && !found {
		err = ErrNoElements
	}
	return first, err
}

// BlockingLast waits for src to complete and returns its last value. It
// returns ErrNoElements when src completes empty.
func BlockingLast[T any](ctx context.Context, src Observable[T]) (T, error) {
	values, err := ToSlice(ctx, TakeLast(src, 1))
	if err != nil {
		var zero T
		return zero, err
	}
	if len(values) == 0 {
		var zero T
		return zero, ErrNoElements
	}
	return values[0], nil
}

// BlockingWait waits for src to terminate and discards its values.
func BlockingWait[T any](ctx context.Context, src Observable[T]) error {
	return BlockingForEach(ctx, src, func(T) {})
}
