// Errors for rxfrp
package rxfrp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrNoElements is returned by blocking operators when a stream completes
// without emitting.
var ErrNoElements = errors.New("rxfrp: no elements")

// PanicError carries a value recovered from a panicking producer, operator
// callback or cleanup.
type PanicError struct {
	Value any
}

func newPanicError(v any) *PanicError {
	globalStats.panics.Add(1)
	return &PanicError{Value: v}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rxfrp: recovered panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ============================================================================
// Undeliverable errors
// ============================================================================

// ErrorHandler receives errors that have no caller to return to, such as a
// cleanup failing while a terminated subscription disposes its upstream.
type ErrorHandler func(err error)

var globalErrorHandler atomic.Pointer[ErrorHandler]

func init() {
	SetErrorHandler(nil)
}

// SetErrorHandler replaces the package level ErrorHandler. Passing nil
// restores the default, which logs through slog at warn level.
func SetErrorHandler(h ErrorHandler) {
	if h == nil {
		h = logUndeliverable
	}
	globalErrorHandler.Store(&h)
}

func logUndeliverable(err error) {
	slog.LogAttrs(context.Background(), slog.LevelWarn, "rxfrp: undeliverable error",
		slog.String("error", err.Error()))
}

func currentErrorHandler() ErrorHandler {
	return *globalErrorHandler.Load()
}
