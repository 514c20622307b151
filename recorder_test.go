package rxfrp

import (
	"sync"
	"testing"
	"time"
)

// Recorder records the signals an observer receives.
//
// Recorder is safe under concurrent signals.
type Recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	err       error
	completed bool
	terminals int
	done      chan struct{}
}

func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{done: make(chan struct{})}
}

func (r *Recorder[T]) OnNext(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *Recorder[T]) OnError(err error) {
	r.terminate(err, false)
}

func (r *Recorder[T]) OnComplete() {
	r.terminate(nil, true)
}

func (r *Recorder[T]) terminate(err error, completed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminals++
	if r.terminals > 1 {
		return
	}
	r.err, r.completed = err, completed
	close(r.done)
}

// Values returns a snapshot copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminals counts terminal signals; a well-behaved stream delivers at most
// one.
func (r *Recorder[T]) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminals
}

func (r *Recorder[T]) Terminated() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait fails the test if no terminal signal arrives within a second.
func (r *Recorder[T]) Wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a terminal signal")
	}
}
