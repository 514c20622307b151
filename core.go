// Package rxfrp provides push-based reactive streams for Go: observables,
// operators, subjects and schedulers built on plain callbacks, with
// explicit disposal and injected time.
package rxfrp

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Observer
// ============================================================================

// Observer receives the values and the terminal signal of a stream.
//
// A stream delivers OnNext zero or more times followed by at most one of
// OnError or OnComplete.
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnComplete()
}

// subscribeAware is implemented by observers that want the Subscription
// before the producer starts.
type subscribeAware interface {
	OnSubscribe(sub Subscription)
}

// OnNext handles a value.
type OnNext[T any] func(value T)

// OnError handles the error signal.
type OnError func(err error)

// OnComplete handles the completion signal.
type OnComplete func()

type funcObserver[T any] struct {
	onNext     OnNext[T]
	onError    OnError
	onComplete OnComplete
}

// NewObserver builds an Observer from callbacks. Nil callbacks are ignored.
func NewObserver[T any](onNext OnNext[T], onError OnError, onComplete OnComplete) Observer[T] {
	return &funcObserver[T]{onNext: onNext, onError: onError, onComplete: onComplete}
}

func (o *funcObserver[T]) OnNext(value T) {
	if o.onNext != nil {
		o.onNext(value)
	}
}

func (o *funcObserver[T]) OnError(err error) {
	if o.onError != nil {
		o.onError(err)
	}
}

func (o *funcObserver[T]) OnComplete() {
	if o.onComplete != nil {
		o.onComplete()
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

// Disposable is a releasable resource.
//
// Dispose is idempotent and safe to call concurrently. Only the first call
// runs the cleanup; later calls return nil.
type Disposable interface {
	Dispose() error
	IsDisposed() bool
}

// Subscription is the handle returned by Subscribe.
type Subscription = Disposable

// baseDisposable runs its action once.
type baseDisposable struct {
	disposed atomic.Bool
	action   func() error
}

// NewDisposable creates a Disposable that runs action on first Dispose.
func NewDisposable(action func() error) Disposable {
	return &baseDisposable{action: action}
}

// NewActionDisposable is NewDisposable for cleanups that cannot fail.
func NewActionDisposable(action func()) Disposable {
	return &baseDisposable{action: func() error {
		if action != nil {
			action()
		}
		return nil
	}}
}

// EmptyDisposable returns a Disposable with nothing to release.
func EmptyDisposable() Disposable {
	return &baseDisposable{}
}

func (d *baseDisposable) Dispose() error {
	if !d.disposed.CompareAndSwap(false, true) {
		return nil
	}
	if d.action == nil {
		return nil
	}
	return d.action()
}

func (d *baseDisposable) IsDisposed() bool {
	return d.disposed.Load()
}

// CompositeDisposable disposes a group of resources together.
type CompositeDisposable struct {
	mu        sync.Mutex
	disposed  bool
	resources []Disposable
}

// NewCompositeDisposable creates a group holding the given resources.
func NewCompositeDisposable(resources ...Disposable) *CompositeDisposable {
	cd := &CompositeDisposable{}
	for _, r := range resources {
		if r != nil {
			cd.resources = append(cd.resources, r)
		}
	}
	return cd
}

// Add adds a resource. If the group is already disposed the resource is
// disposed immediately and its error returned.
func (cd *CompositeDisposable) Add(d Disposable) error {
	if d == nil {
		return nil
	}
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return d.Dispose()
	}
	cd.resources = append(cd.resources, d)
	cd.mu.Unlock()
	return nil
}

// Remove drops a resource from the group without disposing it.
func (cd *CompositeDisposable) Remove(d Disposable) {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	for i, r := range cd.resources {
		if r == d {
			cd.resources = append(cd.resources[:i], cd.resources[i+1:]...)
			return
		}
	}
}

// Len reports the number of held resources.
func (cd *CompositeDisposable) Len() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return len(cd.resources)
}

// Dispose releases every resource, in insertion order. A failing resource
// does not stop the others; all failures are joined.
func (cd *CompositeDisposable) Dispose() error {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return nil
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	var errs []error
	for _, r := range resources {
		if err := safeDispose(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsDisposed reports whether Dispose has been called.
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.disposed
}

// safeDispose disposes d and turns a panic into an error.
func safeDispose(d Disposable) (err error) {
	if p := SafeExecute(func() { err = d.Dispose() }); p != nil {
		return p
	}
	return err
}

// ============================================================================
// Helpers
// ============================================================================

// SafeExecute runs action and returns a *PanicError if it panicked.
func SafeExecute(action func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	action()
	return nil
}

// serializer runs signals one at a time in push order. A goroutine that
// pushes while another one drains returns at once and the drainer runs its
// signal; pushes made from inside a running signal are queued the same way,
// so re-entrant emission never deadlocks.
type serializer struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

// push queues signal without running it.
func (s *serializer) push(signal func()) {
	s.mu.Lock()
	s.queue = append(s.queue, signal)
	s.mu.Unlock()
}

// drain runs queued signals unless another goroutine already does.
func (s *serializer) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		signal := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()
		reportUndeliverable(SafeExecute(signal))
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// emit is push followed by drain.
func (s *serializer) emit(signal func()) {
	s.push(signal)
	s.drain()
}
