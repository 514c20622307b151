// Observable implementation for rxfrp
// Cold observables, the safe observer state machine and subscribe helpers.
package rxfrp

import (
	"context"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Observable
// ============================================================================

// Observable is a lazy push-based producer. Nothing happens until Subscribe
// is called, and every call drives its own production unless the
// implementation is explicitly hot (Subject, Variable, Share).
type Observable[T any] interface {
	Subscribe(observer Observer[T]) Subscription
}

// OnSubscribeFunc produces values into observer and returns the resources
// to release when the subscription ends.
type OnSubscribeFunc[T any] func(observer Observer[T]) Subscription

// observableImpl runs its source once per subscription.
type observableImpl[T any] struct {
	source OnSubscribeFunc[T]
}

// NewObservable wraps a raw producer. The observer handed to source is
// protected: late calls after a terminal signal or disposal are dropped,
// and a panic inside source is delivered as OnError.
func NewObservable[T any](source OnSubscribeFunc[T]) Observable[T] {
	return &observableImpl[T]{source: source}
}

// Subscribe starts production for observer.
func (o *observableImpl[T]) Subscribe(observer Observer[T]) Subscription {
	s := newSafeObserver(observer)
	if aware, ok := observer.(subscribeAware); ok {
		aware.OnSubscribe(s)
	}
	if s.IsDisposed() {
		return s
	}

	var upstream Subscription
	if err := SafeExecute(func() { upstream = o.source(s) }); err != nil {
		s.OnError(err)
	}
	if upstream != nil {
		s.OnSubscribe(upstream)
	}
	return s
}

// Create builds an Observable from a synchronous producer. The producer runs
// on the subscribing goroutine; ctx is canceled when the subscription is
// disposed or terminates. A non-nil error is delivered as OnError, a nil
// return completes the stream; neither is delivered once ctx is done.
func Create[T any](producer func(ctx context.Context, observer Observer[T]) error) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		ctx, cancel := context.WithCancel(context.Background())
		cancelSub := NewActionDisposable(cancel)
		link(observer, cancelSub)

		err := producer(ctx, observer)
		if ctx.Err() != nil {
			// Already disposed or terminated by the producer.
			return cancelSub
		}
		if err != nil {
			observer.OnError(err)
		} else {
			observer.OnComplete()
		}
		return cancelSub
	})
}

// Defer calls factory on every subscribe and subscribes to its result.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		return factory().Subscribe(observer)
	})
}

// SubscribeFunc subscribes with callbacks.
func SubscribeFunc[T any](src Observable[T], onNext OnNext[T], onError OnError, onComplete OnComplete) Subscription {
	return src.Subscribe(NewObserver(onNext, onError, onComplete))
}

// link hands d to observer when it tracks upstream resources. Operators use
// it so that disposing downstream reaches upstream before Subscribe returns.
func link(observer any, d Disposable) {
	if aware, ok := observer.(subscribeAware); ok {
		aware.OnSubscribe(d)
	}
}

// relay is the observer operators subscribe upstream with. Nil onError
// and onComplete forward to down unchanged.
type relay[T, R any] struct {
	down       Observer[R]
	onNext     func(value T)
	onError    func(err error)
	onComplete func()
}

func (r *relay[T, R]) OnSubscribe(upstream Subscription) {
	link(r.down, upstream)
}

func (r *relay[T, R]) OnNext(value T) {
	r.onNext(value)
}

func (r *relay[T, R]) OnError(err error) {
	if r.onError != nil {
		r.onError(err)
		return
	}
	r.down.OnError(err)
}

func (r *relay[T, R]) OnComplete() {
	if r.onComplete != nil {
		r.onComplete()
		return
	}
	r.down.OnComplete()
}

// ============================================================================
// Safe observer
// ============================================================================

const (
	stateActive int32 = iota
	stateTerminated
	stateDisposed
)

// safeObserver enforces the observer grammar for one subscription:
// Active -> Terminated on the first error or completion, Active -> Disposed
// on Dispose. Nothing leaves Terminated or Disposed.
type safeObserver[T any] struct {
	state     atomic.Int32
	target    Observer[T]
	resources *CompositeDisposable
}

func newSafeObserver[T any](target Observer[T]) *safeObserver[T] {
	statSubscriptionCreated()
	return &safeObserver[T]{
		target:    target,
		resources: NewCompositeDisposable(),
	}
}

func (s *safeObserver[T]) OnNext(value T) {
	if s.state.Load() != stateActive {
		return
	}
	if err := SafeExecute(func() { s.target.OnNext(value) }); err != nil {
		s.OnError(err)
	}
}

func (s *safeObserver[T]) OnError(err error) {
	if !s.state.CompareAndSwap(stateActive, stateTerminated) {
		reportUndeliverable(err)
		return
	}
	if p := SafeExecute(func() { s.target.OnError(err) }); p != nil {
		reportUndeliverable(p)
	}
	s.release()
}

func (s *safeObserver[T]) OnComplete() {
	if !s.state.CompareAndSwap(stateActive, stateTerminated) {
		return
	}
	if p := SafeExecute(s.target.OnComplete); p != nil {
		reportUndeliverable(p)
	}
	s.release()
}

// OnSubscribe registers an upstream resource released with this
// subscription.
func (s *safeObserver[T]) OnSubscribe(upstream Subscription) {
	if upstream == Subscription(s) {
		return
	}
	reportUndeliverable(s.resources.Add(upstream))
}

// Dispose stops delivery and releases upstream resources. Errors from the
// cleanups are joined and returned.
func (s *safeObserver[T]) Dispose() error {
	if s.state.CompareAndSwap(stateActive, stateDisposed) {
		statSubscriptionReleased()
	}
	return s.resources.Dispose()
}

func (s *safeObserver[T]) IsDisposed() bool {
	return s.state.Load() != stateActive
}

func (s *safeObserver[T]) release() {
	statSubscriptionReleased()
	reportUndeliverable(s.resources.Dispose())
}

func reportUndeliverable(err error) {
	if err != nil {
		globalStats.undeliverable.Add(1)
		currentErrorHandler()(err)
	}
}

// ============================================================================
// Scheduling
// ============================================================================

// SubscribeOn performs the subscription to src on scheduler.
func SubscribeOn[T any](src Observable[T], scheduler Scheduler) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		group := NewCompositeDisposable()
		link(observer, group)
		reportUndeliverable(group.Add(scheduler.Schedule(func() {
			if group.IsDisposed() {
				return
			}
			src.Subscribe(observer)
		})))
		return group
	})
}

// ObserveOn delivers the signals of src on scheduler, one at a time and in
// upstream order.
func ObserveOn[T any](src Observable[T], scheduler Scheduler) Observable[T] {
	return NewObservable(func(observer Observer[T]) Subscription {
		var (
			mu      sync.Mutex
			queue   []func()
			running bool
		)
		drain := func() {
			for {
				mu.Lock()
				if len(queue) == 0 {
					running = false
					mu.Unlock()
					return
				}
				next := queue[0]
				queue = queue[1:]
				mu.Unlock()
				next()
			}
		}
		push := func(signal func()) {
			mu.Lock()
			queue = append(queue, signal)
			start := !running
			running = true
			mu.Unlock()
			if start {
				scheduler.Schedule(drain)
			}
		}

		return src.Subscribe(&relay[T, T]{
			down:       observer,
			onNext:     func(v T) { push(func() { observer.OnNext(v) }) },
			onError:    func(err error) { push(func() { observer.OnError(err) }) },
			onComplete: func() { push(observer.OnComplete) },
		})
	})
}

// ============================================================================
// Collecting
// ============================================================================

// Item is a value or an error taken from a stream.
type Item[T any] struct {
	Value T
	Err   error
}

// IsError reports whether the item carries an error.
func (i Item[T]) IsError() bool {
	return i.Err != nil
}

// ToChannel subscribes to src on the configured scheduler and forwards
// values to a channel that is closed when src terminates. An error arrives
// as the last Item. Disposing the returned Subscription stops forwarding
// and closes the channel.
func ToChannel[T any](src Observable[T], options ...Option) (<-chan Item[T], Subscription) {
	config := newConfig(options)
	ch := make(chan Item[T], config.BufferSize)
	done := make(chan struct{})

	var (
		sendMu sync.Mutex
		closed bool
	)
	send := func(item Item[T]) {
		sendMu.Lock()
		defer sendMu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- item:
		case <-done:
		}
	}
	closeCh := func() {
		sendMu.Lock()
		defer sendMu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}

	sub := SubscribeOn(src, config.Scheduler).Subscribe(NewObserver(
		func(v T) { send(Item[T]{Value: v}) },
		func(err error) {
			send(Item[T]{Err: err})
			closeCh()
		},
		closeCh,
	))
	stop := NewActionDisposable(func() {
		close(done)
		closeCh()
	})
	return ch, NewCompositeDisposable(sub, stop)
}

// ToSlice blocks until src terminates and returns every value. If ctx ends
// first the subscription is disposed and ctx.Err() is returned with the
// values seen so far.
func ToSlice[T any](ctx context.Context, src Observable[T]) ([]T, error) {
	var (
		mu     sync.Mutex
		values []T
	)
	done := make(chan error, 1)
	sub := src.Subscribe(NewObserver(
		func(v T) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
		func(err error) { done <- err },
		func() { done <- nil },
	))

	snapshot := func() []T {
		mu.Lock()
		defer mu.Unlock()
		return append([]T(nil), values...)
	}

	select {
	case err := <-done:
		return snapshot(), err
	case <-ctx.Done():
		_ = sub.Dispose()
		return snapshot(), ctx.Err()
	}
}
