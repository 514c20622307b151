// Subject implementations for rxfrp
// Subject multicasts to its current observers; Variable also replays its
// current value.
package rxfrp

import (
	"sync"
)

// ============================================================================
// Subject
// ============================================================================

// Subject is a hot Observable that is also an Observer: every value pushed
// in is delivered to the observers subscribed at that moment. Observers that
// subscribe after a terminal signal receive that signal immediately.
//
// Signals are delivered one at a time in the order they were pushed, even
// when producers run on several goroutines or push from inside an observer.
type Subject[T any] struct {
	mu        sync.Mutex
	observers []subjectEntry[T]
	nextID    uint64
	done      bool
	err       error
	out       serializer
	stream    Observable[T]

	// replay, when set, is called with mu held for every new observer.
	replay func(observer Observer[T])
}

type subjectEntry[T any] struct {
	id       uint64
	observer Observer[T]
}

// NewSubject creates a Subject with no observers.
func NewSubject[T any]() *Subject[T] {
	return newSubject[T](nil)
}

func newSubject[T any](replay func(Observer[T])) *Subject[T] {
	s := &Subject[T]{replay: replay}
	s.stream = NewObservable(s.attach)
	return s
}

// Subscribe adds observer until the returned Subscription is disposed.
func (s *Subject[T]) Subscribe(observer Observer[T]) Subscription {
	return s.stream.Subscribe(observer)
}

func (s *Subject[T]) attach(observer Observer[T]) Subscription {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.out.push(func() { deliverTerminal(observer, err) })
		s.mu.Unlock()
		s.out.drain()
		return nil
	}
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subjectEntry[T]{id: id, observer: observer})
	if s.replay != nil {
		s.replay(observer)
	}
	s.mu.Unlock()
	s.out.drain()

	return NewActionDisposable(func() { s.detach(id) })
}

func (s *Subject[T]) detach(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.observers {
		if e.id == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// OnNext delivers value to the current observers. Ignored after a terminal
// signal.
func (s *Subject[T]) OnNext(value T) {
	s.nextWith(func() T { return value })
}

// nextWith computes the value under the lock before queueing its delivery,
// so state changes and delivery order agree.
func (s *Subject[T]) nextWith(compute func() T) bool {
	if !s.enqueueNext(compute) {
		return false
	}
	s.out.drain()
	return true
}

func (s *Subject[T]) enqueueNext(compute func() T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	value := compute()
	targets := s.snapshotLocked()
	s.out.push(func() {
		for _, o := range targets {
			o.OnNext(value)
		}
	})
	return true
}

// OnError terminates the Subject with err.
func (s *Subject[T]) OnError(err error) {
	s.terminate(err)
}

// OnComplete terminates the Subject.
func (s *Subject[T]) OnComplete() {
	s.terminate(nil)
}

func (s *Subject[T]) terminate(err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		if err != nil {
			reportUndeliverable(err)
		}
		return
	}
	s.done = true
	s.err = err
	targets := s.snapshotLocked()
	s.observers = nil
	s.out.push(func() {
		for _, o := range targets {
			deliverTerminal(o, err)
		}
	})
	s.mu.Unlock()
	s.out.drain()
}

func (s *Subject[T]) snapshotLocked() []Observer[T] {
	targets := make([]Observer[T], len(s.observers))
	for i, e := range s.observers {
		targets[i] = e.observer
	}
	return targets
}

// HasObservers reports whether any observer is subscribed.
func (s *Subject[T]) HasObservers() bool {
	return s.ObserverCount() > 0
}

// ObserverCount returns the number of subscribed observers.
func (s *Subject[T]) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// IsTerminated reports whether OnError or OnComplete has been called.
func (s *Subject[T]) IsTerminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func deliverTerminal[T any](observer Observer[T], err error) {
	if err != nil {
		observer.OnError(err)
		return
	}
	observer.OnComplete()
}
