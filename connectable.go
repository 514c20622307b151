// Shared observables for rxfrp
// Share multicasts one upstream subscription with reference counting.
package rxfrp

import (
	"errors"
	"sync"
)

// shared is the connection state behind Share.
type shared[T any] struct {
	source Observable[T]

	mu         sync.Mutex
	subject    *Subject[T]
	connection Subscription
	refs       int
}

// Share turns a cold source into a hot one. The first subscriber connects
// a single upstream subscription whose signals are multicast to every
// subscriber; when the last subscriber leaves, the upstream subscription is
// disposed. After upstream terminates, the next subscriber reconnects.
func Share[T any](source Observable[T]) Observable[T] {
	sh := &shared[T]{source: source}
	return NewObservable(sh.attach)
}

func (sh *shared[T]) attach(observer Observer[T]) Subscription {
	sh.mu.Lock()
	subject := sh.subject
	connect := false
	if subject == nil || subject.IsTerminated() {
		subject = NewSubject[T]()
		sh.subject = subject
		sh.connection = nil
		connect = true
	}
	sh.refs++
	sh.mu.Unlock()

	inner := subject.Subscribe(observer)

	if connect {
		conn := sh.source.Subscribe(subject)
		sh.mu.Lock()
		if sh.subject == subject {
			sh.connection = conn
			conn = nil
		}
		sh.mu.Unlock()
		if conn != nil {
			reportUndeliverable(conn.Dispose())
		}
	}

	return NewDisposable(func() error {
		err := inner.Dispose()
		sh.mu.Lock()
		sh.refs--
		var conn Subscription
		if sh.refs == 0 && sh.subject == subject {
			conn = sh.connection
			sh.subject = nil
			sh.connection = nil
		}
		sh.mu.Unlock()
		if conn != nil {
			return errors.Join(err, conn.Dispose())
		}
		return err
	})
}
