// Observable tests for rxfrp
package rxfrp

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestIndependentSubscriptions(t *testing.T) {
	subject := NewSubject[int]()
	src := Map(subject, func(v int) (int, error) { return v * 10, nil })

	first := NewRecorder[int]()
	second := NewRecorder[int]()
	sub1 := src.Subscribe(first)
	src.Subscribe(second)

	subject.OnNext(1)
	sub1.Dispose()
	subject.OnNext(2)
	subject.OnComplete()

	if got := first.Values(); !reflect.DeepEqual(got, []int{10}) {
		t.Errorf("first = %v, want [10]", got)
	}
	if got := second.Values(); !reflect.DeepEqual(got, []int{10, 20}) {
		t.Errorf("second = %v, want [10 20]", got)
	}
	if !second.Completed() {
		t.Error("second did not complete")
	}
	if first.Terminated() {
		t.Error("disposed subscription received a terminal signal")
	}
}

func TestColdObservableRunsPerSubscription(t *testing.T) {
	var runs int
	src := Create(func(ctx context.Context, observer Observer[int]) error {
		runs++
		observer.OnNext(runs)
		return nil
	})

	a, _ := ToSlice(context.Background(), src)
	b, _ := ToSlice(context.Background(), src)
	if !reflect.DeepEqual(a, []int{1}) || !reflect.DeepEqual(b, []int{2}) {
		t.Errorf("a=%v b=%v", a, b)
	}
}

func TestNoDeliveryAfterDispose(t *testing.T) {
	upstream := make(chan int)
	ack := make(chan struct{})
	src := NewObservable(func(observer Observer[int]) Subscription {
		go func() {
			for v := range upstream {
				observer.OnNext(v)
				ack <- struct{}{}
			}
		}()
		return nil
	})
	send := func(v int) {
		upstream <- v
		<-ack
	}

	rec := NewRecorder[int]()
	sub := src.Subscribe(rec)
	send(1)
	send(2)
	sub.Dispose()

	// Upstream keeps emitting after Dispose returned.
	for i := range 100 {
		send(i)
	}
	close(upstream)

	if got := rec.Values(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("values = %v, want [1 2]", got)
	}
}

func TestDisposeFromInsideEmission(t *testing.T) {
	var (
		got []int
		sub Subscription
	)
	observer := &disposingObserver{onNext: func(v int) {
		got = append(got, v)
		if v == 3 {
			sub.Dispose()
		}
	}}
	observer.subscribed = func(s Subscription) { sub = s }

	Range(1, 10).Subscribe(observer)
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

// disposingObserver captures its subscription before the producer runs.
type disposingObserver struct {
	subscribed func(Subscription)
	onNext     func(int)
}

func (o *disposingObserver) OnSubscribe(s Subscription) { o.subscribed(s) }
func (o *disposingObserver) OnNext(v int)               { o.onNext(v) }
func (o *disposingObserver) OnError(error)              {}
func (o *disposingObserver) OnComplete()                {}

func TestProducerPanicBecomesError(t *testing.T) {
	src := NewObservable(func(observer Observer[int]) Subscription {
		observer.OnNext(1)
		panic("producer exploded")
	})

	rec := NewRecorder[int]()
	src.Subscribe(rec)

	var pe *PanicError
	if !errors.As(rec.Err(), &pe) {
		t.Fatalf("err = %v, want *PanicError", rec.Err())
	}
	if !reflect.DeepEqual(rec.Values(), []int{1}) {
		t.Errorf("values = %v", rec.Values())
	}
}

func TestObserverPanicBecomesError(t *testing.T) {
	var gotErr error
	Just(1, 2, 3).Subscribe(NewObserver(
		func(v int) {
			if v == 2 {
				panic("observer exploded")
			}
		},
		func(err error) { gotErr = err },
		nil,
	))
	var pe *PanicError
	if !errors.As(gotErr, &pe) {
		t.Errorf("err = %v, want *PanicError", gotErr)
	}
}

func TestTerminalGrammar(t *testing.T) {
	captureErrors(t)

	src := NewObservable(func(observer Observer[int]) Subscription {
		observer.OnNext(1)
		observer.OnComplete()
		observer.OnNext(2)
		observer.OnComplete()
		observer.OnError(errors.New("late"))
		return nil
	})
	rec := NewRecorder[int]()
	src.Subscribe(rec)

	if !reflect.DeepEqual(rec.Values(), []int{1}) {
		t.Errorf("values = %v", rec.Values())
	}
	if rec.Terminals() != 1 {
		t.Errorf("terminal signals = %d, want 1", rec.Terminals())
	}
}

func TestTerminateReleasesUpstream(t *testing.T) {
	released := make(chan struct{})
	src := NewObservable(func(observer Observer[int]) Subscription {
		return NewActionDisposable(func() { close(released) })
	})
	subject := NewSubject[int]()
	merged := Merge(src, subject)

	rec := NewRecorder[int]()
	merged.Subscribe(rec)
	subject.OnError(errors.New("stop"))

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("upstream not released on terminate")
	}
}

func TestCreate(t *testing.T) {
	t.Run("error return", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ToSlice(context.Background(), Create(func(ctx context.Context, o Observer[int]) error {
			o.OnNext(1)
			return boom
		}))
		if !errors.Is(err, boom) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("context canceled on dispose", func(t *testing.T) {
		started := make(chan struct{})
		finished := make(chan struct{})
		src := Create(func(ctx context.Context, o Observer[int]) error {
			close(started)
			<-ctx.Done()
			close(finished)
			return ctx.Err()
		})
		sub := SubscribeOn(src, GoroutineScheduler).Subscribe(NewRecorder[int]())
		<-started
		sub.Dispose()
		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("context not canceled")
		}
	})
}

func TestDefer(t *testing.T) {
	n := 0
	src := Defer(func() Observable[int] {
		n++
		return Just(n)
	})
	a, _ := ToSlice(context.Background(), src)
	b, _ := ToSlice(context.Background(), src)
	if a[0] != 1 || b[0] != 2 {
		t.Errorf("a=%v b=%v", a, b)
	}
}

func TestToChannel(t *testing.T) {
	t.Run("values then close", func(t *testing.T) {
		ch, _ := ToChannel(Range(0, 3))
		var got []int
		for item := range ch {
			if item.IsError() {
				t.Fatalf("unexpected error %v", item.Err)
			}
			got = append(got, item.Value)
		}
		if !reflect.DeepEqual(got, []int{0, 1, 2}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("error is the last item", func(t *testing.T) {
		boom := errors.New("boom")
		ch, _ := ToChannel(Concat(Just(1), Throw[int](boom)))
		var items []Item[int]
		for item := range ch {
			items = append(items, item)
		}
		if len(items) != 2 || !errors.Is(items[1].Err, boom) {
			t.Errorf("items = %+v", items)
		}
	})

	t.Run("dispose closes the channel", func(t *testing.T) {
		subject := NewSubject[int]()
		ch, sub := ToChannel[int](subject, WithBufferSize(0))
		sub.Dispose()
		subject.OnNext(1)
		select {
		case _, ok := <-ch:
			if ok {
				t.Error("received a value after dispose")
			}
		case <-time.After(time.Second):
			t.Fatal("channel not closed")
		}
	})
}

func TestToSliceContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ToSlice(ctx, Never[int]())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
}

func TestObserveOn(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int
	)
	done := make(chan struct{})
	ObserveOn(Range(0, 50), GoroutineScheduler).Subscribe(NewObserver(
		func(v int) {
			mu.Lock()
			seen = append(seen, v)
			mu.Unlock()
		},
		nil,
		func() { close(done) },
	))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range seen {
		if v != i {
			t.Fatalf("out of order at %d: %v", i, seen)
		}
	}
	if len(seen) != 50 {
		t.Errorf("got %d values", len(seen))
	}
}

func TestStats(t *testing.T) {
	ResetStats()
	sub := Never[int]().Subscribe(NewRecorder[int]())
	s := GetStats()
	if s.SubscriptionsCreated < 1 || s.ActiveSubscriptions < 1 {
		t.Errorf("stats after subscribe = %+v", s)
	}
	sub.Dispose()
	sub.Dispose()
	if got := GetStats().SubscriptionsReleased; got < 1 {
		t.Errorf("released = %d", got)
	}
}
