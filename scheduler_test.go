// Scheduler tests for rxfrp
package rxfrp

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestTestScheduler(t *testing.T) {
	t.Run("runs due actions in time order", func(t *testing.T) {
		s := NewTestScheduler()
		var order []string
		s.ScheduleWithDelay(func() { order = append(order, "c") }, 30*time.Millisecond)
		s.ScheduleWithDelay(func() { order = append(order, "a") }, 10*time.Millisecond)
		s.ScheduleWithDelay(func() { order = append(order, "b1") }, 20*time.Millisecond)
		s.ScheduleWithDelay(func() { order = append(order, "b2") }, 20*time.Millisecond)

		s.AdvanceTimeBy(25 * time.Millisecond)
		if !reflect.DeepEqual(order, []string{"a", "b1", "b2"}) {
			t.Errorf("order = %v", order)
		}
		if s.Clock() != 25*time.Millisecond {
			t.Errorf("clock = %v", s.Clock())
		}
		s.AdvanceTimeBy(5 * time.Millisecond)
		if len(order) != 4 {
			t.Errorf("order = %v", order)
		}
	})

	t.Run("equal times keep scheduling order", func(t *testing.T) {
		s := NewTestScheduler()
		var order, want []int
		for i := range 50 {
			// Interleave earlier actions so the queue is re-sorted often.
			s.ScheduleWithDelay(func() {}, time.Duration(50-i)*time.Microsecond)
			s.ScheduleWithDelay(func() { order = append(order, i) }, time.Millisecond)
			want = append(want, i)
		}
		s.AdvanceTimeBy(time.Millisecond)
		if !reflect.DeepEqual(order, want) {
			t.Errorf("order = %v", order)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		s := NewTestScheduler()
		ran := false
		d := s.ScheduleWithDelay(func() { ran = true }, time.Second)
		d.Dispose()
		s.AdvanceTimeBy(time.Minute)
		if ran || s.Pending() != 0 {
			t.Errorf("ran=%v pending=%d", ran, s.Pending())
		}
	})

	t.Run("actions scheduled while advancing", func(t *testing.T) {
		s := NewTestScheduler()
		var at []time.Duration
		var tick func()
		tick = func() {
			at = append(at, s.Clock())
			if len(at) < 3 {
				s.ScheduleWithDelay(tick, 10*time.Millisecond)
			}
		}
		s.Schedule(tick)
		s.AdvanceTimeBy(time.Second)
		want := []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond}
		if !reflect.DeepEqual(at, want) {
			t.Errorf("at = %v, want %v", at, want)
		}
	})
}

func TestRealSchedulers(t *testing.T) {
	for _, tt := range []struct {
		name      string
		scheduler Scheduler
	}{
		{"immediate", NewImmediateScheduler()},
		{"goroutine", NewGoroutineScheduler()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan struct{})
			tt.scheduler.Schedule(func() { close(done) })
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Schedule did not run")
			}

			delayed := make(chan struct{})
			tt.scheduler.ScheduleWithDelay(func() { close(delayed) }, 5*time.Millisecond)
			select {
			case <-delayed:
			case <-time.After(time.Second):
				t.Fatal("ScheduleWithDelay did not run")
			}

			var ran atomic.Bool
			d := tt.scheduler.ScheduleWithDelay(func() { ran.Store(true) }, 50*time.Millisecond)
			d.Dispose()
			time.Sleep(100 * time.Millisecond)
			if ran.Load() {
				t.Error("canceled action ran")
			}
		})
	}
}
