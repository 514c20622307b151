// Scheduler implementations for rxfrp
// Immediate, goroutine and virtual-time schedulers.
package rxfrp

import (
	"sort"
	"sync"
	"time"
)

// Scheduler controls when and where actions run. Operators that need time
// receive one through WithScheduler instead of reading a global clock.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
	// Schedule runs action as soon as possible.
	Schedule(action func()) Disposable
	// ScheduleWithDelay runs action after delay. Disposing the result
	// before it fires cancels it.
	ScheduleWithDelay(action func(), delay time.Duration) Disposable
}

// ============================================================================
// Immediate Scheduler
// ============================================================================

// immediateScheduler runs actions on the calling goroutine.
type immediateScheduler struct{}

// NewImmediateScheduler creates a scheduler that runs Schedule inline and
// delayed actions on a runtime timer.
func NewImmediateScheduler() Scheduler {
	return immediateScheduler{}
}

func (immediateScheduler) Now() time.Time { return time.Now() }

func (immediateScheduler) Schedule(action func()) Disposable {
	action()
	return EmptyDisposable()
}

func (immediateScheduler) ScheduleWithDelay(action func(), delay time.Duration) Disposable {
	return afterFunc(action, delay)
}

// ============================================================================
// Goroutine Scheduler
// ============================================================================

// goroutineScheduler runs every action on its own goroutine.
type goroutineScheduler struct{}

// NewGoroutineScheduler creates a scheduler that starts a goroutine per
// action.
func NewGoroutineScheduler() Scheduler {
	return goroutineScheduler{}
}

func (goroutineScheduler) Now() time.Time { return time.Now() }

func (goroutineScheduler) Schedule(action func()) Disposable {
	d := NewActionDisposable(nil)
	go func() {
		if !d.IsDisposed() {
			action()
		}
	}()
	return d
}

func (goroutineScheduler) ScheduleWithDelay(action func(), delay time.Duration) Disposable {
	return afterFunc(action, delay)
}

func afterFunc(action func(), delay time.Duration) Disposable {
	var (
		mu       sync.Mutex
		canceled bool
	)
	timer := time.AfterFunc(delay, func() {
		mu.Lock()
		c := canceled
		mu.Unlock()
		if !c {
			action()
		}
	})
	return NewActionDisposable(func() {
		mu.Lock()
		canceled = true
		mu.Unlock()
		timer.Stop()
	})
}

// ============================================================================
// Test Scheduler
// ============================================================================

// TestScheduler is a virtual-time scheduler. Nothing runs until the clock
// is advanced.
type TestScheduler struct {
	mu     sync.Mutex
	clock  time.Time
	nextID uint64
	queue  []scheduledAction
}

type scheduledAction struct {
	at     time.Time
	id     uint64
	action func()
}

// NewTestScheduler creates a test scheduler whose clock starts at the Unix
// epoch.
func NewTestScheduler() *TestScheduler {
	return &TestScheduler{clock: time.Unix(0, 0).UTC()}
}

// Now returns the virtual time.
func (s *TestScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Clock returns the virtual time elapsed since the epoch start.
func (s *TestScheduler) Clock() time.Duration {
	return s.Now().Sub(time.Unix(0, 0))
}

// Schedule queues action at the current virtual time.
func (s *TestScheduler) Schedule(action func()) Disposable {
	return s.ScheduleWithDelay(action, 0)
}

// ScheduleWithDelay queues action at now+delay.
func (s *TestScheduler) ScheduleWithDelay(action func(), delay time.Duration) Disposable {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleAtLocked(s.clock.Add(delay), action)
}

// ScheduleAt queues action at an absolute virtual time.
func (s *TestScheduler) ScheduleAt(at time.Time, action func()) Disposable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleAtLocked(at, action)
}

func (s *TestScheduler) scheduleAtLocked(at time.Time, action func()) Disposable {
	s.nextID++
	id := s.nextID
	s.queue = append(s.queue, scheduledAction{at: at, id: id, action: action})
	// Ordered by (time, id): equal times run in scheduling order.
	sort.Slice(s.queue, func(i, j int) bool {
		a, b := s.queue[i], s.queue[j]
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.id < b.id
	})
	return NewActionDisposable(func() { s.remove(id) })
}

// AdvanceTimeBy moves the clock forward and runs every action due.
func (s *TestScheduler) AdvanceTimeBy(d time.Duration) {
	s.AdvanceTimeTo(s.Now().Add(d))
}

// AdvanceTimeTo moves the clock to t and runs every action due at or before
// t, in time order. Actions scheduled by running actions are honored when
// they fall inside the window.
func (s *TestScheduler) AdvanceTimeTo(t time.Time) {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].at.After(t) {
			if t.After(s.clock) {
				s.clock = t
			}
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		if next.at.After(s.clock) {
			s.clock = next.at
		}
		s.mu.Unlock()

		next.action()
	}
}

// Pending reports the number of queued actions.
func (s *TestScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *TestScheduler) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.queue {
		if a.id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// ============================================================================
// Defaults
// ============================================================================

var (
	// ImmediateScheduler runs actions inline.
	ImmediateScheduler Scheduler = NewImmediateScheduler()

	// GoroutineScheduler runs each action on a new goroutine.
	GoroutineScheduler Scheduler = NewGoroutineScheduler()

	// DefaultScheduler is used when no WithScheduler option is given.
	DefaultScheduler Scheduler = GoroutineScheduler
)
