// Runtime statistics for rxfrp
package rxfrp

import (
	"runtime"
	"sync/atomic"
)

// Stats is a snapshot of process-wide stream counters.
type Stats struct {
	SubscriptionsCreated   int64 // subscriptions started
	SubscriptionsReleased  int64 // subscriptions that terminated or were disposed
	ActiveSubscriptions    int64
	MaxActiveSubscriptions int64
	UndeliverableErrors    int64 // errors handed to the ErrorHandler
	Panics                 int64 // panics recovered into errors
	Goroutines             int64
}

type statsCounters struct {
	created       atomic.Int64
	released      atomic.Int64
	active        atomic.Int64
	maxActive     atomic.Int64
	undeliverable atomic.Int64
	panics        atomic.Int64
}

var globalStats statsCounters

// GetStats returns the current counters.
func GetStats() Stats {
	return Stats{
		SubscriptionsCreated:   globalStats.created.Load(),
		SubscriptionsReleased:  globalStats.released.Load(),
		ActiveSubscriptions:    globalStats.active.Load(),
		MaxActiveSubscriptions: globalStats.maxActive.Load(),
		UndeliverableErrors:    globalStats.undeliverable.Load(),
		Panics:                 globalStats.panics.Load(),
		Goroutines:             int64(runtime.NumGoroutine()),
	}
}

// ResetStats zeroes the counters. Active subscriptions keep counting down
// from zero when they are released.
func ResetStats() {
	globalStats.created.Store(0)
	globalStats.released.Store(0)
	globalStats.active.Store(0)
	globalStats.maxActive.Store(0)
	globalStats.undeliverable.Store(0)
	globalStats.panics.Store(0)
}

func statSubscriptionCreated() {
	globalStats.created.Add(1)
	current := globalStats.active.Add(1)
	for {
		m := globalStats.maxActive.Load()
		if current <= m || globalStats.maxActive.CompareAndSwap(m, current) {
			break
		}
	}
}

func statSubscriptionReleased() {
	globalStats.released.Add(1)
	globalStats.active.Add(-1)
}
