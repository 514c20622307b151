package kv

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xinjiayu/rxfrp/tagless"
)

type entry struct {
	value string
	found bool
}

// fetch is one in-flight read of a key; done is closed once it finished.
type fetch struct {
	done  chan struct{}
	entry entry
	err   error
}

// Optimized serves reads from a cache filled by prefetching and by earlier
// reads, and writes through to the backing Store. Each key is fetched from
// the backing Store at most once while it succeeds; failed fetches are not
// cached, so the next Get retries and sees the error as the backing Store
// reports it.
type Optimized struct {
	real Store

	mu      sync.Mutex
	fetches map[string]*fetch
}

// NewOptimized prefetches every key summary reads, at most MaxConcurrency at
// a time (values below 1 mean 1), and returns once all of them have
// finished. It fails only if ctx is done.
func NewOptimized(ctx context.Context, real Store, summary Summary, options ...Option) (*Optimized, error) {
	cfg := DefaultConfig()
	for _, opt := range options {
		opt.Apply(&cfg)
	}
	o := &Optimized{real: real, fetches: make(map[string]*fetch)}

	keys := summary.ReadKeys()
	sem := make(chan struct{}, max(cfg.MaxConcurrency, 1))
	var wg sync.WaitGroup
	for _, key := range keys {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if _, _, err := o.Get(ctx, key); err != nil {
				slog.Debug("kv: prefetch failed", "key", key, "error", err)
			}
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns the cached value of key, fetching it if needed. Concurrent
// Gets of the same key share one fetch.
func (o *Optimized) Get(ctx context.Context, key string) (string, bool, error) {
	o.mu.Lock()
	f, ok := o.fetches[key]
	if !ok {
		f = &fetch{done: make(chan struct{})}
		o.fetches[key] = f
	}
	o.mu.Unlock()

	if ok {
		select {
		case <-f.done:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
		if f.err == nil {
			return f.entry.value, f.entry.found, nil
		}
		// The fetch we waited on failed; try ourselves.
		return o.Get(ctx, key)
	}

	v, found, err := o.real.Get(ctx, key)
	f.entry, f.err = entry{value: v, found: found}, err
	if err != nil {
		o.mu.Lock()
		if o.fetches[key] == f {
			delete(o.fetches, key)
		}
		o.mu.Unlock()
	}
	close(f.done)
	return v, found, err
}

// Put writes through to the backing Store and, on success, makes later Gets
// of key return value.
func (o *Optimized) Put(ctx context.Context, key, value string) error {
	if err := o.real.Put(ctx, key, value); err != nil {
		return err
	}
	f := &fetch{done: make(chan struct{}), entry: entry{value: value, found: true}}
	close(f.done)
	o.mu.Lock()
	o.fetches[key] = f
	o.mu.Unlock()
	return nil
}

// Optimizer is the tagless.Optimizer of the Store algebra.
type Optimizer struct {
	SummaryMonoid
	options []Option
}

var _ tagless.Optimizer[Store, Summary] = (*Optimizer)(nil)

// NewOptimizer creates an Optimizer whose rebuilt stores use options.
func NewOptimizer(options ...Option) *Optimizer {
	return &Optimizer{options: options}
}

// Analyze returns an Analysis recording into acc.
func (o *Optimizer) Analyze(acc *tagless.Accumulator[Summary]) Store {
	return NewAnalysis(acc)
}

// Rebuild prefetches the reads of summary from real.
func (o *Optimizer) Rebuild(ctx context.Context, summary Summary, real Store) (Store, error) {
	return NewOptimized(ctx, real, summary, o.options...)
}
