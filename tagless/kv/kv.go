// Package kv is a key-value algebra for tagless programs together with its
// static analysis and a prefetching optimizer.
//
// A program written against Store can be run as-is, or through
// tagless.Optimize with an Optimizer: the reads the program will make are
// discovered up front, fetched concurrently and served from memory, and each
// key is fetched from the backing store at most once per run.
package kv

import (
	"context"

	"github.com/xinjiayu/rxfrp/tagless"
)

// Store is the key-value algebra.
type Store interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores value under key.
	Put(ctx context.Context, key, value string) error
}

// Lookup is the result of a Get.
type Lookup struct {
	Value string
	Found bool
}

// Program is a tagless program over Store.
type Program[A any] = tagless.Program[Store, A]

// Get is a program reading key.
func Get(key string) Program[Lookup] {
	return tagless.Effect(func(ctx context.Context, s Store) (Lookup, error) {
		v, ok, err := s.Get(ctx, key)
		return Lookup{Value: v, Found: ok}, err
	})
}

// Put is a program writing value under key.
func Put(key, value string) Program[struct{}] {
	return tagless.Effect(func(ctx context.Context, s Store) (struct{}, error) {
		return struct{}{}, s.Put(ctx, key, value)
	})
}

// Optimize runs p against real through an Optimizer built from options.
func Optimize[A any](ctx context.Context, p Program[A], real Store, options ...Option) (A, error) {
	return tagless.Optimize[Store, A, Summary](ctx, p, real, NewOptimizer(options...))
}
