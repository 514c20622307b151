package kv

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store that counts how often each key was
// fetched.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]string
	fetches map[string]int
	puts    int
}

// NewMemoryStore creates a MemoryStore holding a copy of data.
func NewMemoryStore(data map[string]string) *MemoryStore {
	m := &MemoryStore{data: make(map[string]string, len(data)), fetches: make(map[string]int)}
	for k, v := range data {
		m.data[k] = v
	}
	return m
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[key]++
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.puts++
	return nil
}

// Fetches returns how many times key was fetched.
func (m *MemoryStore) Fetches(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[key]
}

// TotalFetches returns the number of Gets served.
func (m *MemoryStore) TotalFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.fetches {
		n += c
	}
	return n
}

// Puts returns the number of Puts served.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Snapshot returns a copy of the stored data.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
