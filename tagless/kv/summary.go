package kv

import (
	"maps"
	"slices"
)

// Summary is what the analysis of a program learned: the keys it reads and
// the last value it writes to each key.
type Summary struct {
	Reads  map[string]struct{}
	Writes map[string]string
}

// ReadKeys returns the read keys in sorted order.
func (s Summary) ReadKeys() []string {
	return slices.Sorted(maps.Keys(s.Reads))
}

// Read returns a Summary holding one read.
func Read(key string) Summary {
	return Summary{Reads: map[string]struct{}{key: {}}}
}

// Write returns a Summary holding one write.
func Write(key, value string) Summary {
	return Summary{Writes: map[string]string{key: value}}
}

// SummaryMonoid unions reads; for writes the right-hand side wins.
type SummaryMonoid struct{}

// Empty is the Summary with no reads or writes.
func (SummaryMonoid) Empty() Summary {
	return Summary{}
}

// Combine never mutates a or b.
func (SummaryMonoid) Combine(a, b Summary) Summary {
	out := Summary{}
	if len(a.Reads)+len(b.Reads) > 0 {
		out.Reads = make(map[string]struct{}, len(a.Reads)+len(b.Reads))
		maps.Copy(out.Reads, a.Reads)
		maps.Copy(out.Reads, b.Reads)
	}
	if len(a.Writes)+len(b.Writes) > 0 {
		out.Writes = make(map[string]string, len(a.Writes)+len(b.Writes))
		maps.Copy(out.Writes, a.Writes)
		maps.Copy(out.Writes, b.Writes)
	}
	return out
}
