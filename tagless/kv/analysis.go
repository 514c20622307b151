package kv

import (
	"context"

	"github.com/xinjiayu/rxfrp/tagless"
)

// Analysis is the Store a program runs against during extraction. Get
// reports a miss and Put does nothing; both only record themselves.
type Analysis struct {
	acc *tagless.Accumulator[Summary]
}

// NewAnalysis records into acc.
func NewAnalysis(acc *tagless.Accumulator[Summary]) *Analysis {
	return &Analysis{acc: acc}
}

func (a *Analysis) Get(_ context.Context, key string) (string, bool, error) {
	a.acc.Add(Read(key))
	return "", false, nil
}

func (a *Analysis) Put(_ context.Context, key, value string) error {
	a.acc.Add(Write(key, value))
	return nil
}
