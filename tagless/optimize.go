package tagless

import (
	"context"
	"errors"
	"fmt"
)

// Analyzer builds the analysis algebra of Alg around an Accumulator.
type Analyzer[Alg, S any] interface {
	Monoid[S]
	// Analyze returns an Alg whose operations only add to acc and return
	// placeholder results. It must have no other effect.
	Analyze(acc *Accumulator[S]) Alg
}

// Optimizer is an Analyzer that can also rebuild a real algebra from a
// summary.
type Optimizer[Alg, S any] interface {
	Analyzer[Alg, S]
	// Rebuild returns an algebra equivalent to real that may prefetch or
	// batch what summary names.
	Rebuild(ctx context.Context, summary S, real Alg) (Alg, error)
}

// ErrAnalysis marks a program that failed under analysis.
var ErrAnalysis = errors.New("tagless: analysis")

// Extract runs p against the analysis algebra of an and returns the summary.
//
// Only the static part of p is analyzed: Bind continuations and FromFunc
// bodies are skipped, so a key computed from an earlier result never
// reaches the summary. Errors returned by p are ignored. A panic is
// reported as ErrAnalysis together with the summary gathered up to that
// point.
func Extract[Alg, A, S any](ctx context.Context, p Program[Alg, A], an Analyzer[Alg, S]) (summary S, err error) {
	acc := NewAccumulator[S](an)
	defer func() {
		if r := recover(); r != nil {
			summary = acc.Value()
			err = fmt.Errorf("%w: program panicked: %v", ErrAnalysis, r)
		}
	}()

	_, _ = p.Run(withAnalysis(ctx), an.Analyze(acc))
	return acc.Value(), ctx.Err()
}

// Rebuild builds the optimized algebra for summary.
func Rebuild[Alg, S any](ctx context.Context, summary S, real Alg, o Optimizer[Alg, S]) (Alg, error) {
	return o.Rebuild(ctx, summary, real)
}

// Optimize extracts the summary of p, rebuilds real around it and runs p on
// the result. If analysis fails the program still runs, against an algebra
// rebuilt from whatever was gathered.
func Optimize[Alg, A, S any](ctx context.Context, p Program[Alg, A], real Alg, o Optimizer[Alg, S]) (A, error) {
	var zero A
	summary, err := Extract(ctx, p, o)
	if err != nil && !errors.Is(err, ErrAnalysis) {
		return zero, err
	}
	optimized, err := Rebuild(ctx, summary, real, o)
	if err != nil {
		return zero, fmt.Errorf("tagless: rebuild: %w", err)
	}
	return p.Run(ctx, optimized)
}
