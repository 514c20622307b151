package tagless

import (
	"context"
)

// Program describes a computation whose effects go through an Alg only.
//
// Programs built from Effect, Pure, Map, Map2 and Sequence have a static
// shape: the operations they perform do not depend on the results of
// earlier operations, so running them against an analysis algebra observes
// every operation. Bind and FromFunc mark where that stops being true;
// analysis does not look past them.
type Program[Alg, A any] struct {
	run func(ctx context.Context, alg Alg) (A, error)
}

// Run interprets p against alg.
func (p Program[Alg, A]) Run(ctx context.Context, alg Alg) (A, error) {
	return p.run(ctx, alg)
}

type analysisKey struct{}

func withAnalysis(ctx context.Context) context.Context {
	return context.WithValue(ctx, analysisKey{}, true)
}

// Analyzing reports whether ctx belongs to an Extract run.
func Analyzing(ctx context.Context) bool {
	v, _ := ctx.Value(analysisKey{}).(bool)
	return v
}

// Effect lifts one algebra operation. f must not choose what to do from the
// results of other operations it performs; use Bind for that.
func Effect[Alg, A any](f func(ctx context.Context, alg Alg) (A, error)) Program[Alg, A] {
	return Program[Alg, A]{run: f}
}

// FromFunc wraps arbitrary code. Analysis treats it as opaque: it is not run
// and contributes nothing to the summary, so every operation it performs is
// served directly by the real algebra.
func FromFunc[Alg, A any](f func(ctx context.Context, alg Alg) (A, error)) Program[Alg, A] {
	return Program[Alg, A]{run: func(ctx context.Context, alg Alg) (A, error) {
		if Analyzing(ctx) {
			var zero A
			return zero, nil
		}
		return f(ctx, alg)
	}}
}

// Pure is a Program with no effects.
func Pure[Alg, A any](value A) Program[Alg, A] {
	return Program[Alg, A]{run: func(context.Context, Alg) (A, error) {
		return value, nil
	}}
}

// Map transforms the result of p. Under analysis f is not called.
func Map[Alg, A, B any](p Program[Alg, A], f func(A) B) Program[Alg, B] {
	return Program[Alg, B]{run: func(ctx context.Context, alg Alg) (B, error) {
		var zero B
		a, err := p.Run(ctx, alg)
		if err != nil || Analyzing(ctx) {
			return zero, err
		}
		return f(a), nil
	}}
}

// Map2 combines two independent programs. Both are run, pa first; neither
// sees the other's result, which is what lets an analysis observe both.
func Map2[Alg, A, B, C any](pa Program[Alg, A], pb Program[Alg, B], f func(A, B) C) Program[Alg, C] {
	return Program[Alg, C]{run: func(ctx context.Context, alg Alg) (C, error) {
		var zero C
		a, err := pa.Run(ctx, alg)
		if err != nil {
			return zero, err
		}
		b, err := pb.Run(ctx, alg)
		if err != nil || Analyzing(ctx) {
			return zero, err
		}
		return f(a, b), nil
	}}
}

// Sequence runs independent programs in order and collects their results.
// It stops at the first error.
func Sequence[Alg, A any](programs ...Program[Alg, A]) Program[Alg, []A] {
	return Program[Alg, []A]{run: func(ctx context.Context, alg Alg) ([]A, error) {
		out := make([]A, 0, len(programs))
		for _, p := range programs {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			a, err := p.Run(ctx, alg)
			if err != nil {
				return out, err
			}
			out = append(out, a)
		}
		return out, nil
	}}
}

// Bind runs p, then the program f builds from its result. Only p is
// analyzed: what f does depends on a value analysis does not have.
func Bind[Alg, A, B any](p Program[Alg, A], f func(A) Program[Alg, B]) Program[Alg, B] {
	return Program[Alg, B]{run: func(ctx context.Context, alg Alg) (B, error) {
		var zero B
		a, err := p.Run(ctx, alg)
		if err != nil || Analyzing(ctx) {
			return zero, err
		}
		return f(a).Run(ctx, alg)
	}}
}

// Discard keeps the effects of p and drops its result.
func Discard[Alg, A any](p Program[Alg, A]) Program[Alg, struct{}] {
	return Map(p, func(A) struct{} { return struct{}{} })
}
