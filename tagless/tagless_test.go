package tagless

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
)

// counter is a tiny algebra: Tick reports a name and returns a number.
type counter interface {
	Tick(name string) (int, error)
}

type names []string

type namesMonoid struct{}

func (namesMonoid) Empty() names { return nil }

func (namesMonoid) Combine(a, b names) names {
	return append(append(names(nil), a...), b...)
}

type recordingCounter struct{ acc *Accumulator[names] }

func (r recordingCounter) Tick(name string) (int, error) {
	r.acc.Add(names{name})
	return 0, nil
}

type realCounter struct{ n int }

func (r *realCounter) Tick(string) (int, error) {
	r.n++
	return r.n, nil
}

type counterOptimizer struct {
	namesMonoid
	rebuilt names
}

func (counterOptimizer) Analyze(acc *Accumulator[names]) counter {
	return recordingCounter{acc: acc}
}

func (o *counterOptimizer) Rebuild(_ context.Context, s names, real counter) (counter, error) {
	o.rebuilt = s
	return real, nil
}

func tick(name string) Program[counter, int] {
	return Effect(func(_ context.Context, c counter) (int, error) { return c.Tick(name) })
}

func TestCombinators(t *testing.T) {
	ctx := context.Background()

	t.Run("Pure", func(t *testing.T) {
		got, err := Pure[counter](7).Run(ctx, &realCounter{})
		if err != nil || got != 7 {
			t.Errorf("got %v, %v", got, err)
		}
	})

	t.Run("Map", func(t *testing.T) {
		got, _ := Map(tick("a"), func(n int) int { return n * 10 }).Run(ctx, &realCounter{})
		if got != 10 {
			t.Errorf("got %d", got)
		}
	})

	t.Run("Map2 runs left then right", func(t *testing.T) {
		p := Map2(tick("a"), tick("b"), func(a, b int) [2]int { return [2]int{a, b} })
		got, _ := p.Run(ctx, &realCounter{})
		if got != [2]int{1, 2} {
			t.Errorf("got %v", got)
		}
	})

	t.Run("Sequence", func(t *testing.T) {
		got, _ := Sequence(tick("a"), tick("b"), tick("c")).Run(ctx, &realCounter{})
		if !reflect.DeepEqual(got, []int{1, 2, 3}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("Sequence stops at the first error", func(t *testing.T) {
		boom := errors.New("boom")
		failing := Effect(func(context.Context, counter) (int, error) { return 0, boom })
		got, err := Sequence(tick("a"), failing, tick("c")).Run(ctx, &realCounter{})
		if !errors.Is(err, boom) || !reflect.DeepEqual(got, []int{1}) {
			t.Errorf("got %v, %v", got, err)
		}
	})
}

func TestExtract(t *testing.T) {
	p := Sequence(tick("a"), tick("b"), tick("a"))
	s, err := Extract(context.Background(), p, &counterOptimizer{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, names{"a", "b", "a"}) {
		t.Errorf("summary = %v", s)
	}
}

func TestExtractIgnoresProgramErrors(t *testing.T) {
	boom := errors.New("boom")
	p := Sequence(tick("first"), Effect(func(context.Context, counter) (int, error) { return 0, boom }), tick("never"))
	s, err := Extract(context.Background(), p, &counterOptimizer{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, names{"first"}) {
		t.Errorf("summary = %v", s)
	}
}

func TestExtractStopsAtDependentSteps(t *testing.T) {
	var called atomic.Int32
	bound := Bind(tick("first"), func(n int) Program[counter, int] {
		called.Add(1)
		return tick(fmt.Sprint("second-", n))
	})
	opaque := FromFunc(func(_ context.Context, c counter) (int, error) {
		called.Add(1)
		return c.Tick("hidden")
	})
	mapped := Map(tick("mapped"), func(int) int {
		called.Add(1)
		return 0
	})

	s, err := Extract(context.Background(), Sequence(bound, opaque, mapped, tick("last")), &counterOptimizer{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, names{"first", "mapped", "last"}) {
		t.Errorf("summary = %v", s)
	}
	if n := called.Load(); n != 0 {
		t.Errorf("user functions ran %d times under analysis", n)
	}

	got, err := Sequence(bound, opaque, mapped).Run(context.Background(), &realCounter{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{2, 3, 0}) || called.Load() != 3 {
		t.Errorf("direct run = %v, calls = %d", got, called.Load())
	}
}

func TestExtractRecoversPanics(t *testing.T) {
	p := Effect(func(ctx context.Context, c counter) (int, error) {
		c.Tick("before")
		panic("bad placeholder")
	})
	s, err := Extract(context.Background(), p, &counterOptimizer{})
	if !errors.Is(err, ErrAnalysis) {
		t.Errorf("err = %v, want ErrAnalysis", err)
	}
	if !reflect.DeepEqual(s, names{"before"}) {
		t.Errorf("summary = %v", s)
	}
}

func TestOptimizeEqualsDirectRun(t *testing.T) {
	p := Map2(tick("a"), tick("b"), func(a, b int) int { return a*10 + b })
	want, _ := p.Run(context.Background(), &realCounter{})

	o := &counterOptimizer{}
	got, err := Optimize(context.Background(), p, counter(&realCounter{}), o)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("optimized = %d, direct = %d", got, want)
	}
	if !reflect.DeepEqual(o.rebuilt, names{"a", "b"}) {
		t.Errorf("rebuild saw %v", o.rebuilt)
	}
}

func TestFold(t *testing.T) {
	if got := Fold[names](namesMonoid{}, names{"a"}, nil, names{"b", "c"}); !reflect.DeepEqual(got, names{"a", "b", "c"}) {
		t.Errorf("got %v", got)
	}
}
