package parallel

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teenjuna/decu/internal/testing/require"
)

type power struct {
	Data     int
	Exponent int
}

func pow(ctx context.Context, p power) (int, error) {
	return int(math.Pow(float64(p.Data), float64(p.Exponent))), nil
}

func jitter() {
	time.Sleep(time.Duration(rand.IntN(2000)) * time.Microsecond)
}

func TestRunOrder(t *testing.T) {
	results, err := Run(t.Context(), pow, []power{{10, 1}, {10, 2}, {10, 3}})
	require.Nil(t, err)
	require.Equal(t, results, []int{10, 100, 1000})
}

func TestRunOrderUnderJitter(t *testing.T) {
	params := make([]power, 0)
	for p := range 10 {
		params = append(params, power{Data: 10, Exponent: p})
	}

	results, err := Run(
		t.Context(),
		func(ctx context.Context, p power) (int, error) {
			jitter()
			return pow(ctx, p)
		},
		params,
		func(c *Config) { c.Workers(4) },
	)
	require.Nil(t, err)

	for i, p := range params {
		want, _ := pow(t.Context(), p)
		require.Equal(t, results[i], want)
	}
}

func TestRunMultipleParams(t *testing.T) {
	type args struct {
		Data, Exponent, Bias int
	}

	params := make([]args, 0)
	for i := range 10 {
		params = append(params, args{Data: 10, Exponent: i, Bias: 10 + i})
	}

	results, err := Run(
		t.Context(),
		func(ctx context.Context, a args) (int, error) {
			jitter()
			n, _ := pow(ctx, power{a.Data, a.Exponent})
			return n + a.Bias, nil
		},
		params,
	)
	require.Nil(t, err)

	for i, a := range params {
		n, _ := pow(t.Context(), power{a.Data, a.Exponent})
		require.Equal(t, results[i], n+a.Bias)
	}
}

func TestRunShared(t *testing.T) {
	shared := func(ctx context.Context, data, p int) (int, error) {
		jitter()
		return pow(ctx, power{data, p})
	}

	results, err := RunShared(t.Context(), shared, 10, []int{1, 2, 3})
	require.Nil(t, err)
	require.Equal(t, results, map[int]int{1: 10, 2: 100, 3: 1000})

	calls := atomic.Int64{}
	results, err = RunShared(
		t.Context(),
		func(ctx context.Context, data, p int) (int, error) {
			calls.Add(1)
			return data * p, nil
		},
		2,
		[]int{5, 5, 6},
	)
	require.Nil(t, err)
	require.Equal(t, results, map[int]int{5: 10, 6: 12})
	require.Equal(t, calls.Load(), int64(3))
}

func TestRunSharedLaterDuplicateWins(t *testing.T) {
	calls := atomic.Int64{}

	results, err := RunShared(
		t.Context(),
		func(ctx context.Context, offset int, p string) (int, error) {
			return offset + int(calls.Add(1)) - 1, nil
		},
		100,
		[]string{"a", "b", "a"},
		func(c *Config) { c.Workers(1) },
	)
	require.Nil(t, err)
	require.Equal(t, results, map[string]int{"a": 102, "b": 101})
}

func TestRunEmpty(t *testing.T) {
	results, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			t.Fatal("fn called without params")
			return 0, nil
		},
		nil,
	)
	require.Nil(t, err)
	require.Equal(t, len(results), 0)
}

func TestRunFailure(t *testing.T) {
	errBoom := errors.New("boom")
	started := atomic.Int64{}

	results, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			started.Add(1)
			if p == 3 {
				return 0, errBoom
			}
			return p, nil
		},
		[]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		func(c *Config) { c.Workers(1) },
	)
	require.Nil(t, results)
	require.ErrorIs(t, err, errBoom)

	jobErr := require.ErrorAs[*JobError](t, err)
	require.Equal(t, jobErr.Index, 3)

	// A single worker stops at the failing job.
	require.Equal(t, started.Load(), int64(4))
}

func TestRunPanic(t *testing.T) {
	_, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			if p == 1 {
				panic("bad parameter")
			}
			return p, nil
		},
		[]int{0, 1, 2},
	)

	jobErr := require.ErrorAs[*JobError](t, err)
	require.Equal(t, jobErr.Index, 1)

	panicErr := require.ErrorAs[*PanicError](t, err)
	require.Equal(t, panicErr.Value, "bad parameter")
	require.NotEqual(t, len(panicErr.Stack), 0)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Run(ctx, pow, []power{{1, 1}, {2, 2}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunWorkersBound(t *testing.T) {
	const workers = 3
	var busy, peak atomic.Int64

	_, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			n := busy.Add(1)
			defer busy.Add(-1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			jitter()
			return p, nil
		},
		make([]int, 50),
		func(c *Config) { c.Workers(workers) },
	)
	require.Nil(t, err)
	require.True(t, peak.Load() <= workers, "more jobs ran at once than workers")
}

func TestRunRecyclesWorkers(t *testing.T) {
	var inits atomic.Int64
	reg := prometheus.NewRegistry()
	p := Prometheus(reg)

	results, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			return p * 2, nil
		},
		[]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		func(c *Config) {
			c.Workers(2)
			c.MaxTasks(2)
			c.Prometheus(p)
			c.Initializer(func(ctx context.Context) context.Context {
				inits.Add(1)
				return ctx
			})
		},
	)
	require.Nil(t, err)
	require.Equal(t, results, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18})
	require.True(t, inits.Load() >= 5, "workers were not recycled")

	require.Equal(t, gathered(t, reg, "decu_parallel_jobs_started"), 10.0)
	require.Equal(t, gathered(t, reg, "decu_parallel_jobs_failed"), 0.0)
	require.True(t, gathered(t, reg, "decu_parallel_workers_recycled") >= 3, "recycling not counted")
}

func TestCounterShared(t *testing.T) {
	const jobs = 200
	counter := NewCounter()

	runs, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			c, ok := CounterFrom(ctx)
			if !ok {
				return 0, errors.New("no counter")
			}
			jitter()
			return c.Next("exp"), nil
		},
		make([]int, jobs),
		func(c *Config) {
			c.Workers(8)
			c.MaxTasks(7)
			c.Counter(counter)
		},
	)
	require.Nil(t, err)

	slices.Sort(runs)
	for i, run := range runs {
		require.Equal(t, run, i)
	}
	require.Equal(t, counter.Runs("exp"), jobs)
	require.Equal(t, counter.Runs("other"), 0)
}

func TestCounterAbsent(t *testing.T) {
	_, err := Run(
		t.Context(),
		func(ctx context.Context, p int) (int, error) {
			if _, ok := CounterFrom(ctx); ok {
				return 0, errors.New("unexpected counter")
			}
			return p, nil
		},
		[]int{1},
	)
	require.Nil(t, err)
}

func TestOptions(t *testing.T) {
	c := &Config{}

	require.PanicWithError(t, "workers can't be < 1", func() {
		c.Workers(0)
	})

	require.PanicWithError(t, "max tasks can't be < 1", func() {
		c.MaxTasks(0)
	})

	require.PanicWithError(t, "initializer can't be nil", func() {
		c.Initializer(nil)
	})

	require.PanicWithError(t, "counter can't be nil", func() {
		c.Counter(nil)
	})

	require.PanicWithError(t, "prometheus can't be nil", func() {
		c.Prometheus(nil)
	})

	require.PanicWithError(t, "logger can't be nil", func() {
		c.Logger(nil)
	})
}

func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.Nil(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		metric := family.GetMetric()[0]
		if c := metric.GetCounter(); c != nil {
			return c.GetValue()
		}
		return metric.GetGauge().GetValue()
	}

	t.Fatalf("metric %s not gathered", name)
	return 0
}
