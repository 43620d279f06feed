// Package parallel runs a function once per parameter on a fixed pool of workers.
//
// Results always correspond to parameters by position, never by completion order. The first job
// to fail fails the whole batch: jobs that have not started yet are skipped and no partial
// results are returned. There are no retries.
package parallel

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Func is run once per job with the context derived by the worker's initializers.
type Func[Args, Result any] = func(ctx context.Context, args Args) (Result, error)

// SharedFunc is run once per varying parameter with the same datum.
type SharedFunc[Datum, Param, Result any] = func(ctx context.Context, datum Datum, param Param) (Result, error)

// JobError reports the failure of the job at Index.
type JobError struct {
	Index int
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %d: %v", e.Index, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// PanicError is the error of a job that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

type job[Args any] struct {
	index int
	args  Args
}

// Run calls fn once per element of params and returns the results in the order of params. It
// blocks until every job is done or one has failed.
func Run[Args, Result any](
	ctx context.Context,
	fn Func[Args, Result],
	params []Args,
	configFuncs ...ConfigFunc,
) ([]Result, error) {
	cfg := newConfig(configFuncs...)
	results := make([]Result, len(params))
	if len(params) == 0 {
		return results, nil
	}

	jobs := make(chan job[Args], len(params))
	for i, args := range params {
		jobs <- job[Args]{index: i, args: args}
	}
	close(jobs)

	group, groupCtx := errgroup.WithContext(ctx)

	var worker func() error
	worker = func() error {
		workerCtx := cfg.initialize(groupCtx)
		for range cfg.maxTasks {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			var (
				j  job[Args]
				ok bool
			)
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case j, ok = <-jobs:
			}
			if !ok {
				return nil
			}

			result, err := execute(workerCtx, cfg, fn, j)
			if err != nil {
				return err
			}
			results[j.index] = result
		}

		if len(jobs) == 0 {
			return nil
		}

		// Replace this worker with a fresh one to bound what a single worker accumulates.
		cfg.metrics.workersRecycled.Inc()
		cfg.log.Debug("recycling worker", zap.Int("tasks", cfg.maxTasks))
		group.Go(worker)

		return nil
	}

	workers := min(cfg.workers, len(params))
	cfg.log.Debug("starting workers",
		zap.Int("workers", workers),
		zap.Int("jobs", len(params)),
	)
	for range workers {
		group.Go(worker)
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// RunShared calls fn(ctx, datum, p) for every p in params and maps each parameter to its result.
// The map is built by pairing params with the ordered results, so a parameter that appears twice
// keeps the result of its last occurrence.
func RunShared[Datum any, Param comparable, Result any](
	ctx context.Context,
	fn SharedFunc[Datum, Param, Result],
	datum Datum,
	params []Param,
	configFuncs ...ConfigFunc,
) (map[Param]Result, error) {
	results, err := Run(
		ctx,
		func(ctx context.Context, param Param) (Result, error) {
			return fn(ctx, datum, param)
		},
		params,
		configFuncs...,
	)
	if err != nil {
		return nil, err
	}

	m := make(map[Param]Result, len(params))
	for i, param := range params {
		m[param] = results[i]
	}

	return m, nil
}

func execute[Args, Result any](
	ctx context.Context,
	cfg *Config,
	fn Func[Args, Result],
	j job[Args],
) (result Result, err error) {
	cfg.metrics.jobsStarted.Inc()
	cfg.metrics.busyWorkers.Inc()
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
		cfg.metrics.busyWorkers.Dec()
		cfg.metrics.jobDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			cfg.metrics.jobsFailed.Inc()
			err = &JobError{Index: j.index, Err: err}
		}
	}()

	return fn(ctx, j.args)
}
