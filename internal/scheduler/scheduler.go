// Package scheduler runs ConversionJobs through a Converter on a bounded
// worker pool.
//
// Every job is submitted up front; a weighted semaphore sized from the CPU
// count and the worker budget bounds how many conversions run at once.
// Completions are harvested as they arrive and stored at their job's index,
// so the returned results are always in input order. Jobs whose target is
// already up to date are skipped without taking a slot. A failing or
// panicking job never affects the others, and nothing is retried.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/backmassage/texmtlx/internal/planner"
)

// Converter converts a single job. Implementations must be safe for
// concurrent use.
type Converter interface {
	Convert(ctx context.Context, job planner.ConversionJob) error
}

// Status is the outcome of one job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the outcome of one ConversionJob.
type Result struct {
	Job      planner.ConversionJob
	Status   Status
	Err      string // Empty unless Failed.
	Duration time.Duration
}

// Options configures one RunBatch call.
type Options struct {
	// WorkerBudget is the fraction of CPUs to use, in (0, 1].
	WorkerBudget float64
	// ForceNewer converts every job regardless of target mtimes.
	ForceNewer bool
	// CPUs overrides runtime.NumCPU() when > 0.
	CPUs int
	// JobTimeout bounds each conversion; 0 means no limit.
	JobTimeout time.Duration
	// OnResult, when set, is called from the harvesting goroutine as each
	// job finishes, in completion order.
	OnResult func(Result)
}

// Systemic failures: RunBatch returns these before any job starts.
var (
	ErrInvalidBudget = errors.New("worker budget must be in (0, 1]")
	ErrNoWorkers     = errors.New("no CPUs available for conversion")
)

// PoolSize returns max(1, floor(cpus*budget)). cpus == 0 means
// runtime.NumCPU().
func PoolSize(cpus int, budget float64) (int, error) {
	if math.IsNaN(budget) || math.IsInf(budget, 0) || budget <= 0 || budget > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidBudget, budget)
	}
	if cpus == 0 {
		cpus = runtime.NumCPU()
	}
	if cpus < 1 {
		return 0, fmt.Errorf("%w: cpus=%d", ErrNoWorkers, cpus)
	}
	return max(1, int(math.Floor(float64(cpus)*budget))), nil
}

// ShouldSkip reports whether job can be skipped as up to date under opts.
func ShouldSkip(job planner.ConversionJob, opts Options) bool {
	if opts.ForceNewer || job.Force {
		return false
	}
	return job.UpToDate()
}

type completion struct {
	index  int
	result Result
}

// RunBatch converts jobs with at most PoolSize(opts.CPUs, opts.WorkerBudget)
// conversions in flight. It returns exactly len(jobs) results in input order,
// or a nil slice and ErrInvalidBudget / ErrNoWorkers.
//
// Cancelling ctx fails every job that has not started yet; running
// conversions see the cancelled context.
func RunBatch(ctx context.Context, jobs []planner.ConversionJob, conv Converter, opts Options) ([]Result, error) {
	size, err := PoolSize(opts.CPUs, opts.WorkerBudget)
	if err != nil {
		return nil, err
	}

	sem := semaphore.NewWeighted(int64(size))
	done := make(chan completion, len(jobs))

	for i, job := range jobs {
		go func() {
			done <- completion{index: i, result: runJob(ctx, sem, conv, job, opts)}
		}()
	}

	results := make([]Result, len(jobs))
	for range jobs {
		c := <-done
		results[c.index] = c.result
		if opts.OnResult != nil {
			opts.OnResult(c.result)
		}
	}
	return results, nil
}

// runJob executes one job under the semaphore.
func runJob(ctx context.Context, sem *semaphore.Weighted, conv Converter, job planner.ConversionJob, opts Options) Result {
	if ShouldSkip(job, opts) {
		return Result{Job: job, Status: StatusSkipped}
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return failed(job, err, 0)
	}
	defer sem.Release(1)

	// Acquire can succeed on an already-cancelled context.
	if err := ctx.Err(); err != nil {
		return failed(job, err, 0)
	}

	jobCtx := ctx
	if opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, opts.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := safeConvert(jobCtx, conv, job)
	elapsed := time.Since(start)
	if err != nil {
		return failed(job, err, elapsed)
	}
	return Result{Job: job, Status: StatusSucceeded, Duration: elapsed}
}

// safeConvert turns a converter panic into an error.
func safeConvert(ctx context.Context, conv Converter, job planner.ConversionJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converter panic: %v", r)
		}
	}()
	return conv.Convert(ctx, job)
}

func failed(job planner.ConversionJob, err error, d time.Duration) Result {
	return Result{Job: job, Status: StatusFailed, Err: err.Error(), Duration: d}
}

// Counts tallies results by status.
type Counts struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Tally counts results by status.
func Tally(results []Result) Counts {
	var c Counts
	for _, r := range results {
		switch r.Status {
		case StatusSucceeded:
			c.Succeeded++
		case StatusSkipped:
			c.Skipped++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}
