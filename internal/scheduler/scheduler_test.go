package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/texmtlx/internal/planner"
	"github.com/backmassage/texmtlx/internal/probe"
)

// --- Fake converters ---

// funcConverter adapts a function to Converter.
type funcConverter func(ctx context.Context, job planner.ConversionJob) error

func (f funcConverter) Convert(ctx context.Context, job planner.ConversionJob) error {
	return f(ctx, job)
}

// copyConverter writes the target file, like a real converter would.
type copyConverter struct{ calls atomic.Int32 }

func (c *copyConverter) Convert(_ context.Context, job planner.ConversionJob) error {
	c.calls.Add(1)
	return os.WriteFile(job.TargetPath, []byte("tx"), 0o644)
}

func opts(cpus int, budget float64) Options {
	return Options{CPUs: cpus, WorkerBudget: budget}
}

func makeJobs(n int) []planner.ConversionJob {
	jobs := make([]planner.ConversionJob, n)
	for i := range jobs {
		jobs[i] = planner.ConversionJob{
			SourcePath:  fmt.Sprintf("tex/t_%d.png", i),
			TargetPath:  fmt.Sprintf("tex/t_%d.tx", i),
			SourceMTime: time.Unix(1000, 0),
		}
	}
	return jobs
}

// planDir stats each source and target the way the planner does.
func planDir(t *testing.T, sources []string) []planner.ConversionJob {
	t.Helper()
	var jobs []planner.ConversionJob
	for _, src := range sources {
		si, err := probe.Stat(src)
		require.NoError(t, err)
		target := planner.TargetPath(src, ".tx")
		ti, err := probe.Stat(target)
		require.NoError(t, err)
		jobs = append(jobs, planner.ConversionJob{
			SourcePath:  src,
			TargetPath:  target,
			SourceMTime: si.ModTime,
			TargetMTime: ti.ModTimePtr(),
		})
	}
	return jobs
}

func TestPoolSize(t *testing.T) {
	tests := []struct {
		name    string
		cpus    int
		budget  float64
		want    int
		wantErr error
	}{
		{"half of 8", 8, 0.5, 4, nil},
		{"half of 4", 4, 0.5, 2, nil},
		{"floor", 5, 0.5, 2, nil},
		{"at least one", 1, 0.5, 1, nil},
		{"tiny budget", 16, 0.01, 1, nil},
		{"all", 12, 1, 12, nil},
		{"zero budget", 8, 0, 0, ErrInvalidBudget},
		{"negative budget", 8, -1, 0, ErrInvalidBudget},
		{"over budget", 8, 1.5, 0, ErrInvalidBudget},
		{"nan budget", 8, math.NaN(), 0, ErrInvalidBudget},
		{"inf budget", 8, math.Inf(1), 0, ErrInvalidBudget},
		{"negative cpus", -2, 0.5, 0, ErrNoWorkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PoolSize(tt.cpus, tt.budget)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoolSize_DefaultCPUs(t *testing.T) {
	got, err := PoolSize(0, 1)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), got)
}

func TestRunBatch_SystemicError(t *testing.T) {
	var calls atomic.Int32
	conv := funcConverter(func(context.Context, planner.ConversionJob) error {
		calls.Add(1)
		return nil
	})

	res, err := RunBatch(context.Background(), makeJobs(3), conv, opts(4, 0))
	assert.ErrorIs(t, err, ErrInvalidBudget)
	assert.Nil(t, res)

	res, err = RunBatch(context.Background(), makeJobs(3), conv, opts(-1, 0.5))
	assert.ErrorIs(t, err, ErrNoWorkers)
	assert.Nil(t, res)
	assert.Zero(t, calls.Load(), "no job may run after a systemic error")
}

func TestRunBatch_Empty(t *testing.T) {
	res, err := RunBatch(context.Background(), nil, &copyConverter{}, opts(4, 0.5))
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestRunBatch_OrderIndependentOfCompletion(t *testing.T) {
	jobs := makeJobs(40)
	conv := funcConverter(func(_ context.Context, job planner.ConversionJob) error {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
		return nil
	})

	var mu sync.Mutex
	var seen []string
	o := opts(8, 0.5)
	o.OnResult = func(r Result) {
		mu.Lock()
		seen = append(seen, r.Job.SourcePath)
		mu.Unlock()
	}

	res, err := RunBatch(context.Background(), jobs, conv, o)
	require.NoError(t, err)
	require.Len(t, res, len(jobs))
	for i, r := range res {
		assert.Equal(t, jobs[i].SourcePath, r.Job.SourcePath)
		assert.Equal(t, StatusSucceeded, r.Status)
	}
	assert.Len(t, seen, len(jobs), "OnResult called once per job")
}

func TestRunBatch_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	conv := funcConverter(func(context.Context, planner.ConversionJob) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	res, err := RunBatch(context.Background(), makeJobs(20), conv, opts(4, 0.5))
	require.NoError(t, err)
	assert.Len(t, res, 20)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(2), peak.Load(), "pool should be saturated")
}

func TestRunBatch_FailureIsolation(t *testing.T) {
	jobs := makeJobs(5)
	conv := funcConverter(func(_ context.Context, job planner.ConversionJob) error {
		switch job.SourcePath {
		case jobs[1].SourcePath:
			return errors.New("bad header")
		case jobs[3].SourcePath:
			panic("converter exploded")
		}
		return nil
	})

	res, err := RunBatch(context.Background(), jobs, conv, opts(2, 1))
	require.NoError(t, err)
	require.Len(t, res, 5)

	assert.Equal(t, StatusFailed, res[1].Status)
	assert.Equal(t, "bad header", res[1].Err)
	assert.Equal(t, StatusFailed, res[3].Status)
	assert.Contains(t, res[3].Err, "converter exploded")
	for _, i := range []int{0, 2, 4} {
		assert.Equal(t, StatusSucceeded, res[i].Status)
		assert.Empty(t, res[i].Err)
	}
	assert.Equal(t, Counts{Succeeded: 3, Failed: 2}, Tally(res))
}

func TestRunBatch_Staleness(t *testing.T) {
	dir := t.TempDir()
	past := time.Now().Add(-time.Hour)
	var sources []string
	for _, n := range []string{"a_col.png", "a_rough.png", "a_normal.png"} {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("src"), 0o644))
		require.NoError(t, os.Chtimes(p, past, past))
		sources = append(sources, p)
	}
	conv := &copyConverter{}

	// First run converts everything.
	res, err := RunBatch(context.Background(), planDir(t, sources), conv, opts(2, 1))
	require.NoError(t, err)
	assert.Equal(t, Counts{Succeeded: 3}, Tally(res))

	// Re-running with nothing changed converts nothing.
	res, err = RunBatch(context.Background(), planDir(t, sources), conv, opts(2, 1))
	require.NoError(t, err)
	assert.Equal(t, Counts{Skipped: 3}, Tally(res))
	assert.Equal(t, int32(3), conv.calls.Load())

	// Touching one source converts exactly that one.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(sources[1], future, future))
	res, err = RunBatch(context.Background(), planDir(t, sources), conv, opts(2, 1))
	require.NoError(t, err)
	assert.Equal(t, Counts{Succeeded: 1, Skipped: 2}, Tally(res))
	assert.Equal(t, StatusSucceeded, res[1].Status)
	assert.Equal(t, int32(4), conv.calls.Load())

	// Force converts everything again.
	o := opts(2, 1)
	o.ForceNewer = true
	res, err = RunBatch(context.Background(), planDir(t, sources), conv, o)
	require.NoError(t, err)
	assert.Equal(t, Counts{Succeeded: 3}, Tally(res))
}

func TestShouldSkip(t *testing.T) {
	t0 := time.Unix(1000, 0)
	newer := t0.Add(time.Second)

	upToDate := planner.ConversionJob{SourceMTime: t0, TargetMTime: &newer}
	assert.True(t, ShouldSkip(upToDate, Options{}))
	assert.False(t, ShouldSkip(upToDate, Options{ForceNewer: true}))

	forced := upToDate
	forced.Force = true
	assert.False(t, ShouldSkip(forced, Options{}))

	assert.False(t, ShouldSkip(planner.ConversionJob{SourceMTime: t0}, Options{}))
	assert.False(t, ShouldSkip(planner.ConversionJob{TargetMTime: &newer}, Options{}), "unknown source mtime")
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	conv := funcConverter(func(context.Context, planner.ConversionJob) error {
		calls.Add(1)
		return nil
	})

	res, err := RunBatch(ctx, makeJobs(4), conv, opts(2, 1))
	require.NoError(t, err)
	require.Len(t, res, 4)
	for _, r := range res {
		assert.Equal(t, StatusFailed, r.Status)
		assert.Equal(t, context.Canceled.Error(), r.Err)
	}
	assert.Zero(t, calls.Load())
}

func TestRunBatch_JobTimeout(t *testing.T) {
	conv := funcConverter(func(ctx context.Context, _ planner.ConversionJob) error {
		<-ctx.Done()
		return ctx.Err()
	})

	o := opts(2, 1)
	o.JobTimeout = 20 * time.Millisecond
	res, err := RunBatch(context.Background(), makeJobs(2), conv, o)
	require.NoError(t, err)
	for _, r := range res {
		assert.Equal(t, StatusFailed, r.Status)
		assert.Equal(t, context.DeadlineExceeded.Error(), r.Err)
		assert.GreaterOrEqual(t, r.Duration, 20*time.Millisecond)
	}
}
