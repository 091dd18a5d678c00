package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/backmassage/texmtlx/internal/planner"
)

// waitDelay bounds how long Convert waits for output pipes after the tool
// is killed on cancellation.
const waitDelay = 2 * time.Second

// Executor runs a Template for each job. It is safe for concurrent use.
type Executor struct {
	tmpl *Template
	// Tee, when non-nil, receives tool output in real time (verbose mode).
	Tee io.Writer
}

// NewExecutor returns an Executor for tmpl.
func NewExecutor(tmpl *Template) *Executor {
	return &Executor{tmpl: tmpl}
}

// Convert runs the converter for job and returns nil on exit status 0.
// Failures are returned as *Error.
func (e *Executor) Convert(ctx context.Context, job planner.ConversionJob) error {
	if _, err := os.Stat(job.SourcePath); err != nil {
		kind := KindOther
		switch {
		case errors.Is(err, fs.ErrNotExist):
			kind = KindMissingInput
		case errors.Is(err, fs.ErrPermission):
			kind = KindPermission
		}
		return &Error{Path: job.SourcePath, ExitCode: -1, Kind: kind, Err: err}
	}

	args := e.tmpl.Build(job.SourcePath, job.TargetPath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	var w io.Writer = &out
	if e.Tee != nil {
		w = io.MultiWriter(&out, e.Tee)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	if err == nil {
		return nil
	}
	return classify(ctx, job.SourcePath, out.String(), err)
}

// classify turns a failed run into an *Error.
func classify(ctx context.Context, path, output string, err error) *Error {
	ce := &Error{Path: path, ExitCode: -1, Stderr: output, Err: err}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		ce.Kind = KindTimeout
		ce.Err = ctx.Err()
	case ctx.Err() != nil:
		ce.Kind = KindOther
		ce.Err = ctx.Err()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		ce.Kind = KindToolNotFound
	case errors.Is(err, fs.ErrPermission):
		ce.Kind = KindPermission
	case errors.As(err, &exitErr):
		ce.ExitCode = exitErr.ExitCode()
		ce.Kind = classifyOutput(output)
	default:
		ce.Kind = KindOther
	}
	return ce
}

// Noop is the dry-run converter: every job succeeds without running anything.
type Noop struct{}

// Convert returns ctx.Err() so cancellation still applies.
func (Noop) Convert(ctx context.Context, _ planner.ConversionJob) error {
	return ctx.Err()
}
