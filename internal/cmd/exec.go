package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/raphi011/statusline/internal/log"
)

// ErrOutputLimit is returned when a command writes more than Spec.MaxOutput
// bytes to stdout or stderr.
var ErrOutputLimit = errors.New("output limit exceeded")

// Spec describes a single process invocation.
type Spec struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string      // nil inherits the current environment
	Timeout time.Duration // 0 means no timeout beyond ctx

	// MaxOutput caps captured stdout and stderr separately. 0 means unlimited.
	MaxOutput int

	// Stdout, if set, receives stdout instead of the captured buffer.
	// MaxOutput does not apply to it.
	Stdout io.Writer
}

// Result is the raw outcome of a process invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 if the process was killed or never reported one
	TimedOut bool
	Duration time.Duration
}

// Runner executes a process described by a Spec.
//
// A non-zero exit code or a timeout is not an error: it is reported in the
// Result. Errors are reserved for failures to spawn, output overflow and
// cancellation of ctx.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run executes spec and waits for it to finish.
func (ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	c := exec.CommandContext(runCtx, spec.Name, spec.Args...)
	c.Dir = spec.Dir
	if spec.Env != nil {
		c.Env = spec.Env
	}

	stdout := &limitedBuffer{max: spec.MaxOutput, onOverflow: cancel}
	stderr := &limitedBuffer{max: spec.MaxOutput, onOverflow: cancel}
	if spec.Stdout != nil {
		c.Stdout = spec.Stdout
	} else {
		c.Stdout = stdout
	}
	c.Stderr = stderr

	done := log.FromContext(ctx).Command(spec.Dir, spec.Name, spec.Args...)
	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
		Duration: time.Since(start),
	}
	done(res.Duration)

	if c.ProcessState != nil {
		res.ExitCode = c.ProcessState.ExitCode()
	}

	switch {
	case stdout.overflow || stderr.overflow:
		return res, fmt.Errorf("%s: %w (%d bytes)", spec.Name, ErrOutputLimit, spec.MaxOutput)
	case ctx.Err() != nil:
		return res, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		return res, nil
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return res, err
	}
	return res, nil
}

// limitedBuffer captures up to max bytes. Once exceeded it records the
// overflow, discards the rest and calls onOverflow so the process is
// killed instead of blocking on a full pipe.
type limitedBuffer struct {
	buf        bytes.Buffer
	max        int
	overflow   bool
	onOverflow func()
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return len(p), nil
	}
	if b.max > 0 && b.buf.Len()+len(p) > b.max {
		b.overflow = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
