package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/raphi011/statusline/internal/cmd"
)

const (
	// DefaultTimeout applies when neither the executor nor the call sets one.
	DefaultTimeout = time.Second
	// MaxTimeout caps every invocation regardless of configuration.
	MaxTimeout = 30 * time.Second
	// MaxOutput caps captured stdout and stderr. Exceeding it is an error.
	MaxOutput = 1 << 20

	timeoutRetries    = 2
	defaultRetryDelay = 100 * time.Millisecond
)

// inheritedEnv is the only part of the process environment passed to git.
var inheritedEnv = []string{"PATH", "HOME", "USER"}

// blockedEnv would let a caller redirect git to another repository or index.
var blockedEnv = map[string]bool{
	"GIT_DIR":              true,
	"GIT_WORK_TREE":        true,
	"GIT_INDEX_FILE":       true,
	"GIT_OBJECT_DIRECTORY": true,
}

// ExecResult is the outcome of a finished git invocation.
type ExecResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Success  bool   `json:"success"`
}

// RunOptions tune a single invocation.
type RunOptions struct {
	Dir     string            // overrides the executor's working directory
	Timeout time.Duration     // 0 uses the executor default
	Env     map[string]string // merged over the executor's overrides

	// IgnoreErrors turns execution failures into {Success: false} with a
	// nil error. Security rejections are never ignored.
	IgnoreErrors bool

	// Stdout streams output to the writer instead of capturing it. Timed-out
	// runs are not retried in this mode since output was already delivered.
	Stdout io.Writer
}

// Executor validates and runs read-only git subcommands.
type Executor struct {
	runner     cmd.Runner
	binary     string
	dir        string
	env        map[string]string
	timeout    time.Duration
	retryDelay time.Duration
	getenv     func(string) string
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunner replaces the process runner, e.g. with a fake in tests.
func WithRunner(r cmd.Runner) ExecutorOption {
	return func(e *Executor) { e.runner = r }
}

// WithBinary sets the git binary name or path.
func WithBinary(bin string) ExecutorOption {
	return func(e *Executor) { e.binary = bin }
}

// WithEnv adds environment overrides applied to every invocation.
func WithEnv(env map[string]string) ExecutorOption {
	return func(e *Executor) {
		for k, v := range env {
			e.env[k] = v
		}
	}
}

// WithTimeout sets the default per-invocation timeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithRetryDelay sets the pause between timed-out attempts.
func WithRetryDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.retryDelay = d }
}

// WithGetenv replaces os.Getenv for the inherited variables.
func WithGetenv(fn func(string) string) ExecutorOption {
	return func(e *Executor) { e.getenv = fn }
}

// NewExecutor creates an executor running git in dir.
func NewExecutor(dir string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		runner:     cmd.ExecRunner{},
		binary:     "git",
		dir:        dir,
		env:        make(map[string]string),
		timeout:    DefaultTimeout,
		retryDelay: defaultRetryDelay,
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the default working directory.
func (e *Executor) Dir() string {
	return e.dir
}

// Run validates and executes git <sub> <args...>.
//
// Validation failures return a KindSecurity *Error before any process is
// spawned. Execution failures return a classified *Error unless
// opts.IgnoreErrors is set.
func (e *Executor) Run(ctx context.Context, sub string, args []string, opts RunOptions) (ExecResult, error) {
	dir := opts.Dir
	if dir == "" {
		dir = e.dir
	}
	if err := Validate(CommandSpec{Subcommand: sub, Args: args, Dir: dir}); err != nil {
		return ExecResult{}, err
	}

	spec := cmd.Spec{
		Name:      e.binary,
		Args:      append([]string{sub}, args...),
		Dir:       dir,
		Env:       e.environ(opts.Env),
		Timeout:   clampTimeout(opts.Timeout, e.timeout),
		MaxOutput: MaxOutput,
		Stdout:    opts.Stdout,
	}

	res, err := e.runWithRetry(ctx, spec, opts.Stdout == nil)
	if gerr := classify(sub, args, res, err); gerr != nil {
		if opts.IgnoreErrors {
			return ExecResult{
				Stdout:   string(res.Stdout),
				Stderr:   string(res.Stderr),
				ExitCode: res.ExitCode,
			}, nil
		}
		return ExecResult{}, gerr
	}

	return ExecResult{
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
		ExitCode: res.ExitCode,
		Success:  true,
	}, nil
}

// Output runs a command and returns its trimmed stdout.
func (e *Executor) Output(ctx context.Context, sub string, args ...string) (string, error) {
	res, err := e.Run(ctx, sub, args, RunOptions{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RunSpec runs a CommandSpec, e.g. one produced by ParseCommand.
func (e *Executor) RunSpec(ctx context.Context, spec CommandSpec, opts RunOptions) (ExecResult, error) {
	if opts.Dir == "" {
		opts.Dir = spec.Dir
	}
	if opts.Timeout == 0 {
		opts.Timeout = spec.Timeout
	}
	return e.Run(ctx, spec.Subcommand, spec.Args, opts)
}

// CountTrackedFiles counts the files in the index by streaming
// "ls-files -z" through a counter, so repositories of any size stay
// within the output bound.
func (e *Executor) CountTrackedFiles(ctx context.Context, opts RunOptions) (int, error) {
	counter := &nulCounter{}
	opts.Stdout = counter
	res, err := e.Run(ctx, "ls-files", []string{"-z"}, opts)
	if err != nil {
		return 0, err
	}
	if !res.Success {
		return 0, &Error{Kind: KindGeneric, Subcommand: "ls-files", ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return counter.n, nil
}

func (e *Executor) runWithRetry(ctx context.Context, spec cmd.Spec, retry bool) (cmd.Result, error) {
	for attempt := 0; ; attempt++ {
		res, err := e.runner.Run(ctx, spec)
		if err != nil || !res.TimedOut || !retry || attempt >= timeoutRetries {
			return res, err
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(e.retryDelay):
		}
	}
}

// environ builds the child environment: inherited PATH, HOME and USER,
// then executor and call overrides. Redirection variables are dropped.
func (e *Executor) environ(overrides map[string]string) []string {
	vars := make(map[string]string)
	for _, k := range inheritedEnv {
		if v := e.getenv(k); v != "" {
			vars[k] = v
		}
	}
	for _, src := range []map[string]string{e.env, overrides} {
		for k, v := range src {
			if blockedEnv[k] {
				continue
			}
			vars[k] = v
		}
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

func clampTimeout(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		d = fallback
	}
	if d <= 0 {
		d = DefaultTimeout
	}
	return min(d, MaxTimeout)
}

// classify maps a raw process outcome to an *Error, or nil on success.
func classify(sub string, args []string, res cmd.Result, err error) error {
	base := Error{Subcommand: sub, Args: args, ExitCode: res.ExitCode, Stderr: string(res.Stderr), Err: err}

	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		base.Kind = KindTimeout
		return &base
	case err != nil:
		base.Kind = KindExecution
		return &base
	case res.TimedOut:
		base.Kind = KindTimeout
		return &base
	case res.ExitCode == 0:
		return nil
	}

	base.Kind = classifyStderr(string(res.Stderr))
	return &base
}

func classifyStderr(stderr string) Kind {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "permission denied"):
		return KindPermissionDenied
	case strings.Contains(s, "corrupt"), strings.Contains(s, "bad object"), strings.Contains(s, "broken"):
		return KindCorrupt
	case strings.Contains(s, "could not resolve host"), strings.Contains(s, "connection timed out"),
		strings.Contains(s, "connection refused"):
		return KindNetwork
	case strings.Contains(s, "not a git repository"):
		return KindRepoNotFound
	}
	return KindGeneric
}

// nulCounter counts NUL-terminated records.
type nulCounter struct {
	n int
}

func (c *nulCounter) Write(p []byte) (int, error) {
	c.n += bytes.Count(p, []byte{0})
	return len(p), nil
}

// ErrGitNotFound indicates the git binary is not installed or not in PATH.
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that binary resolves to an executable.
func CheckGit(binary string) error {
	if binary == "" {
		binary = "git"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%w: %s", ErrGitNotFound, binary)
	}
	return nil
}
