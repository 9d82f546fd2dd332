package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphi011/statusline/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestExecRunner_CapturesStdout(t *testing.T) {
	t.Parallel()
	res, err := ExecRunner{}.Run(logCtx(), Spec{Name: "echo", Args: []string{"hello"}})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if got := string(res.Stdout); got != "hello\n" {
		t.Errorf("Stdout = %q, want %q", got, "hello\n")
	}
	if res.ExitCode != 0 || res.TimedOut {
		t.Errorf("ExitCode = %d TimedOut = %v, want 0 false", res.ExitCode, res.TimedOut)
	}
}

func TestExecRunner_Dir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	res, err := ExecRunner{}.Run(logCtx(), Spec{Name: "pwd", Dir: dir})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if got := strings.TrimSpace(string(res.Stdout)); !strings.HasSuffix(got, filepath.Base(dir)) {
		t.Errorf("pwd = %q, want suffix %q", got, filepath.Base(dir))
	}
}

func TestExecRunner_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	_, err := ExecRunner{}.Run(ctx, Spec{Name: "sleep", Args: []string{"10"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestExecRunner_ExitCodeIsNotAnError(t *testing.T) {
	t.Parallel()
	res, err := ExecRunner{}.Run(logCtx(), Spec{Name: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if got := string(res.Stderr); got != "oops\n" {
		t.Errorf("Stderr = %q, want %q", got, "oops\n")
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	t.Parallel()
	res, err := ExecRunner{}.Run(logCtx(), Spec{Name: "sleep", Args: []string{"5"}, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if res.Duration > 4*time.Second {
		t.Errorf("Duration = %v, process was not killed", res.Duration)
	}
}

func TestExecRunner_OutputLimit(t *testing.T) {
	t.Parallel()
	_, err := ExecRunner{}.Run(logCtx(), Spec{
		Name:      "sh",
		Args:      []string{"-c", "head -c 4096 /dev/zero"},
		MaxOutput: 1024,
	})
	if !errors.Is(err, ErrOutputLimit) {
		t.Errorf("Run error = %v, want ErrOutputLimit", err)
	}
}

func TestExecRunner_StdoutSinkBypassesLimit(t *testing.T) {
	t.Parallel()
	var sink bytes.Buffer
	res, err := ExecRunner{}.Run(logCtx(), Spec{
		Name:      "sh",
		Args:      []string{"-c", "head -c 4096 /dev/zero"},
		MaxOutput: 1024,
		Stdout:    &sink,
	})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if sink.Len() != 4096 {
		t.Errorf("sink got %d bytes, want 4096", sink.Len())
	}
	if len(res.Stdout) != 0 {
		t.Errorf("captured stdout = %d bytes, want 0", len(res.Stdout))
	}
}

func TestExecRunner_Env(t *testing.T) {
	t.Parallel()
	res, err := ExecRunner{}.Run(logCtx(), Spec{
		Name: "sh",
		Args: []string{"-c", "printf %s \"$FOO\""},
		Env:  []string{"PATH=/usr/bin:/bin", "FOO=bar"},
	})
	if err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if got := string(res.Stdout); got != "bar" {
		t.Errorf("Stdout = %q, want %q", got, "bar")
	}
}

func TestExecRunner_NotFound(t *testing.T) {
	t.Parallel()
	_, err := ExecRunner{}.Run(logCtx(), Spec{Name: "definitely-not-a-real-binary-xyz"})
	if err == nil {
		t.Error("Run of missing binary = nil, want error")
	}
}

func TestExecRunner_VerboseLogsCommand(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))
	if _, err := (ExecRunner{}).Run(ctx, Spec{Name: "echo", Args: []string{"hi"}, Dir: "/tmp"}); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if got := buf.String(); !strings.Contains(got, "[/tmp] $ echo hi") {
		t.Errorf("log output = %q, want command echo", got)
	}
}
