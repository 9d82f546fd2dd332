package doctor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raphi011/statusline/internal/cmd"
	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/gitinfo"
)

// scriptedGit answers by joined args; anything else fails like git outside
// a repository.
type scriptedGit map[string]string

func (g scriptedGit) Run(_ context.Context, spec cmd.Spec) (cmd.Result, error) {
	out, ok := g[strings.Join(spec.Args, " ")]
	if !ok {
		return cmd.Result{ExitCode: 128, Stderr: []byte("fatal: not a git repository")}, nil
	}
	if spec.Stdout != nil {
		_, _ = spec.Stdout.Write([]byte(out))
		return cmd.Result{}, nil
	}
	return cmd.Result{Stdout: []byte(out)}, nil
}

func repoGit(gitDir string) scriptedGit {
	return scriptedGit{
		"rev-parse --git-dir":          ".git\n",
		"rev-parse --abbrev-ref HEAD":  "main\n",
		"rev-parse --absolute-git-dir": gitDir + "\n",
		"rev-parse --git-common-dir":   gitDir + "\n",
		"rev-list --count HEAD":        "3\n",
		"ls-files -z":                  "a.go\x00",
		"status --porcelain":           "",
		"stash list":                   "",
	}
}

// testBinary is an executable that resolves, standing in for git.
func testBinary(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	return exe
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func find(r Report, cat Category, name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Category == cat && c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func newParams(t *testing.T, runner cmd.Runner) Params {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	git := cfg.Git
	git.WorkingDir = dir
	return Params{
		Config:  &cfg,
		Dir:     dir,
		Binary:  testBinary(t),
		Service: gitinfo.New(git, gitinfo.WithRunner(runner)),
		Now:     steppingClock(time.Millisecond),
	}
}

func TestRun_HealthyRepository(t *testing.T) {
	t.Parallel()

	p := newParams(t, repoGit(t.TempDir()))
	r := Run(context.Background(), p)

	if r.Count(StatusWarn) != 0 || r.Failed() {
		var buf bytes.Buffer
		Print(&buf, r)
		t.Fatalf("expected a clean report:\n%s", buf.String())
	}
	for _, want := range []struct {
		cat  Category
		name string
	}{
		{CategoryEnv, "git"},
		{CategoryConfig, "global"},
		{CategoryConfig, "local"},
		{CategoryRepo, "repository"},
		{CategoryRepo, "size"},
		{CategoryRepo, "operation"},
		{CategoryPerf, "status"},
	} {
		if _, ok := find(r, want.cat, want.name); !ok {
			t.Errorf("missing check %s/%s", want.cat, want.name)
		}
	}
}

func TestRun_NotARepository(t *testing.T) {
	t.Parallel()

	r := Run(context.Background(), newParams(t, scriptedGit{}))

	c, ok := find(r, CategoryRepo, "repository")
	if !ok || c.Status != StatusWarn {
		t.Fatalf("repository check = %+v, want warning", c)
	}
	if _, ok := find(r, CategoryPerf, "status"); ok {
		t.Error("timing checks should be skipped outside a repository")
	}
}

func TestRun_GitMissing(t *testing.T) {
	t.Parallel()

	p := newParams(t, repoGit(t.TempDir()))
	p.Binary = "statusline-no-such-git"
	r := Run(context.Background(), p)

	c, _ := find(r, CategoryEnv, "git")
	if c.Status != StatusFail {
		t.Errorf("git check = %+v, want failure", c)
	}
	if _, ok := find(r, CategoryConfig, "local"); !ok {
		t.Error("config checks should still run without git")
	}
	if _, ok := find(r, CategoryRepo, "repository"); ok {
		t.Error("repository checks should be skipped without git")
	}
}

func TestRun_ConfigProblems(t *testing.T) {
	t.Parallel()

	p := newParams(t, scriptedGit{})
	p.LoadErr = errors.New("invalid display.theme")
	p.Config.Git.Cache.Enabled = false
	if err := os.WriteFile(filepath.Join(p.Dir, config.LocalConfigFileName), []byte("[git]\nworking_dir = \"/etc\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := Run(context.Background(), p)

	tests := []struct {
		name string
		want Status
	}{
		{"global", StatusFail},
		{"local", StatusFail},
		{"cache", StatusWarn},
	}
	for _, tt := range tests {
		c, ok := find(r, CategoryConfig, tt.name)
		if !ok || c.Status != tt.want {
			t.Errorf("config/%s = %+v, want status %d", tt.name, c, tt.want)
		}
	}
}

func TestRun_SlowQueries(t *testing.T) {
	t.Parallel()

	p := newParams(t, repoGit(t.TempDir()))
	p.Now = steppingClock(600 * time.Millisecond) // default timeout is 1s

	r := Run(context.Background(), p)

	c, ok := find(r, CategoryPerf, "status")
	if !ok || c.Status != StatusWarn {
		t.Fatalf("perf/status = %+v, want warning", c)
	}
	if !strings.Contains(c.Detail, "600ms") {
		t.Errorf("detail = %q, want duration", c.Detail)
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var r Report
	r.add(CategoryEnv, "git", StatusOK, "git found", "")
	r.add(CategoryRepo, "size", StatusWarn, "large repository", "raise the threshold")

	var buf bytes.Buffer
	Print(&buf, r)

	want := "env:\n  ✓ git: git found\nrepo:\n  ⚠ size: large repository\n      raise the threshold\n\n1 warnings, 0 failures\n"
	if got := buf.String(); got != want {
		t.Errorf("Print() =\n%q\nwant\n%q", got, want)
	}

	buf.Reset()
	Print(&buf, Report{Checks: r.Checks[:1]})
	if !strings.HasSuffix(buf.String(), "✓ No issues found\n") {
		t.Errorf("Print() = %q, want no-issues summary", buf.String())
	}
}
