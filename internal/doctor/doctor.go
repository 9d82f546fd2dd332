package doctor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/git"
	"github.com/raphi011/statusline/internal/gitinfo"
)

// Params are the inputs of a diagnostic run.
type Params struct {
	Config     *config.Config // effective config for Dir
	ConfigPath string         // global config file, may be empty
	LoadErr    error          // error from loading the global config
	Dir        string         // directory the segment is rendered for
	Binary     string         // git binary, empty for "git"
	Service    *gitinfo.Service
	Now        func() time.Time
}

// Run performs all checks. Repository checks are skipped when git is
// missing or Dir is not inside a repository.
func Run(ctx context.Context, p Params) Report {
	if p.Now == nil {
		p.Now = time.Now
	}
	var r Report

	// Category 1: environment
	if err := git.CheckGit(p.Binary); err != nil {
		r.add(CategoryEnv, "git", StatusFail, err.Error(), "install git or set PATH")
		checkConfig(&r, p)
		return r
	}
	r.add(CategoryEnv, "git", StatusOK, "git found", "")

	// Category 2: configuration
	checkConfig(&r, p)

	// Category 3: repository
	if !p.Service.IsGitRepo(ctx) {
		r.add(CategoryRepo, "repository", StatusWarn,
			fmt.Sprintf("%s is not inside a git repository", p.Dir),
			"the segment renders as "+gitinfo.NoGitBranch)
		return r
	}
	r.add(CategoryRepo, "repository", StatusOK, p.Dir, "")

	if p.Service.IsLargeRepository(ctx) {
		r.add(CategoryRepo, "size", StatusWarn, "large repository",
			"version and ahead/behind are skipped and untracked files are not counted; raise git.large_repo_file_threshold to change this")
	} else {
		r.add(CategoryRepo, "size", StatusOK, "small repository", "")
	}

	if op := p.Service.GetOperationStatus(ctx, true); op.InProgress() {
		r.add(CategoryRepo, "operation", StatusWarn, op.State.String()+" in progress", "")
	} else {
		r.add(CategoryRepo, "operation", StatusOK, "no operation in progress", "")
	}

	// Category 4: performance
	checkTiming(ctx, &r, p)

	return r
}

func checkConfig(r *Report, p Params) {
	switch {
	case p.LoadErr != nil:
		r.add(CategoryConfig, "global", StatusFail, p.LoadErr.Error(), "fix the file or recreate it with 'statusline config init -f'")
	case p.ConfigPath != "":
		r.add(CategoryConfig, "global", StatusOK, p.ConfigPath, "")
	default:
		r.add(CategoryConfig, "global", StatusOK, "defaults", "")
	}

	local, err := config.LoadLocal(p.Dir)
	switch {
	case err != nil:
		r.add(CategoryConfig, "local", StatusFail, err.Error(), "the global config is used instead")
	case local == nil:
		r.add(CategoryConfig, "local", StatusOK, "no "+config.LocalConfigFileName, "")
	default:
		r.add(CategoryConfig, "local", StatusOK, config.LocalConfigFileName+" loaded", "")
	}

	if p.Config != nil && !p.Config.Git.Cache.Enabled {
		r.add(CategoryConfig, "cache", StatusWarn, "caching disabled", "every query runs git; set git.cache.enabled = true")
	}
}

// checkTiming runs each category once, bypassing the cache, and warns when
// one takes more than half of the per-invocation timeout.
func checkTiming(ctx context.Context, r *Report, p Params) {
	timeout := p.Service.Config().Timeout()
	probes := []struct {
		name string
		run  func()
	}{
		{"branch", func() { p.Service.GetBranchInfo(ctx, true) }},
		{"status", func() { p.Service.GetWorkingStatus(ctx, true) }},
		{"version", func() { p.Service.GetVersionInfo(ctx, true) }},
		{"stash", func() { p.Service.GetStashInfo(ctx, true) }},
	}

	for _, probe := range probes {
		start := p.Now()
		probe.run()
		took := p.Now().Sub(start)

		if took > timeout/2 {
			r.add(CategoryPerf, probe.name, StatusWarn,
				fmt.Sprintf("took %s of %s timeout", took.Round(time.Millisecond), timeout),
				"raise git.timeout_ms or disable the query under [git.features]")
			continue
		}
		r.add(CategoryPerf, probe.name, StatusOK, took.Round(time.Millisecond).String(), "")
	}
}

// Print writes the report grouped by category with a summary line.
func Print(w io.Writer, r Report) {
	byCategory := make(map[Category][]Check)
	for _, c := range r.Checks {
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}

	for _, cat := range Categories {
		checks := byCategory[cat]
		if len(checks) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", cat)
		for _, c := range checks {
			fmt.Fprintf(w, "  %s %s: %s\n", c.Status.Symbol(), c.Name, c.Detail)
			if c.Hint != "" && c.Status != StatusOK {
				fmt.Fprintf(w, "      %s\n", c.Hint)
			}
		}
	}

	warn, fail := r.Count(StatusWarn), r.Count(StatusFail)
	if warn == 0 && fail == 0 {
		fmt.Fprintln(w, "\n✓ No issues found")
		return
	}
	fmt.Fprintf(w, "\n%d warnings, %d failures\n", warn, fail)
}
