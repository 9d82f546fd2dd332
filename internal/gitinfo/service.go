package gitinfo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/statusline/internal/cache"
	"github.com/raphi011/statusline/internal/cmd"
	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/git"
	"github.com/raphi011/statusline/internal/log"
)

// errSkipped marks a query left out by the large-repository shortcut.
var errSkipped = errors.New("skipped for large repository")

// Service answers git questions about one working directory.
//
// All getters degrade instead of failing: a query that errors returns the
// empty value for its type and the error is only logged at debug level.
// A Service is safe for concurrent use.
type Service struct {
	runner cmd.Runner
	binary string
	now    func() time.Time

	mu   sync.RWMutex
	cfg  config.Git
	exec *git.Executor

	store *cache.Store

	sizeMu sync.Mutex
	large  *bool
}

// Option configures a Service.
type Option func(*Service)

// WithRunner replaces the process runner used for git.
func WithRunner(r cmd.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBinary sets the git binary.
func WithBinary(bin string) Option {
	return func(s *Service) { s.binary = bin }
}

// New creates a Service for cfg. cfg is expected to be validated.
func New(cfg config.Git, opts ...Option) *Service {
	s := &Service{
		binary: "git",
		now:    time.Now,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = cache.New(cache.WithClock(s.now))
	s.store.SetEnabled(cfg.Cache.Enabled)
	s.exec = s.newExecutor(cfg)
	return s
}

func (s *Service) newExecutor(cfg config.Git) *git.Executor {
	opts := []git.ExecutorOption{
		git.WithBinary(s.binary),
		git.WithTimeout(cfg.Timeout()),
		// Never take index.lock for a refresh.
		git.WithEnv(map[string]string{"GIT_OPTIONAL_LOCKS": "0"}),
	}
	if s.runner != nil {
		opts = append(opts, git.WithRunner(s.runner))
	}
	return git.NewExecutor(cfg.WorkingDir, opts...)
}

func (s *Service) snapshot() (config.Git, *git.Executor) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.exec
}

// Config returns the current git configuration.
func (s *Service) Config() config.Git {
	cfg, _ := s.snapshot()
	return cfg
}

// UpdateConfig applies a partial configuration update. It reports whether
// anything changed; on change all cached results are dropped, and the size
// heuristic is recomputed if the working directory moved.
func (s *Service) UpdateConfig(patch config.GitPatch) (bool, error) {
	s.mu.Lock()
	next, changed := patch.Apply(s.cfg)
	if !changed {
		s.mu.Unlock()
		return false, nil
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	moved := next.WorkingDir != s.cfg.WorkingDir
	s.cfg = next
	s.exec = s.newExecutor(next)
	s.mu.Unlock()

	s.store.SetEnabled(next.Cache.Enabled)
	s.store.Clear()
	if moved {
		s.resetSize()
	}
	return true, nil
}

// ClearCache drops every cached result.
func (s *Service) ClearCache() {
	s.store.Clear()
}

// CacheStats reports the cache contents.
func (s *Service) CacheStats() cache.Stats {
	return s.store.Stats()
}

// IsGitRepo reports whether git finds a repository for the working
// directory, bare repositories and .git itself included.
// Any failure reads as false.
func (s *Service) IsGitRepo(ctx context.Context) bool {
	_, exec := s.snapshot()
	res, err := exec.Run(ctx, "rev-parse", []string{"--git-dir"}, git.RunOptions{IgnoreErrors: true})
	return err == nil && res.Success
}

// GetGitInfo returns the full snapshot, querying the selected categories
// concurrently on a cache miss. Outside a repository it returns
// EmptyGitInfo.
func (s *Service) GetGitInfo(ctx context.Context, opts QueryOptions) GitInfo {
	cfg, _ := s.snapshot()

	if !opts.ForceRefresh && cacheable(cfg, cache.KeyFull) {
		if info, ok := cache.Get[GitInfo](s.store, cache.KeyFull); ok {
			return info.Filter(opts)
		}
	}

	if !s.IsGitRepo(ctx) {
		return EmptyGitInfo()
	}
	large := s.IsLargeRepository(ctx)
	force := opts.ForceRefresh

	info := GitInfo{IsRepo: true, Branch: EmptyBranchInfo()}

	var g errgroup.Group
	if opts.Includes(CategoryBranch) {
		g.Go(func() error {
			info.Branch = s.GetBranchInfo(ctx, force)
			return nil
		})
	}
	if opts.Includes(CategoryStatus) {
		g.Go(func() error {
			info.Status = s.GetWorkingStatus(ctx, force)
			return nil
		})
	}
	if opts.Includes(CategoryOperation) && cfg.Features.FetchOperation {
		g.Go(func() error {
			info.Operation = s.GetOperationStatus(ctx, force)
			return nil
		})
	}
	if opts.Includes(CategoryVersion) && cfg.Features.FetchVersion {
		g.Go(func() error {
			info.Version = s.GetVersionInfo(ctx, force)
			return nil
		})
	}
	if opts.Includes(CategoryStash) && cfg.Features.FetchStash {
		g.Go(func() error {
			info.Stash = s.GetStashInfo(ctx, force)
			return nil
		})
	}
	_ = g.Wait() // getters never fail, they degrade to empty values

	// A partial snapshot would answer later unfiltered requests.
	if !opts.filtered() {
		cache.Set(s.store, cache.KeyFull, info, ttlFor(cfg, cache.KeyFull, large))
	}
	return info
}

// GetBranchInfo returns the current branch, its upstream and, unless the
// repository is large and force is false, the ahead/behind counts.
func (s *Service) GetBranchInfo(ctx context.Context, force bool) BranchInfo {
	return query(ctx, s, cache.KeyBranch, force, EmptyBranchInfo(), s.fetchBranch)
}

// GetWorkingStatus counts staged, unstaged, untracked and conflicted
// paths. Untracked files are not counted in a large repository unless
// force is set.
func (s *Service) GetWorkingStatus(ctx context.Context, force bool) WorkingStatus {
	return query(ctx, s, cache.KeyStatus, force, WorkingStatus{}, s.fetchStatus)
}

// GetOperationStatus reports an in-progress merge, rebase, cherry-pick,
// revert, bisect or am.
func (s *Service) GetOperationStatus(ctx context.Context, force bool) OperationStatus {
	return query(ctx, s, cache.KeyOperation, force, OperationStatus{}, s.fetchOperation)
}

// GetVersionInfo returns the latest commit and nearest tag. It is skipped
// in a large repository unless force is set.
func (s *Service) GetVersionInfo(ctx context.Context, force bool) VersionInfo {
	return query(ctx, s, cache.KeyVersion, force, VersionInfo{}, s.fetchVersion)
}

// GetStashInfo counts stash entries.
func (s *Service) GetStashInfo(ctx context.Context, force bool) StashInfo {
	return query(ctx, s, cache.KeyStash, force, StashInfo{}, s.fetchStash)
}

// query is the cache-then-fetch-then-cache path shared by the getters.
func query[T any](ctx context.Context, s *Service, key cache.Key, force bool, empty T,
	fetch func(context.Context, bool) (T, error)) T {
	cfg, _ := s.snapshot()

	if !force && cacheable(cfg, key) {
		if v, ok := cache.Get[T](s.store, key); ok {
			return v
		}
	}

	v, err := fetch(ctx, force)
	if err != nil {
		if !errors.Is(err, errSkipped) {
			log.FromContext(ctx).Debug("git query degraded", "category", key, "err", err)
		}
		return empty
	}

	if cacheable(cfg, key) {
		cache.Set(s.store, key, v, ttlFor(cfg, key, s.IsLargeRepository(ctx)))
	}
	return v
}

func (s *Service) fetchBranch(ctx context.Context, force bool) (BranchInfo, error) {
	cfg, exec := s.snapshot()

	info := BranchInfo{}
	name, err := exec.Output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	switch {
	case err != nil:
		// Unborn branch: HEAD names a branch without commits.
		name, err = exec.Output(ctx, "symbolic-ref", "--short", "HEAD")
		if err != nil {
			return BranchInfo{}, err
		}
		info.Current = name
		return info, nil
	case name == "HEAD":
		short, err := exec.Output(ctx, "rev-parse", "--short", "HEAD")
		if err != nil {
			return BranchInfo{}, err
		}
		info.Current = short
		info.Detached = true
		return info, nil
	}
	info.Current = name

	res, err := exec.Run(ctx, "rev-parse", []string{"--abbrev-ref", "--symbolic-full-name", "@{upstream}"},
		git.RunOptions{IgnoreErrors: true})
	if err != nil || !res.Success {
		return info, nil
	}
	info.Upstream = strings.TrimSpace(res.Stdout)
	info.HasUpstream = info.Upstream != ""

	if !info.HasUpstream || !cfg.Features.FetchComparison || (!force && s.IsLargeRepository(ctx)) {
		return info, nil
	}
	out, err := exec.Output(ctx, "rev-list", "--left-right", "--count", "HEAD...@{upstream}")
	if err != nil {
		log.FromContext(ctx).Debug("ahead/behind unavailable", "err", err)
		return info, nil
	}
	if ahead, behind, err := git.ParseAheadBehind(out); err == nil {
		info.Ahead, info.Behind = ahead, behind
	}
	return info, nil
}

func (s *Service) fetchStatus(ctx context.Context, force bool) (WorkingStatus, error) {
	_, exec := s.snapshot()

	args := []string{"--porcelain"}
	if !force && s.IsLargeRepository(ctx) {
		args = append(args, "--untracked-files=no")
	}
	res, err := exec.Run(ctx, "status", args, git.RunOptions{})
	if err != nil {
		return WorkingStatus{}, err
	}
	c := git.ParsePorcelain(res.Stdout)
	return WorkingStatus{
		Clean:      c.Clean(),
		Staged:     c.Staged,
		Unstaged:   c.Unstaged,
		Untracked:  c.Untracked,
		Conflicted: c.Conflicted,
	}, nil
}

func (s *Service) fetchOperation(ctx context.Context, _ bool) (OperationStatus, error) {
	_, exec := s.snapshot()

	gitDir, err := exec.Output(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return OperationStatus{}, err
	}
	op := git.DetectOperation(gitDir)
	return OperationStatus{State: op.State, Branch: op.Branch, Progress: op.Progress}, nil
}

func (s *Service) fetchVersion(ctx context.Context, force bool) (VersionInfo, error) {
	if !force && s.IsLargeRepository(ctx) {
		return VersionInfo{}, errSkipped
	}
	_, exec := s.snapshot()

	out, err := exec.Output(ctx, "log", "-1", git.CommitFormat)
	if err != nil {
		return VersionInfo{}, err
	}
	commit, err := git.ParseCommit(out)
	if err != nil {
		return VersionInfo{}, err
	}
	info := VersionInfo{
		CommitID:      commit.Hash,
		ShortCommitID: commit.ShortHash,
		Message:       commit.Subject,
		Author:        commit.Author,
		Timestamp:     commit.Timestamp,
	}

	res, err := exec.Run(ctx, "describe", []string{"--tags", "--abbrev=0"}, git.RunOptions{IgnoreErrors: true})
	if err != nil || !res.Success {
		return info, nil
	}
	info.Tag = strings.TrimSpace(res.Stdout)
	if info.Tag == "" {
		return info, nil
	}

	count, err := exec.Output(ctx, "rev-list", "--count", info.Tag+"..HEAD")
	if err != nil {
		log.FromContext(ctx).Debug("commits since tag unavailable", "tag", info.Tag, "err", err)
		return info, nil
	}
	if n, err := git.ParseCount(count); err == nil {
		info.CommitsSinceTag = n
	}
	return info, nil
}

func (s *Service) fetchStash(ctx context.Context, _ bool) (StashInfo, error) {
	_, exec := s.snapshot()

	res, err := exec.Run(ctx, "stash", []string{"list"}, git.RunOptions{})
	if err != nil {
		return StashInfo{}, err
	}
	return StashInfo{Count: git.CountLines(res.Stdout)}, nil
}
