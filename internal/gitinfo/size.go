package gitinfo

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/statusline/internal/git"
	"github.com/raphi011/statusline/internal/log"
)

const (
	largeCommitCount  = 10000
	largeObjectsBytes = 100 << 20
	sizeProbeTimeout  = 2 * time.Second
)

// IsLargeRepository reports whether the repository exceeds any of the size
// limits: more than 10000 commits, more tracked files than the configured
// threshold, or more than 100MB of objects.
//
// The result is computed once and kept for the lifetime of the service,
// or until UpdateConfig points it at another directory. Probes that fail
// count as "not large".
func (s *Service) IsLargeRepository(ctx context.Context) bool {
	s.sizeMu.Lock()
	defer s.sizeMu.Unlock()

	if s.large == nil {
		large := s.probeSize(ctx)
		s.large = &large
	}
	return *s.large
}

func (s *Service) resetSize() {
	s.sizeMu.Lock()
	s.large = nil
	s.sizeMu.Unlock()
}

func (s *Service) probeSize(ctx context.Context) bool {
	cfg, exec := s.snapshot()
	l := log.FromContext(ctx)

	var commits, files, objects atomic.Bool
	var g errgroup.Group

	g.Go(func() error {
		pctx, cancel := context.WithTimeout(ctx, sizeProbeTimeout)
		defer cancel()
		res, err := exec.Run(pctx, "rev-list", []string{"--count", "HEAD"}, git.RunOptions{
			Timeout:      sizeProbeTimeout,
			IgnoreErrors: true,
		})
		if err != nil || !res.Success {
			return nil
		}
		if n, err := git.ParseCount(res.Stdout); err == nil && n > largeCommitCount {
			commits.Store(true)
		}
		return nil
	})

	g.Go(func() error {
		pctx, cancel := context.WithTimeout(ctx, sizeProbeTimeout)
		defer cancel()
		n, err := exec.CountTrackedFiles(pctx, git.RunOptions{Timeout: sizeProbeTimeout, IgnoreErrors: true})
		if err == nil && n > cfg.LargeRepoFileThreshold {
			files.Store(true)
		}
		return nil
	})

	g.Go(func() error {
		pctx, cancel := context.WithTimeout(ctx, sizeProbeTimeout)
		defer cancel()
		dir, err := s.commonDir(pctx, exec)
		if err != nil {
			return nil
		}
		if objectsSize(pctx, filepath.Join(dir, "objects"), largeObjectsBytes) > largeObjectsBytes {
			objects.Store(true)
		}
		return nil
	})

	_ = g.Wait() // always nil, failed probes count as small

	large := commits.Load() || files.Load() || objects.Load()
	l.Debug("repository size", "large", large,
		"commits", commits.Load(), "files", files.Load(), "objects", objects.Load())
	return large
}

// commonDir returns the absolute directory shared by all worktrees, which
// holds the object database.
func (s *Service) commonDir(ctx context.Context, exec *git.Executor) (string, error) {
	dir, err := exec.Output(ctx, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(exec.Dir(), dir)
	}
	return dir, nil
}

// objectsSize sums file sizes below root, stopping once limit is exceeded
// or ctx is done.
func objectsSize(ctx context.Context, root string, limit int64) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		if total > limit {
			return fs.SkipAll
		}
		return nil
	})
	return total
}
