package gitinfo

import (
	"time"

	"github.com/raphi011/statusline/internal/cache"
	"github.com/raphi011/statusline/internal/config"
)

// Multipliers over the configured base cache duration, by repository size.
var (
	smallRepoTTL = map[cache.Key]time.Duration{
		cache.KeyBranch:    1,
		cache.KeyStatus:    1,
		cache.KeyOperation: 1,
		cache.KeyVersion:   1,
		cache.KeyStash:     1,
		cache.KeyFull:      2,
	}
	largeRepoTTL = map[cache.Key]time.Duration{
		cache.KeyBranch:    6,
		cache.KeyStatus:    2,
		cache.KeyOperation: 1,
		cache.KeyVersion:   12,
		cache.KeyStash:     6,
		cache.KeyFull:      8,
	}
)

// ttlFor returns the lifetime of a fresh entry under key. Zero means the
// entry is not cached.
func ttlFor(cfg config.Git, key cache.Key, large bool) time.Duration {
	if !cacheable(cfg, key) {
		return 0
	}
	table := smallRepoTTL
	if large {
		table = largeRepoTTL
	}
	return cfg.Cache.Duration() * table[key]
}

// cacheable reports whether cache.types enables key. Operation state and
// the aggregate have no toggle of their own.
func cacheable(cfg config.Git, key cache.Key) bool {
	if !cfg.Cache.Enabled {
		return false
	}
	t := cfg.Cache.Types
	switch key {
	case cache.KeyBranch:
		return t.Branch
	case cache.KeyStatus:
		return t.Status
	case cache.KeyVersion:
		return t.Version
	case cache.KeyStash:
		return t.Stash
	}
	return true
}
