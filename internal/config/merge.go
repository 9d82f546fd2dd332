package config

// GitPatch is a partial update of Git. Nil fields are left unchanged.
// It is decoded from per-project config files and passed to the service
// for runtime updates.
type GitPatch struct {
	TimeoutMS              *int          `toml:"timeout_ms"`
	WorkingDir             *string       `toml:"working_dir"`
	LargeRepoFileThreshold *int          `toml:"large_repo_file_threshold"`
	Cache                  CachePatch    `toml:"cache"`
	Features               FeaturesPatch `toml:"features"`
}

// CachePatch is a partial update of Cache.
type CachePatch struct {
	Enabled    *bool           `toml:"enabled"`
	DurationMS *int            `toml:"duration_ms"`
	Types      CacheTypesPatch `toml:"types"`
}

// CacheTypesPatch is a partial update of CacheTypes.
type CacheTypesPatch struct {
	Branch  *bool `toml:"branch"`
	Status  *bool `toml:"status"`
	Version *bool `toml:"version"`
	Stash   *bool `toml:"stash"`
}

// FeaturesPatch is a partial update of Features.
type FeaturesPatch struct {
	FetchComparison *bool `toml:"fetch_comparison"`
	FetchStash      *bool `toml:"fetch_stash"`
	FetchOperation  *bool `toml:"fetch_operation"`
	FetchVersion    *bool `toml:"fetch_version"`
}

// Apply returns g with the patch applied and whether any value changed.
// g itself is not modified.
func (p GitPatch) Apply(g Git) (Git, bool) {
	changed := false
	set(&g.TimeoutMS, p.TimeoutMS, &changed)
	set(&g.WorkingDir, p.WorkingDir, &changed)
	set(&g.LargeRepoFileThreshold, p.LargeRepoFileThreshold, &changed)

	set(&g.Cache.Enabled, p.Cache.Enabled, &changed)
	set(&g.Cache.DurationMS, p.Cache.DurationMS, &changed)
	set(&g.Cache.Types.Branch, p.Cache.Types.Branch, &changed)
	set(&g.Cache.Types.Status, p.Cache.Types.Status, &changed)
	set(&g.Cache.Types.Version, p.Cache.Types.Version, &changed)
	set(&g.Cache.Types.Stash, p.Cache.Types.Stash, &changed)

	set(&g.Features.FetchComparison, p.Features.FetchComparison, &changed)
	set(&g.Features.FetchStash, p.Features.FetchStash, &changed)
	set(&g.Features.FetchOperation, p.Features.FetchOperation, &changed)
	set(&g.Features.FetchVersion, p.Features.FetchVersion, &changed)
	return g, changed
}

// IsEmpty reports whether the patch sets nothing.
func (p GitPatch) IsEmpty() bool {
	return p == GitPatch{}
}

func set[T comparable](dst *T, src *T, changed *bool) {
	if src != nil && *dst != *src {
		*dst = *src
		*changed = true
	}
}

// MergeLocal merges a per-project config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	merged := *global
	merged.Git, _ = local.Git.Apply(global.Git)
	if local.Display.Theme != "" {
		merged.Display.Theme = local.Display.Theme
	}
	return &merged
}
