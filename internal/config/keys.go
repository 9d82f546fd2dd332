package config

import "strconv"

// Setting is one dotted config key with its effective value.
type Setting struct {
	Key   string
	Value string
}

// Settings flattens c into dotted keys in file order.
func Settings(c Config) []Setting {
	b := strconv.FormatBool
	i := strconv.Itoa
	g, d := c.Git, c.Display
	return []Setting{
		{"git.timeout_ms", i(g.TimeoutMS)},
		{"git.working_dir", g.WorkingDir},
		{"git.large_repo_file_threshold", i(g.LargeRepoFileThreshold)},
		{"git.cache.enabled", b(g.Cache.Enabled)},
		{"git.cache.duration_ms", i(g.Cache.DurationMS)},
		{"git.cache.types.branch", b(g.Cache.Types.Branch)},
		{"git.cache.types.status", b(g.Cache.Types.Status)},
		{"git.cache.types.version", b(g.Cache.Types.Version)},
		{"git.cache.types.stash", b(g.Cache.Types.Stash)},
		{"git.features.fetch_comparison", b(g.Features.FetchComparison)},
		{"git.features.fetch_stash", b(g.Features.FetchStash)},
		{"git.features.fetch_operation", b(g.Features.FetchOperation)},
		{"git.features.fetch_version", b(g.Features.FetchVersion)},
		{"display.theme", d.Theme},
		{"display.nerdfont", b(d.NerdFont)},
		{"display.show_branch", b(d.ShowBranch)},
		{"display.show_status", b(d.ShowStatus)},
		{"display.show_operation", b(d.ShowOperation)},
		{"display.show_version", b(d.ShowVersion)},
		{"display.show_stash", b(d.ShowStash)},
		{"display.max_branch_length", i(d.MaxBranchLength)},
	}
}

// Lookup returns the value of a dotted key.
func Lookup(c Config, key string) (string, bool) {
	for _, s := range Settings(c) {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

// KeyNames returns every dotted key in file order.
func KeyNames() []string {
	settings := Settings(Default())
	names := make([]string, len(settings))
	for i, s := range settings {
		names[i] = s.Key
	}
	return names
}
