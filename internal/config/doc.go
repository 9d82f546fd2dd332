// Package config handles loading and validation of statusline configuration.
//
// Configuration is read from ~/.config/statusline/config.toml. Every field
// has a default, so an absent file or a partial file is valid. The merged
// result is validated once at load.
//
// # Configuration Sources (highest priority first)
//
//   - STATUSLINE_GIT_TIMEOUT_MS, STATUSLINE_NO_CACHE, STATUSLINE_THEME
//   - .statusline.toml at the project root (see [Resolver])
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - git.timeout_ms: per git invocation, 1 to 30000 (default: 1000)
//   - git.cache.duration_ms: base cache lifetime (default: 5000)
//   - git.large_repo_file_threshold: tracked files above which a repo is large
//   - git.features.*: toggles for the optional queries
//   - display.theme: "classic", "powerline" or "capsule"
//
// # Runtime Updates
//
// [GitPatch] carries a partial update of the git settings. Nil fields are
// left alone; [GitPatch.Apply] reports whether anything changed so callers
// can drop stale caches.
package config
