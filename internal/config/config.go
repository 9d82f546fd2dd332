package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/statusline/internal/storage"
)

// Config holds the statusline configuration
type Config struct {
	Git     Git     `toml:"git"`
	Display Display `toml:"display"`
}

// Git configures the git information service
type Git struct {
	TimeoutMS              int      `toml:"timeout_ms"`  // per git invocation
	WorkingDir             string   `toml:"working_dir"` // empty = current directory
	LargeRepoFileThreshold int      `toml:"large_repo_file_threshold"`
	Cache                  Cache    `toml:"cache"`
	Features               Features `toml:"features"`
}

// Cache configures result caching
type Cache struct {
	Enabled    bool       `toml:"enabled"`
	DurationMS int        `toml:"duration_ms"` // base TTL, scaled per category
	Types      CacheTypes `toml:"types"`
}

// CacheTypes selects which query categories are cached
type CacheTypes struct {
	Branch  bool `toml:"branch"`
	Status  bool `toml:"status"`
	Version bool `toml:"version"`
	Stash   bool `toml:"stash"`
}

// Features toggles optional queries
type Features struct {
	FetchComparison bool `toml:"fetch_comparison"` // ahead/behind upstream
	FetchStash      bool `toml:"fetch_stash"`
	FetchOperation  bool `toml:"fetch_operation"`
	FetchVersion    bool `toml:"fetch_version"`
}

// Display configures how the git segment is rendered
type Display struct {
	Theme           string `toml:"theme"`
	NerdFont        bool   `toml:"nerdfont"`
	ShowBranch      bool   `toml:"show_branch"`
	ShowStatus      bool   `toml:"show_status"`
	ShowOperation   bool   `toml:"show_operation"`
	ShowVersion     bool   `toml:"show_version"`
	ShowStash       bool   `toml:"show_stash"`
	MaxBranchLength int    `toml:"max_branch_length"` // 0 = no limit
}

// Timeout returns the per-invocation timeout.
func (g Git) Timeout() time.Duration {
	return time.Duration(g.TimeoutMS) * time.Millisecond
}

// Duration returns the base cache TTL.
func (c Cache) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

const (
	DefaultTimeoutMS              = 1000
	MaxTimeoutMS                  = 30000
	DefaultCacheDurationMS        = 5000
	DefaultLargeRepoFileThreshold = 10000
	DefaultTheme                  = "classic"
)

// Default returns the default configuration
func Default() Config {
	return Config{
		Git: Git{
			TimeoutMS:              DefaultTimeoutMS,
			LargeRepoFileThreshold: DefaultLargeRepoFileThreshold,
			Cache: Cache{
				Enabled:    true,
				DurationMS: DefaultCacheDurationMS,
				Types:      CacheTypes{Branch: true, Status: true, Version: true, Stash: true},
			},
			Features: Features{
				FetchComparison: true,
				FetchStash:      true,
				FetchOperation:  true,
				FetchVersion:    true,
			},
		},
		Display: Display{
			Theme:         DefaultTheme,
			ShowBranch:    true,
			ShowStatus:    true,
			ShowOperation: true,
			ShowStash:     true,
		},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "statusline", "config.toml"), nil
}

// Load reads config from ~/.config/statusline/config.toml and applies
// environment overrides.
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path, os.Getenv)
}

// LoadFile reads config from path, overlays it on Default() and applies the
// environment overrides read through getenv. A missing file is not an error.
func LoadFile(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Default(), err
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	// Expand ~ in working_dir (shell doesn't expand in config files)
	if cfg.Git.WorkingDir != "" {
		expanded, err := expandPath(cfg.Git.WorkingDir)
		if err != nil {
			return Default(), fmt.Errorf("expand git.working_dir: %w", err)
		}
		cfg.Git.WorkingDir = expanded
	}

	return cfg, nil
}

// Environment variables that override file settings.
const (
	EnvTimeoutMS = "STATUSLINE_GIT_TIMEOUT_MS"
	EnvNoCache   = "STATUSLINE_NO_CACHE"
	EnvTheme     = "STATUSLINE_THEME"
)

func applyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := getenv(EnvTimeoutMS); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeoutMS, v, err)
		}
		cfg.Git.TimeoutMS = ms
	}
	if v := getenv(EnvNoCache); v == "1" || v == "true" {
		cfg.Git.Cache.Enabled = false
	}
	if v := getenv(EnvTheme); v != "" {
		cfg.Display.Theme = v
	}
	return nil
}

const defaultConfig = `# statusline configuration

[git]
# Timeout for a single git invocation in milliseconds (max 30000)
timeout_ms = 1000

# Repository to inspect. Must be absolute or start with ~.
# Empty uses the current directory.
# working_dir = "~/Code/project"

# A repository with more tracked files than this is treated as large.
# Large repositories (also: >10000 commits or >100MB of objects) use
# longer cache lifetimes and skip the version and ahead/behind queries
# unless a refresh is forced.
large_repo_file_threshold = 10000

[git.cache]
enabled = true
# Base lifetime in milliseconds. Each category scales it:
#   small repo: x1 per category, x2 for the combined result
#   large repo: branch x6, status x2, version x12, stash x6, combined x8
duration_ms = 5000

[git.cache.types]
branch = true
status = true
version = true
stash = true

[git.features]
fetch_comparison = true  # ahead/behind upstream
fetch_stash = true
fetch_operation = true   # merge, rebase, cherry-pick, ...
fetch_version = true     # last commit and nearest tag

[display]
theme = "classic"  # classic, powerline, or capsule
nerdfont = false
show_branch = true
show_status = true
show_operation = true
show_version = false
show_stash = true
# max_branch_length = 30

# Environment overrides:
#   STATUSLINE_GIT_TIMEOUT_MS=2000
#   STATUSLINE_NO_CACHE=1
#   STATUSLINE_THEME=powerline
#
# Per-project overrides of the [git] table can be placed in
# .statusline.toml at the repository root.
`

// DefaultConfig returns the default configuration file content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at ~/.config/statusline/config.toml
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, InitFile(path, force)
}

// ErrConfigExists is returned by Init when the file is already present.
var ErrConfigExists = errors.New("config file already exists")

// InitFile writes the default config to path.
func InitFile(path string, force bool) error {
	data := []byte(defaultConfig)
	if force {
		return storage.WriteFile(path, data, 0644)
	}
	if err := storage.CreateFile(path, data, 0644); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return err
	}
	return nil
}
