package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-project config file looked up at the
// repository root.
const LocalConfigFileName = ".statusline.toml"

// LocalConfig holds per-project overrides from .statusline.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	Git     GitPatch     `toml:"git"`
	Display LocalDisplay `toml:"display"`
}

// LocalDisplay holds local display overrides
type LocalDisplay struct {
	Theme string `toml:"theme"`
}

// LoadLocal reads a per-project .statusline.toml from dir.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(dir string) (*LocalConfig, error) {
	configFile := filepath.Join(dir, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	if err := validateEnum(local.Display.Theme, "display.theme", ValidThemes); err != nil {
		return nil, fmt.Errorf("%w in %s", err, configFile)
	}

	// A project may not point the service at another repository.
	if local.Git.WorkingDir != nil {
		return nil, fmt.Errorf("git.working_dir is not allowed in %s", configFile)
	}

	return &local, nil
}
