package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidThemes lists the built-in display themes.
var ValidThemes = []string{"classic", "powerline", "capsule"}

// Validate checks the whole configuration once, after all sources are merged.
func (c Config) Validate() error {
	if err := c.Git.Validate(); err != nil {
		return err
	}
	if err := validateEnum(c.Display.Theme, "display.theme", ValidThemes); err != nil {
		return err
	}
	if c.Display.MaxBranchLength < 0 {
		return fmt.Errorf("invalid display.max_branch_length %d: must not be negative", c.Display.MaxBranchLength)
	}
	return nil
}

// Validate checks the git settings.
func (g Git) Validate() error {
	if g.TimeoutMS <= 0 || g.TimeoutMS > MaxTimeoutMS {
		return fmt.Errorf("invalid git.timeout_ms %d: must be between 1 and %d", g.TimeoutMS, MaxTimeoutMS)
	}
	if g.Cache.DurationMS < 0 {
		return fmt.Errorf("invalid git.cache.duration_ms %d: must not be negative", g.Cache.DurationMS)
	}
	if g.LargeRepoFileThreshold <= 0 {
		return fmt.Errorf("invalid git.large_repo_file_threshold %d: must be positive", g.LargeRepoFileThreshold)
	}
	return ValidatePath(g.WorkingDir, "git.working_dir")
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
