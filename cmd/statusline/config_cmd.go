package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage statusline configuration.

Global config: ~/.config/statusline/config.toml
Local config:  .statusline.toml (in the repository directory)`,
		Example: `  statusline config init              # Create default global config
  statusline config show              # Show effective config
  statusline config get display.theme # Print a single value`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  statusline config init      # Create global config
  statusline config init -f   # Overwrite existing config
  statusline config init -s   # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if stdout {
				out.Print(config.DefaultConfig())
				return nil
			}

			path, err := config.Init(force)
			if errors.Is(err, config.ErrConfigExists) {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			if err != nil {
				return err
			}

			out.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show effective configuration.

Values overridden by a .statusline.toml in the target directory are
marked (local).`,
		Example: `  statusline config show              # Config for current directory
  statusline config show -d ~/project # Config for another directory
  statusline config show --json       # Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			effCfg, target := effectiveConfig(cmd, dir)
			if jsonOutput {
				return out.JSON(effCfg)
			}

			global := config.ResolverFromContext(cmd.Context())
			globalSettings := map[string]string{}
			if global != nil {
				for _, s := range config.Settings(*global.Global()) {
					globalSettings[s.Key] = s.Value
				}
			}

			if path, err := config.Path(); err == nil {
				out.Printf("Global config: %s\n", path)
			}
			localPath := filepath.Join(target, config.LocalConfigFileName)
			if _, err := os.Stat(localPath); err == nil {
				out.Printf("Local config:  %s\n", localPath)
			} else {
				out.Printf("Local config:  (none)\n")
			}
			out.Println()

			for _, s := range config.Settings(*effCfg) {
				source := ""
				if v, ok := globalSettings[s.Key]; ok && v != s.Value {
					source = " (local)"
				}
				out.Printf("%s: %s%s\n", s.Key, s.Value, source)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory whose .statusline.toml is merged")

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		Example: `  statusline config get git.timeout_ms
  statusline config get display.theme`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return config.KeyNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			effCfg, _ := effectiveConfig(cmd, dir)
			value, ok := config.Lookup(*effCfg, args[0])
			if !ok {
				return unknownKeyError(args[0])
			}
			out.Println(value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory whose .statusline.toml is merged")

	return cmd
}

// unknownKeyError suggests the closest config keys for a mistyped one.
func unknownKeyError(key string) error {
	matches := fuzzy.Find(key, config.KeyNames())
	if len(matches) == 0 {
		return fmt.Errorf("unknown config key %q", key)
	}

	suggestions := make([]string, 0, 3)
	for _, m := range matches[:min(3, len(matches))] {
		suggestions = append(suggestions, m.Str)
	}
	return fmt.Errorf("unknown config key %q (did you mean: %s?)", key, strings.Join(suggestions, ", "))
}
