package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/git"
	"github.com/raphi011/statusline/internal/log"
	"github.com/raphi011/statusline/internal/output"
)

var (
	verbose bool
	quiet   bool

	// directory the process was started in
	workDir string

	// error from loading the global config, reported by doctor
	loadErr error
)

// Help groups.
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

var rootCmd = &cobra.Command{
	Use:   "statusline",
	Short: "Git segment for coding assistant status lines",
	Long: `statusline reports the state of the git repository in the current
directory as a single status-line segment or as JSON.

Only read-only git commands are ever executed.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// flags are only known here, so the logger is attached late
		cmd.SetContext(log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet)))

		if !needsGit(cmd) {
			return nil
		}
		return git.CheckGit("")
	},
}

// Execute loads the global config, builds the root context and runs the
// selected command. It exits the process on failure.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "statusline: using defaults: %v\n", err)
		loadErr = err
	}

	workDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "statusline: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = config.WithResolver(ctx, config.NewResolver(&loadedCfg))
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "statusline: %v\n\nRun 'statusline -h' for help\n", err)
		os.Exit(1)
	}
}

// needsGit reports whether cmd needs git up front. Doctor reports a
// missing git itself.
func needsGit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "completion", "__complete", "help", "version", "doctor":
		return false
	}
	if p := cmd.Parent(); p != nil && p.Name() == "config" {
		return false
	}
	return true
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show git commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newGitCmd())

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())
}
