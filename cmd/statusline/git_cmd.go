package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/format"
	"github.com/raphi011/statusline/internal/git"
	"github.com/raphi011/statusline/internal/gitinfo"
	"github.com/raphi011/statusline/internal/log"
	"github.com/raphi011/statusline/internal/output"
)

// Color modes for --color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

func newGitCmd() *cobra.Command {
	var (
		jsonOutput      bool
		force           bool
		copyToClipboard bool
		dir             string
		colorMode       string
		only            []string
		skip            []string
	)

	cmd := &cobra.Command{
		Use:     "git",
		Short:   "Print the git segment",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Print the git segment for a directory.

Queries branch, working tree status, in-progress operation, version and
stash concurrently. Queries that fail are shown as empty values. Outside
a repository the segment reads "no-git".

Categories: branch, status, operation, version, stash.`,
		Example: `  statusline git                      # Segment for current directory
  statusline git --json               # Full snapshot as JSON
  statusline git --only branch,status # Query a subset
  statusline git --color always       # Styled even when piped
  statusline git -d ~/src/project     # Another directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			opts := gitinfo.QueryOptions{ForceRefresh: force}
			var err error
			if opts.Only, err = parseCategories(only); err != nil {
				return err
			}
			if opts.Skip, err = parseCategories(skip); err != nil {
				return err
			}

			cfg, target := effectiveConfig(cmd, dir)
			gitCfg := cfg.Git
			gitCfg.WorkingDir = target

			svc := gitinfo.New(gitCfg)
			info := svc.GetGitInfo(ctx, opts)

			stats := svc.CacheStats()
			l.Debug("cache", "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)

			if jsonOutput {
				return out.JSON(info)
			}

			if copyToClipboard {
				if err := clipboard.WriteAll(format.New(cfg.Display, false).Render(info)); err != nil {
					l.Printf("Warning: failed to copy to clipboard: %v\n", err)
				}
			}

			w, styled, err := segmentWriter(out.Writer(), colorMode, os.Environ())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, format.New(cfg.Display, styled).Render(info))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Bypass cached results")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the unstyled segment to clipboard")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Repository directory (default: git.working_dir or current directory)")
	cmd.Flags().StringVar(&colorMode, "color", ColorAuto, "Styling: auto, always or never")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Only query these categories")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "Skip these categories")

	categoryNames := make([]string, len(gitinfo.Categories))
	for i, c := range gitinfo.Categories {
		categoryNames[i] = string(c)
	}
	completeCategories := cobra.FixedCompletions(categoryNames, cobra.ShellCompDirectiveNoFileComp)
	cmd.RegisterFlagCompletionFunc("only", completeCategories)
	cmd.RegisterFlagCompletionFunc("skip", completeCategories)
	cmd.RegisterFlagCompletionFunc("color", cobra.FixedCompletions(
		[]string{ColorAuto, ColorAlways, ColorNever}, cobra.ShellCompDirectiveNoFileComp))

	cmd.AddCommand(newGitExecCmd())

	return cmd
}

func newGitExecCmd() *cobra.Command {
	var (
		jsonOutput bool
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "exec <command>",
		Short: "Run one read-only git command",
		Args:  cobra.MinimumNArgs(1),
		Long: `Run a single git command through the same validation the segment uses.

Only read-only subcommands and known flags are accepted. Pipes, command
chaining and redirections are rejected before anything is executed.`,
		Example: `  statusline git exec rev-parse --abbrev-ref HEAD
  statusline git exec "git log -1 --oneline"
  statusline git exec --json status --porcelain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			spec, err := git.ParseCommand(strings.Join(args, " "))
			if err != nil {
				return err
			}

			cfg, target := effectiveConfig(cmd, dir)
			executor := git.NewExecutor(target,
				git.WithTimeout(cfg.Git.Timeout()),
				git.WithEnv(map[string]string{"GIT_OPTIONAL_LOCKS": "0"}),
			)

			res, err := executor.RunSpec(ctx, spec, git.RunOptions{IgnoreErrors: jsonOutput})
			if err != nil {
				return err
			}

			if jsonOutput {
				return out.JSON(res)
			}
			out.Print(res.Stdout)
			if res.Stderr != "" {
				log.FromContext(ctx).Printf("%s", res.Stderr)
			}
			return nil
		},
	}

	// flags after the command belong to git
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full result as JSON, including failures")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Repository directory (default: git.working_dir or current directory)")

	return cmd
}

// effectiveConfig resolves the target directory and its merged config.
// The directory comes from --dir, then git.working_dir, then the process
// working directory. A broken .statusline.toml falls back to the global
// config with a warning.
func effectiveConfig(cmd *cobra.Command, dir string) (*config.Config, string) {
	ctx := cmd.Context()
	l := log.FromContext(ctx)

	resolver := config.ResolverFromContext(ctx)
	if resolver == nil {
		def := config.Default()
		resolver = config.NewResolver(&def)
	}
	global := resolver.Global()

	target := dir
	if target == "" {
		target = global.Git.WorkingDir
	}
	if target == "" {
		target = workDir
	}
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	cfg, err := resolver.ConfigForDir(target)
	if err != nil {
		l.Printf("Warning: failed to load local config: %v (using global config)\n", err)
		return global, target
	}
	return cfg, target
}

// parseCategories parses --only/--skip values.
func parseCategories(values []string) ([]gitinfo.Category, error) {
	var cats []gitinfo.Category
	for _, v := range values {
		c, err := gitinfo.ParseCategory(v)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// segmentWriter decides whether the segment is styled and wraps w so that
// colors are downsampled to what the terminal supports.
func segmentWriter(w io.Writer, mode string, environ []string) (io.Writer, bool, error) {
	var profile colorprofile.Profile
	switch mode {
	case ColorNever:
		return w, false, nil
	case ColorAlways:
		profile = colorprofile.Env(environ)
	case ColorAuto, "":
		if !isTerminal(w) {
			return w, false, nil
		}
		profile = colorprofile.Detect(w, environ)
	default:
		return nil, false, fmt.Errorf("invalid --color %q (valid: %s, %s, %s)", mode, ColorAuto, ColorAlways, ColorNever)
	}
	return &colorprofile.Writer{Forward: w, Profile: profile}, true, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
