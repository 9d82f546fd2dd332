package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/doctor"
	"github.com/raphi011/statusline/internal/gitinfo"
	"github.com/raphi011/statusline/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var (
		jsonOutput bool
		dir        string
	)

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose setup and performance",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose why the git segment is missing, wrong or slow.

Checks that git is installed, config files load, the directory is a
repository, how its size is classified, and how long each query takes
compared to git.timeout_ms.`,
		Example: `  statusline doctor              # Check current directory
  statusline doctor -d ~/project # Check another directory
  statusline doctor --json       # Machine-readable report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			cfg, target := effectiveConfig(cmd, dir)
			gitCfg := cfg.Git
			gitCfg.WorkingDir = target

			path, _ := config.Path()
			report := doctor.Run(ctx, doctor.Params{
				Config:     cfg,
				ConfigPath: path,
				LoadErr:    loadErr,
				Dir:        target,
				Service:    gitinfo.New(gitCfg),
			})

			if jsonOutput {
				if err := out.JSON(report); err != nil {
					return err
				}
			} else {
				doctor.Print(out.Writer(), report)
			}

			if report.Failed() {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to diagnose")

	return cmd
}
