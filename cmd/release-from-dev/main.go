package main

import (
	"os"

	"github.com/beelot/tooling/internal/cli"
	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/adapters/github"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/beelot/tooling/pkg/release"
	"github.com/spf13/cobra"
)

var (
	configPath string
	apply      bool
	dryRun     bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "release-from-dev [--apply | --dryrun]",
		Short: "Release from dev into main with tagging",
		Example: "  release-from-dev --apply\n" +
			"  release-from-dev --dryrun",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !apply && !dryRun {
				return cmd.Help()
			}

			cfg, err := cli.Bootstrap(configPath)
			if err != nil {
				return err
			}
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			var gh github.Client
			if cfg.Release.GitHub.Repository != "" && cfg.Release.GitHub.Token != "" {
				gh = github.New(cfg.Release.GitHub.Token)
			}

			f := release.NewFromDev(release.SettingsFromConfig(cfg), dir,
				command.NewExecRunner(dir), gh, logging.L())
			return f.Run(cmd.Context(), release.FromDevOptions{DryRun: dryRun})
		},
	}

	cli.AddConfigFlag(rootCmd, &configPath)
	rootCmd.Flags().BoolVar(&apply, "apply", false, "Apply changes (required for a real release)")
	rootCmd.Flags().BoolVar(&dryRun, "dryrun", false, "Print commands without executing them")
	rootCmd.MarkFlagsMutuallyExclusive("apply", "dryrun")

	cli.Execute(rootCmd)
}
