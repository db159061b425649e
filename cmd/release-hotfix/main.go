package main

import (
	"os"

	"github.com/beelot/tooling/internal/cli"
	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/beelot/tooling/pkg/release"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dryRun     bool
	yes        bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "release-hotfix [--dryrun] [--yes]",
		Short: "Release the current hotfix based on the version in assets/js/version.js",
		Example: "  release-hotfix --dryrun\n" +
			"  release-hotfix",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.Bootstrap(configPath)
			if err != nil {
				return err
			}
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			confirmer := release.NewPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirmer = release.AutoConfirm()
			}

			h := release.NewHotfix(release.SettingsFromConfig(cfg), dir,
				command.NewExecRunner(dir), confirmer, logging.L())
			return h.Run(cmd.Context(), release.HotfixOptions{DryRun: dryRun})
		},
	}

	cli.AddConfigFlag(rootCmd, &configPath)
	rootCmd.Flags().BoolVar(&dryRun, "dryrun", false, "Print commands without executing them")
	rootCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cli.Execute(rootCmd)
}
