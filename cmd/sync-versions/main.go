package main

import (
	"errors"
	"fmt"

	"github.com/beelot/tooling/internal/cli"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/beelot/tooling/pkg/versionsync"
	"github.com/spf13/cobra"
)

var errSourceRequired = errors.New(`required flag "source" not set`)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		source     string
		check      bool
		dryRun     bool
	)

	var rootCmd = &cobra.Command{
		Use:   "sync-versions --source version-js|package-json|max [--check] [--dryrun]",
		Short: "Keep assets/js/version.js and package.json on the same version",
		Example: "  sync-versions --source version-js\n" +
			"  sync-versions --source package-json\n" +
			"  sync-versions --source max --check --dryrun",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Called without any flag: show the usage instead of picking a source.
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			if !cmd.Flags().Changed("source") {
				return errSourceRequired
			}

			cfg, err := cli.Bootstrap(configPath)
			if err != nil {
				return err
			}

			src, err := versionsync.ParseSource(source)
			if err != nil {
				return err
			}

			syncer := versionsync.New(cfg.Project.VersionJS, cfg.Project.PackageJSON, logging.L())
			_, err = syncer.Run(cmd.Context(), versionsync.Options{
				Source: src,
				Check:  check,
				DryRun: dryRun,
			})
			return err
		},
	}

	cli.AddConfigFlag(rootCmd, &configPath)
	rootCmd.Flags().StringVar(&source, "source", "",
		fmt.Sprintf("Source of truth, one of %v (required)", versionsync.Sources))
	rootCmd.Flags().BoolVar(&check, "check", false, "Only check that both files agree, never write")
	rootCmd.Flags().BoolVar(&dryRun, "dryrun", false, "Print the intended writes without performing them")

	return rootCmd
}

func main() {
	cli.Execute(newRootCmd())
}
