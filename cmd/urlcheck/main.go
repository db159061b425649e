package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/beelot/tooling/internal/cli"
	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/beelot/tooling/pkg/urlcheck"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "urlcheck <tracht_data.js>",
		Short: "Report plant care URLs that cannot be fetched or show an Error404 page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.Bootstrap(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			src, err := os.ReadFile(args[0])
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return apperr.InputFormat("input file does not exist: %s", args[0])
				}
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			entries := urlcheck.ParseEntries(string(src))
			logging.C(ctx).Info("Checking URLs", zap.String("file", args[0]), zap.Int("entries", len(entries)))

			checker := urlcheck.NewChecker(urlcheck.Options{
				Timeout:        cfg.URLCheck.Timeout,
				Delay:          cfg.URLCheck.Delay,
				Marker:         cfg.URLCheck.Marker,
				UserAgent:      cfg.URLCheck.UserAgent,
				AcceptLanguage: cfg.URLCheck.AcceptLanguage,
			}, logging.L())
			problems, err := checker.Check(ctx, entries)
			if err != nil {
				return err
			}

			return urlcheck.WriteReport(cmd.OutOrStdout(), problems)
		},
	}

	cli.AddConfigFlag(rootCmd, &configPath)
	cli.Execute(rootCmd)
}
