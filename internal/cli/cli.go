// Package cli holds the bootstrap shared by the tooling binaries.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/config"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// AddConfigFlag registers --config/-c on cmd.
func AddConfigFlag(cmd *cobra.Command, path *string) {
	cmd.PersistentFlags().StringVarP(path, "config", "c", config.DefaultPath, "Path to the config file")
}

// Bootstrap loads the configuration and initializes the global logger from it.
func Bootstrap(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Init("info", true)
		return nil, err
	}
	logging.Init(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

// Execute runs cmd until completion or interrupt and exits the process with the mapped code.
func Execute(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		logging.L().Error("Command failed", zap.Error(err))
	}
	_ = logging.L().Sync()
	os.Exit(apperr.ExitCode(err))
}
