package main

import (
	"github.com/beelot/tooling/internal/cli"
	"github.com/beelot/tooling/pkg/gts"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	inputPath  string
	outputPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "gts -i <input.js> -o <output.txt>",
		Short: "Compute GTS values from the dates and values arrays of a JavaScript file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := cli.Bootstrap(configPath); err != nil {
				return err
			}

			results, err := gts.Run(inputPath, outputPath)
			if err != nil {
				return err
			}

			logging.C(cmd.Context()).Info("GTS calculation completed successfully",
				zap.String("output", outputPath),
				zap.Int("results", len(results)))
			return nil
		},
	}

	cli.AddConfigFlag(rootCmd, &configPath)
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to the input file containing the JavaScript arrays")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to the output file for the GTS fixture")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")

	cli.Execute(rootCmd)
}
