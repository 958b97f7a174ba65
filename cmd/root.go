package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "powder",
	Short: "Ski destination recommender for the Northeast",
	Long: `powder ranks ski mountains for a given day by combining the catalog,
forecast conditions, drive times, and crowd calendars into a single
deterministic recommendation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return config.InitLogger(cfg.Log)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
