package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "risk-engine",
	Short: "Regional safety risk scoring pipeline",
	Long:  "Reconciles government crime-incident tables, engineers weighted severity features, trains a scoring model, and serves per-region safety scores and risk tiers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
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
