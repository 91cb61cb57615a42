package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/store"
)

var runNoStore bool

var runCmd = &cobra.Command{
	Use:   "run [location...]",
	Short: "Run the scoring pipeline once and print the result envelope",
	Long:  "Reconciles the given dataset locations (or the configured sources when none are given), trains a fresh model, and prints the scored region envelope as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sources := args
		if len(sources) == 0 {
			sources = cfg.Data.Sources
		}

		var st store.Store
		if !runNoStore {
			var err error
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		engine := initEngine(st)

		zap.L().Info("running pipeline", zap.Strings("sources", sources))
		env := engine.Run(ctx, sources)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "skip recording the run in the store")
	rootCmd.AddCommand(runCmd)
}
