package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/searchbench/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "searchbench",
	Short: "Honest benchmarks for agentic search APIs",
	Long:  "Runs the same questions against multiple search providers, grades every answer with an LLM judge, and reports accuracy, latency, and cost side by side.",
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
