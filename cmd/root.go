package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fluent-ops/flu3nt/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "flu3nt",
	Short: "Scope-sheet column mapper for provider onboarding",
	Long:  "Detects which columns of an uploaded provider scope sheet correspond to known template fields, manages confirmed mappings, and learns from them for future uploads.",
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
