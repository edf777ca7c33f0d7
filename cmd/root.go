package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "jnd",
	Short: "Lead enrichment and contact-quality pipeline",
	Long:  "Deduplicates and validates candidate leads, scrapes the web for evidence about each person, summarizes it into outreach intelligence via Claude, and upgrades low-quality contact fields.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
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
