package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade low-quality contact fields on stored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(ctx, allLeadsFilter())
		if err != nil {
			return err
		}

		upgraded := env.Upgrader.Upgrade(ctx, leads)
		if err := env.Store.SaveLeads(ctx, upgraded); err != nil {
			return err
		}

		var changed int
		for i := range upgraded {
			if upgraded[i].ContactUpgraded {
				changed++
			}
		}
		zap.L().Info("contact upgrade complete",
			zap.Int("leads", len(upgraded)),
			zap.Int("upgraded", changed),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
}
