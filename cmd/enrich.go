package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich stored leads with scraped intelligence",
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

		enriched := env.Enricher.Enrich(ctx, leads)
		if err := env.Store.SaveLeads(ctx, enriched); err != nil {
			return err
		}

		var done, failed, ready int
		for i := range enriched {
			switch enriched[i].State() {
			case model.EnrichStateDone:
				done++
			case model.EnrichStateFailed:
				failed++
			}
			if enriched[i].ReadyForOutreach {
				ready++
			}
		}
		zap.L().Info("enrichment complete",
			zap.Int("leads", len(enriched)),
			zap.Int("done", done),
			zap.Int("failed", failed),
			zap.Int("ready_for_outreach", ready),
		)
		return nil
	},
}

// allLeadsFilter lists every stored lead; the orchestrators apply their
// own skip rules.
func allLeadsFilter() store.LeadFilter {
	return store.LeadFilter{Limit: 1000}
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
