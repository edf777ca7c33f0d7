package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/dedupe"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/store"
)

var (
	importInput string
	listState   string
	listReady   bool
	listLimit   int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Import and inspect stored leads",
}

var leadsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a JSON file, deduplicating on the way in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		leads, err := readLeadsFile(importInput)
		if err != nil {
			return err
		}
		unique := dedupe.Leads(leads)

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if err := st.SaveLeads(ctx, unique); err != nil {
			return err
		}
		zap.L().Info("leads imported",
			zap.Int("read", len(leads)),
			zap.Int("saved", len(unique)),
			zap.Int("duplicates", len(leads)-len(unique)),
		)
		return nil
	},
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		filter := store.LeadFilter{
			State: model.EnrichState(listState),
			Limit: listLimit,
		}
		if listReady {
			ready := true
			filter.ReadyForOutreach = &ready
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	},
}

// readLeadsFile parses a JSON array of leads from disk.
func readLeadsFile(path string) ([]model.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read leads file %s", path)
	}
	var leads []model.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, eris.Wrapf(err, "parse leads file %s", path)
	}
	return leads, nil
}

func init() {
	leadsImportCmd.Flags().StringVar(&importInput, "input", "", "path to a JSON array of leads (required)")
	_ = leadsImportCmd.MarkFlagRequired("input")
	leadsListCmd.Flags().StringVar(&listState, "state", "", "filter by enrichment state")
	leadsListCmd.Flags().BoolVar(&listReady, "ready", false, "only leads ready for outreach")
	leadsListCmd.Flags().IntVar(&listLimit, "limit", 0, "max leads to return (default 100)")
	leadsCmd.AddCommand(leadsImportCmd, leadsListCmd)
	rootCmd.AddCommand(leadsCmd)
}
