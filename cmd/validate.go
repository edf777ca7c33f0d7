package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/dedupe"
	"github.com/malhajar17/jim-and-dwight/internal/model"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Deduplicate and validate leads via Claude",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var leads []model.Lead
		if validateInput != "" {
			leads, err = readLeadsFile(validateInput)
		} else {
			leads, err = env.Store.ListLeads(ctx, allLeadsFilter())
		}
		if err != nil {
			return err
		}

		unique := dedupe.Leads(leads)
		validated := env.Validator.Validate(ctx, unique)
		if err := env.Store.SaveLeads(ctx, validated); err != nil {
			return err
		}

		var kept int
		for i := range validated {
			if validated[i].IsValidPerson != nil && *validated[i].IsValidPerson {
				kept++
			}
		}
		zap.L().Info("validation complete",
			zap.Int("input", len(leads)),
			zap.Int("deduplicated", len(unique)),
			zap.Int("valid", kept),
		)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "JSON leads file (default: stored leads)")
	rootCmd.AddCommand(validateCmd)
}
