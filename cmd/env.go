package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/malhajar17/jim-and-dwight/internal/enrich"
	"github.com/malhajar17/jim-and-dwight/internal/intel"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/quality"
	"github.com/malhajar17/jim-and-dwight/internal/resilience"
	"github.com/malhajar17/jim-and-dwight/internal/sources"
	"github.com/malhajar17/jim-and-dwight/internal/store"
	"github.com/malhajar17/jim-and-dwight/internal/strategy"
	"github.com/malhajar17/jim-and-dwight/internal/upgrade"
	"github.com/malhajar17/jim-and-dwight/internal/validate"
	anthropicpkg "github.com/malhajar17/jim-and-dwight/pkg/anthropic"
	"github.com/malhajar17/jim-and-dwight/pkg/firecrawl"
	"github.com/malhajar17/jim-and-dwight/pkg/jina"
)

// leadValidator, leadEnricher, and leadUpgrader are the three batch
// entry points the commands and HTTP server drive.
type leadValidator interface {
	Validate(ctx context.Context, leads []model.Lead) []model.Lead
}

type leadEnricher interface {
	Enrich(ctx context.Context, leads []model.Lead) []model.Lead
}

type leadUpgrader interface {
	Upgrade(ctx context.Context, leads []model.Lead) []model.Lead
}

// pipelineEnv holds the store and the three orchestrators needed by the
// validate/enrich/upgrade/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Validator leadValidator
	Enricher  leadEnricher
	Upgrader  leadUpgrader
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline opens the store, constructs the provider clients, and
// wires the orchestrators. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	jinaOpts := []jina.Option{}
	if cfg.Jina.BaseURL != "" {
		jinaOpts = append(jinaOpts, jina.WithBaseURL(cfg.Jina.BaseURL))
	}
	if cfg.Jina.SearchBaseURL != "" {
		jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
	}
	jinaClient := jina.NewClient(cfg.Jina.Key, jinaOpts...)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	var fallback firecrawl.Client
	if cfg.Firecrawl.Key != "" {
		fcOpts := []firecrawl.Option{}
		if cfg.Firecrawl.BaseURL != "" {
			fcOpts = append(fcOpts, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		}
		fallback = firecrawl.NewClient(cfg.Firecrawl.Key, fcOpts...)
	}

	strategies, err := strategy.Load(cfg.Strategy.Path)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	collector := sources.NewCollector(jinaClient, fallback,
		resilience.NewPacer(time.Duration(cfg.Sources.FetchDelaySecs)*time.Second),
		cfg.Sources)
	summarizer := intel.NewSummarizer(anthropicClient, cfg.Anthropic, cfg.Intel)

	return &pipelineEnv{
		Store: st,
		Validator: validate.New(anthropicClient,
			resilience.NewPacer(time.Duration(cfg.Validate.BatchDelaySecs)*time.Second),
			cfg.Anthropic, cfg.Validate),
		Enricher: enrich.New(collector, summarizer, strategies,
			resilience.NewPacer(time.Duration(cfg.Enrich.LeadDelaySecs)*time.Second),
			cfg.Enrich),
		Upgrader: upgrade.New(jinaClient, anthropicClient, quality.DefaultRules(),
			resilience.NewPacer(time.Duration(cfg.Upgrade.LeadDelaySecs)*time.Second),
			cfg.Anthropic, cfg.Upgrade),
	}, nil
}
