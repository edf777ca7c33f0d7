// Package enrich drives the per-lead enrichment state machine: scrape
// sources, summarize them into intelligence, and record the outcome on
// the lead itself so re-runs skip finished work.
package enrich

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/resilience"
	"github.com/malhajar17/jim-and-dwight/internal/sources"
	"github.com/malhajar17/jim-and-dwight/internal/strategy"
)

// NoContentReason marks leads whose scraping produced nothing usable.
const NoContentReason = "no substantial content"

// enrichedConfidence is the floor a successfully enriched lead's
// confidence is raised to. Scores above it are left alone.
const enrichedConfidence = 0.8

// Collector finds and fetches web evidence for one person.
type Collector interface {
	Collect(ctx context.Context, person string, queries []string) (*sources.Bundle, error)
}

// Summarizer turns scraped content into structured intelligence.
type Summarizer interface {
	Summarize(ctx context.Context, personName string, contents []string) *model.Intelligence
}

// Orchestrator enriches a batch of leads sequentially, one lead at a
// time. Providers are shared rate-limited resources; there is no
// parallel fan-out.
type Orchestrator struct {
	collector  Collector
	summarizer Summarizer
	strategies []strategy.Strategy
	pacer      *resilience.Pacer
	batchCap   int
}

// New creates an orchestrator. batchCap defaults to 10.
func New(collector Collector, summarizer Summarizer, strategies []strategy.Strategy, pacer *resilience.Pacer, cfg config.EnrichConfig) *Orchestrator {
	batchCap := cfg.BatchCap
	if batchCap <= 0 {
		batchCap = 10
	}
	return &Orchestrator{
		collector:  collector,
		summarizer: summarizer,
		strategies: strategies,
		pacer:      pacer,
		batchCap:   batchCap,
	}
}

// Enrich processes up to batchCap leads, highest confidence first, and
// returns the mutated batch. Leads already in a terminal state, done or
// failed, are skipped without any provider call, so a batch can be
// re-submitted safely. A context error stops the batch; leads not yet
// reached keep their prior state and will be picked up on re-submission.
func (o *Orchestrator) Enrich(ctx context.Context, leads []model.Lead) []model.Lead {
	order := byConfidence(leads)
	if len(order) > o.batchCap {
		order = order[:o.batchCap]
	}

	worked := false
	for _, idx := range order {
		lead := &leads[idx]
		if o.skip(lead) {
			continue
		}
		if worked {
			if err := o.pacer.Wait(ctx); err != nil {
				return leads
			}
		}
		worked = true
		if err := o.enrichOne(ctx, lead); err != nil {
			zap.L().Warn("enrich: batch stopped", zap.Error(err))
			return leads
		}
	}
	return leads
}

// skip reports whether the lead is already in a terminal state. Failed
// leads keep their recorded reason and are not retried; clearing the
// failure flags is the caller's decision, not the orchestrator's.
func (o *Orchestrator) skip(lead *model.Lead) bool {
	if lead.State() == model.EnrichStateDone || lead.HasUsableIntelligence() {
		lead.EnrichState = model.EnrichStateDone
		zap.L().Debug("enrich: lead already done, skipping", zap.String("lead", lead.ID))
		return true
	}
	if lead.State() == model.EnrichStateFailed {
		zap.L().Debug("enrich: lead already failed, not retrying", zap.String("lead", lead.ID))
		return true
	}
	return false
}

// enrichOne runs one lead through scrape then summarize. Only a context
// error is returned; provider failures are recorded on the lead.
func (o *Orchestrator) enrichOne(ctx context.Context, lead *model.Lead) error {
	log := zap.L().With(zap.String("lead", lead.ID), zap.String("name", lead.Name))

	// Content from an earlier pass skips the scrape step.
	if len(lead.ScrapedContent) == 0 {
		queries := strategy.ForPersona(o.strategies, lead.Title).Queries(lead.Name, lead.Company)
		bundle, err := o.collector.Collect(ctx, lead.Name, queries)
		if err != nil {
			return err
		}
		lead.Sources = append(lead.Sources, bundle.Sources...)
		if !bundle.HasContent() {
			log.Info("enrich: no usable content, marking failed")
			o.markFailed(lead)
			return ctx.Err()
		}
		lead.ScrapedContent = bundle.Content
		lead.EnrichState = model.EnrichStateScraped
	} else {
		log.Debug("enrich: reusing previously scraped content",
			zap.Int("blocks", len(lead.ScrapedContent)))
	}

	intel := o.summarizer.Summarize(ctx, lead.Name, lead.ScrapedContent)
	lead.Intelligence = intel
	lead.EnrichState = model.EnrichStateDone
	lead.EnrichmentAttempted = true
	lead.Enriched = intel.Error == ""
	lead.EnrichError = intel.Error
	lead.ReadyForOutreach = intel.Error == "" && intel.Quality != model.QualityLow
	now := time.Now().UTC()
	lead.EnrichedAt = &now
	if lead.ReadyForOutreach {
		lead.RaiseConfidence(enrichedConfidence)
	}

	log.Info("enrich: lead done",
		zap.Bool("ready_for_outreach", lead.ReadyForOutreach),
		zap.String("quality", string(intel.Quality)),
	)
	return ctx.Err()
}

func (o *Orchestrator) markFailed(lead *model.Lead) {
	lead.EnrichState = model.EnrichStateFailed
	lead.EnrichmentAttempted = true
	lead.Enriched = false
	lead.EnrichError = NoContentReason
	lead.ReadyForOutreach = false
}

// byConfidence returns lead indexes ordered by descending confidence,
// preserving input order between equal scores.
func byConfidence(leads []model.Lead) []int {
	order := make([]int, len(leads))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return leads[order[a]].ConfidenceScore > leads[order[b]].ConfidenceScore
	})
	return order
}
