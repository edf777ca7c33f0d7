package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/resilience"
	"github.com/malhajar17/jim-and-dwight/internal/sources"
	"github.com/malhajar17/jim-and-dwight/internal/strategy"
)

func newOrchestrator(c Collector, s Summarizer, cfg config.EnrichConfig) *Orchestrator {
	return New(c, s, []strategy.Strategy{strategy.Default()}, resilience.NewPacer(0), cfg)
}

func scrapedBundle(contents ...string) *sources.Bundle {
	b := &sources.Bundle{Content: contents}
	for range contents {
		b.Sources = append(b.Sources, model.Source{
			URL:                 "https://example.com/p",
			ScrapedSuccessfully: true,
			Kind:                model.SourceKindScraped,
		})
	}
	return b
}

func TestEnrich_HappyPath(t *testing.T) {
	collector := &mockCollector{}
	collector.On("Collect", mock.Anything, "Jane Doe", mock.MatchedBy(func(queries []string) bool {
		return len(queries) > 0 && queries[0] == "Jane Doe Acme"
	})).Return(scrapedBundle("jane content"), nil)

	summarizer := &mockSummarizer{}
	summarizer.On("Summarize", mock.Anything, "Jane Doe", []string{"jane content"}).
		Return(goodIntel())

	leads := []model.Lead{{ID: "1", Name: "Jane Doe", Company: "Acme", ConfidenceScore: 0.5}}
	out := newOrchestrator(collector, summarizer, config.EnrichConfig{}).
		Enrich(context.Background(), leads)

	lead := out[0]
	assert.Equal(t, model.EnrichStateDone, lead.State())
	assert.True(t, lead.Enriched)
	assert.True(t, lead.ReadyForOutreach)
	assert.Empty(t, lead.EnrichError)
	require.NotNil(t, lead.EnrichedAt)
	require.NotNil(t, lead.Intelligence)
	assert.Len(t, lead.Sources, 1)
	assert.Equal(t, []string{"jane content"}, lead.ScrapedContent)
	// Successful enrichment raises confidence, never lowers it.
	assert.Equal(t, enrichedConfidence, lead.ConfidenceScore)
}

func TestEnrich_DoneLeadMakesNoProviderCalls(t *testing.T) {
	collector := &mockCollector{}
	summarizer := &mockSummarizer{}

	done := model.Lead{
		ID:           "1",
		Name:         "Jane Doe",
		EnrichState:  model.EnrichStateDone,
		Enriched:     true,
		Intelligence: goodIntel(),
	}
	o := newOrchestrator(collector, summarizer, config.EnrichConfig{})

	out := o.Enrich(context.Background(), []model.Lead{done})
	out = o.Enrich(context.Background(), out)

	assert.Equal(t, done, out[0])
	collector.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything, mock.Anything)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrich_FailedLeadNotRetried(t *testing.T) {
	collector := &mockCollector{}
	summarizer := &mockSummarizer{}

	failed := model.Lead{
		ID:                  "1",
		Name:                "Jane Doe",
		EnrichState:         model.EnrichStateFailed,
		EnrichmentAttempted: true,
		EnrichError:         NoContentReason,
		Sources: []model.Source{
			{URL: "https://linkedin.com/in/janedoe", Kind: model.SourceKindReference},
		},
	}
	out := newOrchestrator(collector, summarizer, config.EnrichConfig{}).
		Enrich(context.Background(), []model.Lead{failed})

	// Re-submission leaves the failed lead untouched: no new provider
	// calls and no duplicated source rows.
	assert.Equal(t, failed, out[0])
	assert.Len(t, out[0].Sources, 1)
	collector.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything, mock.Anything)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrich_ReusesScrapedContent(t *testing.T) {
	collector := &mockCollector{}
	summarizer := &mockSummarizer{}
	summarizer.On("Summarize", mock.Anything, "Jane Doe", []string{"earlier pass content"}).
		Return(goodIntel())

	leads := []model.Lead{{
		ID:             "1",
		Name:           "Jane Doe",
		ScrapedContent: []string{"earlier pass content"},
	}}
	out := newOrchestrator(collector, summarizer, config.EnrichConfig{}).
		Enrich(context.Background(), leads)

	assert.True(t, out[0].Enriched)
	collector.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrich_NoContentMarksFailed(t *testing.T) {
	collector := &mockCollector{}
	collector.On("Collect", mock.Anything, mock.Anything, mock.Anything).
		Return(&sources.Bundle{Sources: []model.Source{{URL: "https://linkedin.com/in/x", Kind: model.SourceKindReference}}}, nil)
	summarizer := &mockSummarizer{}

	leads := []model.Lead{{ID: "1", Name: "Jane Doe"}}
	out := newOrchestrator(collector, summarizer, config.EnrichConfig{}).
		Enrich(context.Background(), leads)

	lead := out[0]
	assert.Equal(t, model.EnrichStateFailed, lead.State())
	assert.False(t, lead.Enriched)
	assert.True(t, lead.EnrichmentAttempted)
	assert.Equal(t, NoContentReason, lead.EnrichError)
	assert.False(t, lead.ReadyForOutreach)
	// The reference source is still recorded as evidence.
	assert.Len(t, lead.Sources, 1)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrich_LowQualityIntelNotReadyForOutreach(t *testing.T) {
	collector := &mockCollector{}
	collector.On("Collect", mock.Anything, mock.Anything, mock.Anything).
		Return(scrapedBundle("thin content"), nil)
	summarizer := &mockSummarizer{}
	summarizer.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return(lowIntel("unparseable model output"))

	leads := []model.Lead{{ID: "1", Name: "Jane Doe", ConfidenceScore: 0.4}}
	out := newOrchestrator(collector, summarizer, config.EnrichConfig{}).
		Enrich(context.Background(), leads)

	lead := out[0]
	assert.Equal(t, model.EnrichStateDone, lead.State())
	assert.False(t, lead.Enriched)
	assert.False(t, lead.ReadyForOutreach)
	assert.Equal(t, "unparseable model output", lead.EnrichError)
	assert.Equal(t, 0.4, lead.ConfidenceScore)
}

func TestEnrich_BatchCapTakesTopByConfidence(t *testing.T) {
	collector := &mockCollector{}
	collector.On("Collect", mock.Anything, "High", mock.Anything).
		Return(scrapedBundle("c"), nil)
	collector.On("Collect", mock.Anything, "Mid", mock.Anything).
		Return(scrapedBundle("c"), nil)
	summarizer := &mockSummarizer{}
	summarizer.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return(goodIntel())

	leads := []model.Lead{
		{ID: "low", Name: "Low", ConfidenceScore: 0.1},
		{ID: "high", Name: "High", ConfidenceScore: 0.9},
		{ID: "mid", Name: "Mid", ConfidenceScore: 0.5},
	}
	out := newOrchestrator(collector, summarizer, config.EnrichConfig{BatchCap: 2}).
		Enrich(context.Background(), leads)

	assert.True(t, out[1].Enriched)
	assert.True(t, out[2].Enriched)
	assert.False(t, out[0].EnrichmentAttempted)
	collector.AssertNotCalled(t, "Collect", mock.Anything, "Low", mock.Anything)
}

func TestEnrich_StableOrderBetweenEqualScores(t *testing.T) {
	leads := []model.Lead{
		{ID: "a", ConfidenceScore: 0.5},
		{ID: "b", ConfidenceScore: 0.5},
		{ID: "c", ConfidenceScore: 0.7},
	}
	order := byConfidence(leads)
	assert.Equal(t, []int{2, 0, 1}, order)
}
