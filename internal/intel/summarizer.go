// Package intel turns scraped page content into structured outreach
// intelligence via a single LLM extraction call.
package intel

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/llm"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/pkg/anthropic"
)

const (
	contentSeparator = "\n\n---\n\n"
	// TruncationMarker is appended whenever combined content exceeds the
	// context budget. Truncation is always visible, never silent.
	TruncationMarker = "\n... [truncated]"

	// ParseFailurePlaceholder fills every category of a degraded result.
	ParseFailurePlaceholder = "extraction failed: unparseable model output"

	defaultContextBudget = 90000
	defaultMaxTokens     = 2048
	rawResponseCap       = 500
)

const systemPrompt = `You are a sales research analyst. Given raw web content about a person, extract outreach intelligence as JSON with this exact shape:
{
  "categories": {
    "current_activity": ["..."],
    "recent_developments": ["..."],
    "strategic_priorities": ["..."],
    "outreach_angles": ["..."],
    "quoted_statements": ["..."]
  },
  "summary": "two or three sentences",
  "quality": "high" | "medium" | "low"
}
Each category is a list of short, specific strings. Use "none found" for categories the content does not support. Grade quality by how much of the content is actually about this person.`

// Summarizer produces an Intelligence object for a person from scraped
// content. It never returns an error; failures degrade into an
// error-flagged Intelligence so orchestration can record and move on.
type Summarizer struct {
	llmClient     anthropic.Client
	model         string
	contextBudget int
	maxTokens     int64
}

// NewSummarizer creates a summarizer with the configured budget.
func NewSummarizer(llmClient anthropic.Client, aiCfg config.AnthropicConfig, cfg config.IntelConfig) *Summarizer {
	budget := cfg.ContextBudget
	if budget <= 0 {
		budget = defaultContextBudget
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Summarizer{
		llmClient:     llmClient,
		model:         aiCfg.Model,
		contextBudget: budget,
		maxTokens:     maxTokens,
	}
}

// Summarize extracts intelligence about personName from the given
// content blocks. Every returned Intelligence carries all category
// keys; a failed extraction carries Error and quality "low".
func (s *Summarizer) Summarize(ctx context.Context, personName string, contents []string) *model.Intelligence {
	combined, truncated := s.combine(contents)
	if truncated {
		zap.L().Debug("intel: content truncated to context budget",
			zap.String("person", personName),
			zap.Int("budget", s.contextBudget),
		)
	}

	resp, err := s.llmClient.Complete(ctx, anthropic.CompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    systemPrompt,
		Prompt:    fmt.Sprintf("Person: %s\n\nContent:\n%s", personName, combined),
		JSONMode:  true,
	})
	if err != nil {
		zap.L().Warn("intel: extraction call failed",
			zap.String("person", personName),
			zap.Error(err),
		)
		return degraded(fmt.Sprintf("extraction call failed: %v", err), "")
	}
	resp.Usage.Log(s.model, "intel")

	var intel model.Intelligence
	if err := llm.Decode(resp.Text, &intel); err != nil {
		zap.L().Warn("intel: unparseable extraction response",
			zap.String("person", personName),
			zap.Error(err),
		)
		return degraded("unparseable model output", resp.Text)
	}

	intel.FillMissingCategories()
	if intel.Quality == "" {
		intel.Quality = model.QualityMedium
	}
	return &intel
}

// combine joins content blocks and enforces the context budget. The
// returned string is never longer than budget + marker length, and the
// cut never splits a multi-byte rune.
func (s *Summarizer) combine(contents []string) (string, bool) {
	combined := strings.Join(contents, contentSeparator)
	if len(combined) <= s.contextBudget {
		return combined, false
	}
	return llm.TruncateRunes(combined, s.contextBudget) + TruncationMarker, true
}

func degraded(reason, raw string) *model.Intelligence {
	intel := &model.Intelligence{
		Categories: make(map[string][]string, len(model.AllCategories())),
		Quality:    model.QualityLow,
		Error:      reason,
	}
	for _, cat := range model.AllCategories() {
		intel.Categories[cat] = []string{ParseFailurePlaceholder}
	}
	if raw != "" {
		intel.RawResponse = llm.TruncateRunes(raw, rawResponseCap)
	}
	return intel
}
