// Package validate confirms that candidate leads represent genuine
// individuals rather than companies or placeholder rows.
package validate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/llm"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/resilience"
	"github.com/malhajar17/jim-and-dwight/pkg/anthropic"
)

// DefaultKeptReason marks leads kept because their validation batch
// failed. Validation failure never discards leads.
const DefaultKeptReason = "validation failed, kept by default"

const systemPrompt = `You classify contact records. For each record decide whether it names a genuine individual person, as opposed to a company, department, team, or generic placeholder ("Hiring Manager", "Info Desk", "Acme Support").`

const userPromptHeader = `For each numbered record below, answer with a JSON array of objects:
[{"index": <n>, "is_valid_person": <bool>, "reason": "<short reason>"}]

Records:
`

// Validator runs batched person-validation against the LLM provider.
type Validator struct {
	llmClient anthropic.Client
	pacer     *resilience.Pacer
	model     string
	batchSize int
}

// New creates a validator. batchSize defaults to 10.
func New(llmClient anthropic.Client, pacer *resilience.Pacer, aiCfg config.AnthropicConfig, cfg config.ValidateConfig) *Validator {
	size := cfg.BatchSize
	if size <= 0 {
		size = 10
	}
	return &Validator{
		llmClient: llmClient,
		pacer:     pacer,
		model:     aiCfg.Model,
		batchSize: size,
	}
}

type verdict struct {
	Index         int    `json:"index"`
	IsValidPerson bool   `json:"is_valid_person"`
	Reason        string `json:"reason"`
}

// Validate mutates each lead with IsValidPerson and ValidationReason
// and returns the batch. Leads in a failed batch default to valid.
func (v *Validator) Validate(ctx context.Context, leads []model.Lead) []model.Lead {
	var usage anthropic.TokenUsage
	for start := 0; start < len(leads); start += v.batchSize {
		if start > 0 {
			if err := v.pacer.Wait(ctx); err != nil {
				// Remaining batches keep their leads untouched.
				usage.Log(v.model, "validate")
				return leads
			}
		}
		end := min(start+v.batchSize, len(leads))
		v.validateBatch(ctx, leads[start:end], &usage)
	}
	if len(leads) > 0 {
		usage.Log(v.model, "validate")
	}
	return leads
}

func (v *Validator) validateBatch(ctx context.Context, batch []model.Lead, usage *anthropic.TokenUsage) {
	resp, err := v.llmClient.Complete(ctx, anthropic.CompletionRequest{
		Model:     v.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Prompt:    buildPrompt(batch),
		JSONMode:  true,
	})
	if err != nil {
		zap.L().Warn("validate: batch call failed, keeping all leads",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		keepAll(batch)
		return
	}
	usage.Add(resp.Usage)

	var verdicts []verdict
	if err := llm.Decode(resp.Text, &verdicts); err != nil {
		zap.L().Warn("validate: unparseable batch response, keeping all leads",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		keepAll(batch)
		return
	}

	// Verdicts the model omitted also default to kept.
	keepAll(batch)
	for _, vd := range verdicts {
		if vd.Index < 0 || vd.Index >= len(batch) {
			continue
		}
		valid := vd.IsValidPerson
		batch[vd.Index].IsValidPerson = &valid
		batch[vd.Index].ValidationReason = vd.Reason
	}
}

func buildPrompt(batch []model.Lead) string {
	var b strings.Builder
	b.WriteString(userPromptHeader)
	for i, lead := range batch {
		fmt.Fprintf(&b, "%d. name=%q title=%q company=%q\n", i, lead.Name, lead.Title, lead.Company)
	}
	return b.String()
}

func keepAll(batch []model.Lead) {
	for i := range batch {
		valid := true
		batch[i].IsValidPerson = &valid
		batch[i].ValidationReason = DefaultKeptReason
	}
}
