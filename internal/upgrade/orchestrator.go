// Package upgrade improves contact fields on already-stored leads:
// search for an authoritative profile, extract structured contact data
// from it, and overwrite only fields the quality rules allow.
package upgrade

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/llm"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/quality"
	"github.com/malhajar17/jim-and-dwight/internal/resilience"
	"github.com/malhajar17/jim-and-dwight/pkg/anthropic"
	"github.com/malhajar17/jim-and-dwight/pkg/jina"
)

const extractSystemPrompt = `You extract contact details about one specific person from web content. Respond with a JSON object:
{"email": "", "linkedin_url": "", "company": "", "title": "", "location": ""}
Fill only fields the content explicitly supports for this exact person; leave the rest as empty strings. Never guess an email address.`

// extraction is the model's structured answer for one profile page.
type extraction struct {
	Email       string `json:"email"`
	LinkedInURL string `json:"linkedin_url"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	Location    string `json:"location"`
}

func (e extraction) field(f quality.Field) string {
	switch f {
	case quality.FieldEmail:
		return e.Email
	case quality.FieldLinkedIn:
		return e.LinkedInURL
	case quality.FieldCompany:
		return e.Company
	case quality.FieldTitle:
		return e.Title
	case quality.FieldLocation:
		return e.Location
	}
	return ""
}

// Orchestrator runs the contact-upgrade pass over a batch of leads,
// sequentially, one lead at a time.
type Orchestrator struct {
	search      jina.Client
	llmClient   anthropic.Client
	rules       quality.Rules
	pacer       *resilience.Pacer
	model       string
	searchLimit int
}

// New creates an orchestrator. searchLimit defaults to 5.
func New(search jina.Client, llmClient anthropic.Client, rules quality.Rules, pacer *resilience.Pacer, aiCfg config.AnthropicConfig, cfg config.UpgradeConfig) *Orchestrator {
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = 5
	}
	return &Orchestrator{
		search:      search,
		llmClient:   llmClient,
		rules:       rules,
		pacer:       pacer,
		model:       aiCfg.Model,
		searchLimit: limit,
	}
}

// Upgrade processes each lead needing a contact upgrade and returns the
// mutated batch. Leads already upgraded or already attempted are
// skipped. Failures leave the lead untouched apart from the attempted
// flag; nothing is ever destructively modified.
func (o *Orchestrator) Upgrade(ctx context.Context, leads []model.Lead) []model.Lead {
	worked := false
	for i := range leads {
		lead := &leads[i]
		if lead.ContactUpgraded || lead.UpgradeAttempted {
			continue
		}
		if !o.rules.NeedsUpgrade(lead) {
			continue
		}
		if worked {
			if err := o.pacer.Wait(ctx); err != nil {
				return leads
			}
		}
		worked = true
		if err := o.upgradeOne(ctx, lead); err != nil {
			zap.L().Warn("upgrade: batch stopped", zap.Error(err))
			return leads
		}
	}
	return leads
}

func (o *Orchestrator) upgradeOne(ctx context.Context, lead *model.Lead) error {
	log := zap.L().With(zap.String("lead", lead.ID), zap.String("name", lead.Name))
	lead.UpgradeAttempted = true

	query := fmt.Sprintf("%s %s LinkedIn", lead.Name, lead.Company)
	resp, err := o.search.Search(ctx, query, o.searchLimit)
	if err != nil {
		log.Warn("upgrade: search failed, leaving lead untouched", zap.Error(err))
		return ctx.Err()
	}
	if len(resp.Data) == 0 {
		log.Info("upgrade: no profile candidates found")
		return ctx.Err()
	}

	candidates := o.candidates(resp.Data)

	// A personal profile URL found by search is itself a candidate value,
	// even when the page cannot be scraped.
	if candidates.profileURL != "" {
		lead.Sources = append(lead.Sources, model.Source{
			URL:   candidates.profileURL,
			Title: candidates.profileTitle,
			Kind:  model.SourceKindReference,
		})
	}

	ext := o.extractFromPage(ctx, log, lead, candidates.fetchable)
	if ext.LinkedInURL == "" {
		ext.LinkedInURL = candidates.profileURL
	}

	notes := o.apply(lead, ext)
	if len(notes) == 0 {
		log.Info("upgrade: no field cleared the quality bar")
		return ctx.Err()
	}

	lead.ContactUpgraded = true
	lead.UpgradeNotes = append(lead.UpgradeNotes, notes...)
	log.Info("upgrade: lead upgraded", zap.Strings("changes", notes))
	return ctx.Err()
}

type candidateSet struct {
	profileURL   string
	profileTitle string
	fetchable    *jina.SearchResult
}

// candidates splits search results into the best personal-profile URL
// and the first result worth fetching content from. Profile hosts block
// scraping, so they are never the fetch candidate.
func (o *Orchestrator) candidates(results []jina.SearchResult) candidateSet {
	var set candidateSet
	for i := range results {
		r := results[i]
		if !o.rules.IsLowQualityLinkedIn(r.URL) {
			if set.profileURL == "" {
				set.profileURL = r.URL
				set.profileTitle = r.Title
			}
			continue
		}
		if set.fetchable == nil && !isProfileHost(r.URL) {
			set.fetchable = &results[i]
		}
	}
	return set
}

func isProfileHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}

// extractFromPage fetches the candidate page and asks the model for
// structured contact fields. Every failure degrades to an empty
// extraction; this pass never aborts a lead over one bad page.
func (o *Orchestrator) extractFromPage(ctx context.Context, log *zap.Logger, lead *model.Lead, cand *jina.SearchResult) extraction {
	var ext extraction
	if cand == nil {
		return ext
	}

	page, err := o.search.Read(ctx, cand.URL)
	if err != nil {
		log.Warn("upgrade: fetch failed, skipping extraction",
			zap.String("url", cand.URL), zap.Error(err))
		return ext
	}
	lead.Sources = append(lead.Sources, model.Source{
		URL:                 cand.URL,
		Title:               cand.Title,
		ScrapedSuccessfully: true,
		Kind:                model.SourceKindScraped,
	})

	resp, err := o.llmClient.Complete(ctx, anthropic.CompletionRequest{
		Model:     o.model,
		MaxTokens: 512,
		System:    extractSystemPrompt,
		Prompt:    fmt.Sprintf("Person: %s (%s, %s)\n\nContent:\n%s", lead.Name, lead.Title, lead.Company, page.Data.Content),
		JSONMode:  true,
	})
	if err != nil {
		log.Warn("upgrade: extraction call failed", zap.Error(err))
		return ext
	}
	resp.Usage.Log(o.model, "upgrade")

	if err := llm.Decode(resp.Text, &ext); err != nil {
		log.Warn("upgrade: unparseable extraction response", zap.Error(err))
		return extraction{}
	}
	return ext
}

// apply overwrites each trackable field the rules allow and returns the
// audit diff, one entry per changed field.
func (o *Orchestrator) apply(lead *model.Lead, ext extraction) []string {
	var notes []string
	for _, f := range quality.TrackableFields() {
		candidate := ext.field(f)
		current := quality.FieldValue(lead, f)
		if !o.rules.Better(f, candidate, current) {
			continue
		}
		quality.SetFieldValue(lead, f, candidate)
		if current == "" {
			current = "(none)"
		}
		notes = append(notes, fmt.Sprintf("%s: %s → %s", f, current, candidate))
	}
	return notes
}
