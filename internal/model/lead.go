package model

import "time"

// EnrichState tracks how far a lead has progressed through enrichment.
type EnrichState string

const (
	EnrichStateNotStarted EnrichState = "not_started"
	EnrichStateScraped    EnrichState = "scraped"
	EnrichStateSummarized EnrichState = "summarized"
	EnrichStateDone       EnrichState = "done"
	EnrichStateFailed     EnrichState = "failed"
)

// SourceKind distinguishes reference-only sources from scraped ones.
type SourceKind string

const (
	// SourceKindReference marks sources kept for attribution only
	// (profile pages on networks that block scraping).
	SourceKindReference SourceKind = "reference"
	// SourceKindScraped marks sources whose content was fetched.
	SourceKindScraped SourceKind = "scraped"
)

// Lead is a candidate contact record moving through the pipeline.
// Sources are append-only evidence; state flags are written on the lead
// itself so a batch can be re-submitted safely.
type Lead struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Email           string  `json:"email,omitempty"`
	LinkedInURL     string  `json:"linkedin_url,omitempty"`
	Location        string  `json:"location,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`

	// Validation state (set by the validator, never cleared by the core).
	IsValidPerson    *bool  `json:"is_valid_person,omitempty"`
	ValidationReason string `json:"validation_reason,omitempty"`

	// Enrichment state.
	EnrichState         EnrichState `json:"enrich_state,omitempty"`
	Enriched            bool        `json:"enriched"`
	EnrichmentAttempted bool        `json:"enrichment_attempted"`
	EnrichError         string      `json:"enrich_error,omitempty"`
	ReadyForOutreach    bool        `json:"ready_for_outreach"`
	EnrichedAt          *time.Time  `json:"enriched_at,omitempty"`

	// Contact-upgrade state.
	ContactUpgraded  bool     `json:"contact_upgraded"`
	UpgradeAttempted bool     `json:"upgrade_attempted"`
	UpgradeNotes     []string `json:"upgrade_notes,omitempty"`

	Sources        []Source      `json:"sources,omitempty"`
	ScrapedContent []string      `json:"scraped_content,omitempty"`
	Intelligence   *Intelligence `json:"intelligence,omitempty"`
}

// Source is a URL examined while enriching a lead.
type Source struct {
	URL                 string     `json:"url"`
	Title               string     `json:"title"`
	ScrapedSuccessfully bool       `json:"scraped_successfully"`
	Kind                SourceKind `json:"kind"`
}

// State returns the lead's enrichment state, deriving it from legacy
// flags when the explicit state field is absent.
func (l *Lead) State() EnrichState {
	if l.EnrichState != "" {
		return l.EnrichState
	}
	switch {
	case l.Enriched && l.EnrichError == "":
		return EnrichStateDone
	case l.EnrichmentAttempted:
		return EnrichStateFailed
	case len(l.ScrapedContent) > 0:
		return EnrichStateScraped
	default:
		return EnrichStateNotStarted
	}
}

// HasUsableIntelligence reports whether the lead carries a successful
// intelligence extraction. Such leads are skipped on re-runs.
func (l *Lead) HasUsableIntelligence() bool {
	return l.Intelligence != nil && l.Intelligence.Error == ""
}

// RaiseConfidence bumps the confidence score, never lowering it.
func (l *Lead) RaiseConfidence(score float64) {
	if score > l.ConfidenceScore {
		l.ConfidenceScore = score
	}
}
