package model

// IntelligenceQuality grades an extraction result.
type IntelligenceQuality string

const (
	QualityHigh   IntelligenceQuality = "high"
	QualityMedium IntelligenceQuality = "medium"
	QualityLow    IntelligenceQuality = "low"
)

// Category names for intelligence insights. Every Intelligence object
// carries all of them; consumers never null-check per category.
const (
	CategoryCurrentActivity     = "current_activity"
	CategoryRecentDevelopments  = "recent_developments"
	CategoryStrategicPriorities = "strategic_priorities"
	CategoryOutreachAngles      = "outreach_angles"
	CategoryQuotedStatements    = "quoted_statements"
)

// AllCategories returns the fixed insight categories in display order.
func AllCategories() []string {
	return []string{
		CategoryCurrentActivity,
		CategoryRecentDevelopments,
		CategoryStrategicPriorities,
		CategoryOutreachAngles,
		CategoryQuotedStatements,
	}
}

// Intelligence is the structured output of the summarizer.
type Intelligence struct {
	Categories map[string][]string `json:"categories"`
	Summary    string              `json:"summary"`
	Quality    IntelligenceQuality `json:"quality"`
	Error      string              `json:"error,omitempty"`
	// RawResponse holds a truncated copy of the model output when
	// parsing failed, for diagnosis.
	RawResponse string `json:"raw_response,omitempty"`
}

// CategoryPlaceholder is the explicit marker used when the model found
// nothing for a category.
const CategoryPlaceholder = "none found"

// FillMissingCategories back-fills absent or empty category keys so the
// output contract of "every key present" always holds.
func (i *Intelligence) FillMissingCategories() {
	if i.Categories == nil {
		i.Categories = make(map[string][]string, len(AllCategories()))
	}
	for _, cat := range AllCategories() {
		if len(i.Categories[cat]) == 0 {
			i.Categories[cat] = []string{CategoryPlaceholder}
		}
	}
}
