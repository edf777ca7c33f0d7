package quality

import (
	"strings"

	"github.com/malhajar17/jim-and-dwight/internal/model"
)

// Field identifies a trackable contact field for upgrade decisions.
type Field string

const (
	FieldEmail    Field = "email"
	FieldLinkedIn Field = "linkedin_url"
	FieldCompany  Field = "company"
	FieldTitle    Field = "title"
	FieldLocation Field = "location"
)

// TrackableFields lists the fields the upgrade pass considers.
func TrackableFields() []Field {
	return []Field{FieldEmail, FieldLinkedIn, FieldCompany, FieldTitle, FieldLocation}
}

// Better decides whether candidate should replace current for the given
// field. The rule is one-directional: a good value is never replaced by
// a merely-different one, but known placeholders are replaced
// aggressively.
func (r Rules) Better(field Field, candidate, current string) bool {
	candidate = strings.TrimSpace(candidate)
	current = strings.TrimSpace(current)

	if candidate == "" || candidate == current {
		return false
	}
	if current == "" {
		return true
	}

	switch field {
	case FieldEmail:
		return r.IsLowQualityEmail(current) && !r.IsLowQualityEmail(candidate)
	case FieldLinkedIn:
		return r.IsLowQualityLinkedIn(current) && !r.IsLowQualityLinkedIn(candidate)
	case FieldCompany:
		return r.IsLowQualityCompany(current) && !r.IsLowQualityCompany(candidate)
	case FieldTitle:
		// A longer title with no substring relationship to the current
		// one is treated as more specific. Heuristic, not semantic.
		lc, lk := strings.ToLower(current), strings.ToLower(candidate)
		if len(candidate) > len(current) && !strings.Contains(lk, lc) && !strings.Contains(lc, lk) {
			return true
		}
		return false
	default:
		return false
	}
}

// FieldValue reads the named field off a lead.
func FieldValue(lead *model.Lead, field Field) string {
	switch field {
	case FieldEmail:
		return lead.Email
	case FieldLinkedIn:
		return lead.LinkedInURL
	case FieldCompany:
		return lead.Company
	case FieldTitle:
		return lead.Title
	case FieldLocation:
		return lead.Location
	}
	return ""
}

// SetFieldValue writes the named field on a lead.
func SetFieldValue(lead *model.Lead, field Field, value string) {
	switch field {
	case FieldEmail:
		lead.Email = value
	case FieldLinkedIn:
		lead.LinkedInURL = value
	case FieldCompany:
		lead.Company = value
	case FieldTitle:
		lead.Title = value
	case FieldLocation:
		lead.Location = value
	}
}

// NeedsUpgrade reports whether any trackable field on the lead fails
// its quality check. Title and location have no placeholder rules, so
// only their absence counts.
func (r Rules) NeedsUpgrade(lead *model.Lead) bool {
	if r.IsLowQualityEmail(lead.Email) {
		return true
	}
	if r.IsLowQualityLinkedIn(lead.LinkedInURL) {
		return true
	}
	if r.IsLowQualityCompany(lead.Company) {
		return true
	}
	return strings.TrimSpace(lead.Title) == "" || strings.TrimSpace(lead.Location) == ""
}
