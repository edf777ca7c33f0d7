// Package quality judges contact-field quality and decides field upgrades.
package quality

import (
	"regexp"
	"strings"
)

// Rules holds the configurable placeholder patterns used by the
// low-quality classifiers.
type Rules struct {
	// PlaceholderEmailDomains are domains that mark an email as
	// synthetic or guessed rather than verified.
	PlaceholderEmailDomains []string
	// RoleEmailPrefixes are role-based local parts (info@, sales@)
	// that never identify an individual.
	RoleEmailPrefixes []string
	// GenericCompanyNames are exact placeholder company values.
	GenericCompanyNames []string
}

// DefaultRules returns the standard placeholder patterns.
func DefaultRules() Rules {
	return Rules{
		PlaceholderEmailDomains: []string{
			"example.com",
			"email.com",
			"test.com",
			"company.com",
			"financialservic.com.fr",
			"domain.com",
			"noemail.com",
		},
		RoleEmailPrefixes: []string{
			"info@",
			"contact@",
			"sales@",
			"support@",
			"admin@",
			"hello@",
			"office@",
			"team@",
			"noreply@",
			"no-reply@",
		},
		GenericCompanyNames: []string{
			"Unknown",
			"N/A",
			"Company",
			"Self-employed",
			"Freelance",
			"Various",
			"Confidential",
		},
	}
}

// linkedInProfileRe matches canonical personal-profile URLs:
// https://[subdomain.]linkedin.com/in/...
var linkedInProfileRe = regexp.MustCompile(`^https?://([a-z0-9-]+\.)?linkedin\.com/in/[^/?#\s]+`)

// IsLowQualityEmail reports whether an email is absent, role-based, or
// on a placeholder domain. Total over any input.
func (r Rules) IsLowQualityEmail(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return true
	}
	for _, prefix := range r.RoleEmailPrefixes {
		if strings.HasPrefix(email, prefix) {
			return true
		}
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	for _, d := range r.PlaceholderEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// IsLowQualityLinkedIn reports whether a URL is absent or is not a
// canonical personal-profile URL. News articles and company pages count
// as low quality even when non-empty.
func (r Rules) IsLowQualityLinkedIn(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return true
	}
	return !linkedInProfileRe.MatchString(strings.ToLower(url))
}

// IsLowQualityCompany reports whether a company name is absent or a
// known generic placeholder. The comparison is case-sensitive: "unknown"
// as an actual company name is left alone.
func (r Rules) IsLowQualityCompany(company string) bool {
	company = strings.TrimSpace(company)
	if company == "" {
		return true
	}
	for _, generic := range r.GenericCompanyNames {
		if company == generic {
			return true
		}
	}
	return false
}
