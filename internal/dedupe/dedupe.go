// Package dedupe collapses candidate lead lists to unique leads.
package dedupe

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/malhajar17/jim-and-dwight/internal/model"
)

// Sentinels keep leads with a missing key component from colliding with
// leads whose component happens to normalize to the empty string.
const (
	noEmail    = "\x00no-email"
	noLinkedIn = "\x00no-linkedin"
)

// accentFolder strips combining marks after NFKD decomposition, so
// "José" and "Jose" produce the same identity key.
var accentFolder = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Leads removes duplicate leads by composite (email, linkedin) identity
// key. The first occurrence wins and surviving leads keep their
// original relative order.
func Leads(leads []model.Lead) []model.Lead {
	seen := make(map[string]struct{}, len(leads))
	out := make([]model.Lead, 0, len(leads))

	for _, lead := range leads {
		key := identityKey(lead)
		if _, dup := seen[key]; dup {
			zap.L().Debug("dedupe: dropping duplicate lead",
				zap.String("name", lead.Name),
				zap.String("email", lead.Email),
			)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, lead)
	}

	if removed := len(leads) - len(out); removed > 0 {
		zap.L().Info("dedupe: removed duplicate leads",
			zap.Int("original", len(leads)),
			zap.Int("unique", len(out)),
		)
	}
	return out
}

// identityKey builds the composite key. Both components missing yields
// a key of both sentinels, so two fully-anonymous leads still collapse
// only when they genuinely match.
func identityKey(lead model.Lead) string {
	email := normalizeComponent(lead.Email)
	if email == "" {
		email = noEmail
	}
	linkedin := normalizeComponent(lead.LinkedInURL)
	if linkedin == "" {
		linkedin = noLinkedIn
	}
	return email + "|" + linkedin
}

func normalizeComponent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return strings.TrimSuffix(folded, "/")
}
