package sources

import (
	"net/url"
	"strings"

	"github.com/malhajar17/jim-and-dwight/pkg/jina"
)

// referenceDomains host profile pages that block scraping. They are
// kept as attribution-only sources, never fetched.
var referenceDomains = []string{
	"linkedin.com",
	"xing.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
}

// partition splits search results into reference-only sources and
// scrapeable candidates, dropping auth/login/signup pages entirely.
func partition(results []jina.SearchResult, matcher *PathMatcher) (reference, scrapeable []jina.SearchResult) {
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if isReferenceDomain(r.URL) {
			reference = append(reference, r)
			continue
		}
		if matcher.IsExcluded(r.URL) {
			continue
		}
		scrapeable = append(scrapeable, r)
	}
	return reference, scrapeable
}

func isReferenceDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range referenceDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
