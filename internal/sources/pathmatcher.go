package sources

import (
	"net/url"
	"path"
	"strings"
)

// defaultExcludePatterns filter out auth and account pages that never
// carry person content.
var defaultExcludePatterns = []string{
	"/login*",
	"/signin*",
	"/sign-in*",
	"/signup*",
	"/sign-up*",
	"/register*",
	"/auth/*",
	"/account/*",
}

// PathMatcher filters URLs by glob-style path patterns.
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a matcher from glob patterns, falling back to
// the default auth/signup exclusions when none are given.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultExcludePatterns
	}
	return &PathMatcher{patterns: patterns}
}

// IsExcluded reports whether the URL's path matches an exclude pattern.
// Unparseable URLs are excluded.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	p := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(strings.ToLower(pattern), p) {
			return true
		}
	}
	return false
}

// matchSegmented globs like path.Match but lets "/auth/*" match deep
// paths such as "/auth/callback/google".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
