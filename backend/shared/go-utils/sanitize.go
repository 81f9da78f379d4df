package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()

	xssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*script\b`),
		regexp.MustCompile(`(?i)<\s*/\s*script\s*>`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)vbscript\s*:`),
		regexp.MustCompile(`(?i)<[^>]*\bon[a-z]+\s*=`),
		regexp.MustCompile(`(?i)<\s*(iframe|object|embed)\b`),
		regexp.MustCompile(`(?i)expression\s*\(`),
		regexp.MustCompile(`(?i)data\s*:\s*text/html`),
	}
)

// EscapeHTML escapes <, >, &, ' and " for safe interpolation into markup.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeHTML keeps user-generated formatting (links, emphasis, lists)
// and drops scripts, handlers and unsafe URLs.
func SanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}

// StripHTML removes every tag, leaving escaped text.
func StripHTML(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// ContainsXSS reports whether s looks like a script injection attempt.
func ContainsXSS(s string) bool {
	for _, re := range xssPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
