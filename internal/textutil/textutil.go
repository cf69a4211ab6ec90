package textutil

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict  = bluemonday.StrictPolicy()
	phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Clean strips markup from user-supplied free text and trims it. Entities that
// the policy escapes are decoded again since the result is served as JSON.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// NormalizePhone removes spaces, dashes and parentheses. It returns "" when the
// result is not a 10-15 digit number with an optional leading '+'.
func NormalizePhone(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if !phoneRe.MatchString(s) {
		return ""
	}
	return s
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
