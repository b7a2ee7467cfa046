package domain

import (
	"regexp"
	"strings"
)

// maxTextLength caps every free-text field after sanitization.
const maxTextLength = 2000

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeText strips NUL bytes and markup tags, trims, and caps length.
func SanitizeText(v string) string {
	v = strings.ReplaceAll(v, "\x00", "")
	v = tagPattern.ReplaceAllString(v, "")
	v = strings.TrimSpace(v)
	rs := []rune(v)
	if len(rs) > maxTextLength {
		v = strings.TrimSpace(string(rs[:maxTextLength]))
	}
	return v
}
