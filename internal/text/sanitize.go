// Package text prepares record text for speech synthesis.
package text

import (
	"regexp"
	"strings"
)

// Reasons a record is skipped instead of narrated
const (
	RejectEmptyText       = "empty text"
	RejectNoSpeakableText = "no speakable characters"
)

// disallowed matches every rune outside the speakable allow-list:
// Latin letters including accented ranges, the Arabic letter block, digits,
// space, and the punctuation, math and currency symbols read aloud.
var disallowed = regexp.MustCompile(`[^a-zA-ZÀ-ÖØ-öø-ÿء-ي0-9 ?!.,+\-*/=()^%<>$€'"’]`)

// Sanitize removes every character that should not reach the text-to-speech API
func Sanitize(s string) string {
	return disallowed.ReplaceAllString(s, "")
}

// IsBlank reports whether s is empty or only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate returns the sanitized text, or a non-empty reject reason when the
// record must be skipped.
func Validate(s string) (sanitized string, rejectReason string) {
	if IsBlank(s) {
		return "", RejectEmptyText
	}
	sanitized = Sanitize(s)
	if sanitized == "" {
		return "", RejectNoSpeakableText
	}
	return sanitized, ""
}
