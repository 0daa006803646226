package contact

import (
	"regexp"
	"strings"
)

// Phone patterns in priority order: toll-free, mobile with country code,
// bare mobile, STD landline, generic spaced landline.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b1800[\s-]?\d{2,3}[\s-]?\d{3,4}\b`),
	regexp.MustCompile(`\+91[\s-]?[6-9]\d{4}[\s-]?\d{5}\b`),
	regexp.MustCompile(`\b[6-9]\d{9}\b`),
	regexp.MustCompile(`\b0\d{2,4}[\s-]\d{6,8}\b`),
	regexp.MustCompile(`\b\d{3,5}[\s-]\d{3,4}[\s-]\d{3,4}\b`),
}

var (
	govEmailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@(?:[a-z0-9-]+\.)*(?:gov|nic)\.in\b`)
	emailPattern    = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

	notFoundPattern = regexp.MustCompile(`(?i)^\s*(not\s*(found|available)|n/?a|unknown|none|null)?\s*\.?\s*$`)
	// Phrases a model uses inside longer answers, e.g. "No email found".
	notFoundPhrase = regexp.MustCompile(`(?i)\b(not\s+(found|available|listed|provided|mentioned|specified)|no\s+(\w+\s+){0,2}(found|available|listed|provided)|unavailable|unknown)\b`)
)

// FindPhone returns the highest-priority phone number in text, or "".
func FindPhone(text string) string {
	for _, p := range phonePatterns {
		if m := p.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// FindEmail prefers government domains, then any address.
func FindEmail(text string) string {
	if m := govEmailPattern.FindString(text); m != "" {
		return m
	}
	return emailPattern.FindString(text)
}

// IsNotFound reports whether v is empty or a "not found" style placeholder.
// A not-found phrase that still carries a phone number or email counts as a
// value.
func IsNotFound(v string) bool {
	if notFoundPattern.MatchString(v) {
		return true
	}
	return notFoundPhrase.MatchString(v) && FindPhone(v) == "" && FindEmail(v) == ""
}
