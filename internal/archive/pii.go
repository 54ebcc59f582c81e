package archive

import (
	"crypto/sha256"
	"fmt"
	"regexp"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// Nine or more digits with optional single separators, e.g. +254 711 001122
	// or 0711-001-122. Dates such as 20-10-2026 carry only eight.
	phoneRe = regexp.MustCompile(`\+?\d(?:[\s\-]?\d){8,13}`)
)

// HashPhone returns the hex-encoded SHA-256 hash of a phone number.
func HashPhone(phone string) string {
	h := sha256.Sum256([]byte(phone))
	return fmt.Sprintf("%x", h)
}

// ScrubPII replaces emails with [EMAIL] and phone numbers with [PHONE].
// Names are kept; providers need them when reviewing a transcript.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")
	return text
}

// ScrubSteps applies PII scrubbing to inputs and replies in place.
func ScrubSteps(steps []Step) {
	for i := range steps {
		steps[i].Input = ScrubPII(steps[i].Input)
		steps[i].Reply = ScrubPII(steps[i].Reply)
	}
}
