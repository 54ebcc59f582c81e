package records

import (
	"strings"
	"time"
)

var severityKeywords = []struct {
	severity Severity
	words    []string
}{
	{SeveritySevere, []string{"severe", "unbearable", "extreme"}},
	{SeverityModerate, []string{"moderate", "medium"}},
	{SeverityMild, []string{"mild", "slight", "minor"}},
}

// Order matters: the first category with a matching keyword wins.
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryRespiratory, []string{"cough", "breathing", "chest", "breath", "respiratory", "pneumonia"}},
	{CategoryDigestive, []string{"stomach", "diarrhea", "nausea", "vomit", "digest", "abdominal"}},
	{CategoryPain, []string{"pain", "ache", "hurt", "sore", "headache", "migraine"}},
	{CategoryFever, []string{"fever", "temperature", "hot", "chills", "cold", "sweat"}},
	{CategorySkin, []string{"rash", "itching", "skin", "lesion", "bump", "sore"}},
}

// ClassifySeverity derives a severity from keywords in free text.
func ClassifySeverity(text string) Severity {
	lower := strings.ToLower(text)
	for _, group := range severityKeywords {
		if containsAny(lower, group.words) {
			return group.severity
		}
	}
	return SeverityUnknown
}

// ClassifyCategory derives a category from keywords in free text.
func ClassifyCategory(text string) Category {
	lower := strings.ToLower(text)
	for _, group := range categoryKeywords {
		if containsAny(lower, group.words) {
			return group.category
		}
	}
	return CategoryOther
}

// NewSymptom builds a symptom, classifying whatever severity or category was
// not supplied explicitly.
func NewSymptom(text string, severity Severity, category Category, now time.Time) Symptom {
	if severity == "" {
		severity = ClassifySeverity(text)
	}
	if category == "" {
		category = ClassifyCategory(text)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Symptom{Text: text, Severity: severity, Category: category, RecordedAt: now}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
