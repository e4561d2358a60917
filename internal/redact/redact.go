package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Redactor replaces sensitive values with correlation-preserving
// placeholders. The same value always maps to the same placeholder, so an
// LLM can still see that two messages mention the same address without
// seeing the address itself.
//
// A Redactor holds no mutable state and is safe for concurrent use.
type Redactor struct {
	patterns []Pattern
}

// New creates a Redactor for the named patterns. DefaultPatterns are used
// when names is empty or contains no known pattern.
func New(names []string) *Redactor {
	patterns := GetPatterns(names)
	if len(patterns) == 0 {
		patterns = GetPatterns(DefaultPatterns())
	}
	return &Redactor{patterns: patterns}
}

// Patterns returns the active patterns.
func (r *Redactor) Patterns() []Pattern {
	return r.patterns
}

// Redact scans text for sensitive patterns and replaces every match.
//
//	"connect to 10.0.0.7 refused" → "connect to [IPV4:3f1c] refused"
func (r *Redactor) Redact(text string) string {
	out, _ := r.RedactAndCount(text)
	return out
}

// RedactAndCount redacts text and returns the number of replacements made.
func (r *Redactor) RedactAndCount(text string) (string, int) {
	if r == nil || text == "" {
		return text, 0
	}

	count := 0
	result := text
	for _, pattern := range r.patterns {
		result = pattern.Regex.ReplaceAllStringFunc(result, func(match string) string {
			count++
			return Placeholder(match, pattern.Type)
		})
	}
	return result, count
}

// IsSensitive reports whether text contains any active pattern.
func (r *Redactor) IsSensitive(text string) bool {
	for _, pattern := range r.patterns {
		if pattern.Regex.MatchString(text) {
			return true
		}
	}
	return false
}

// Placeholder returns the placeholder for value: the pattern type followed
// by the first 4 hex characters of the SHA-256 of the normalized value.
func Placeholder(value, patternType string) string {
	h := sha256.Sum256([]byte(NormalizeValue(value, patternType)))
	return fmt.Sprintf("[%s:%s]", patternType, hex.EncodeToString(h[:2]))
}

// NormalizeValue folds formatting differences that do not change identity,
// such as letter case in email addresses and IPv6 addresses.
func NormalizeValue(value, patternType string) string {
	switch patternType {
	case "EMAIL", "IPV6", "MAC", "UUID":
		return strings.ToLower(value)
	default:
		return value
	}
}

// Unknown returns the names in names that are not built-in patterns.
func Unknown(names []string) []string {
	var unknown []string
	for _, name := range names {
		if _, ok := BuiltInPatterns[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
