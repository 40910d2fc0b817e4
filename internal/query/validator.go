// Package query validates and sanitises raw, possibly hostile query text
// before it reaches the search engine. Validate is a total function: every
// input maps to a Result and nothing on this path ever panics.
package query

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength is the cap applied to raw input before any other
// processing. Longer input is truncated with a warning, not blocked.
const MaxQueryLength = 200

// Result reports the outcome of validating one raw query string.
type Result struct {
	IsValid     bool     `json:"is_valid"`
	Sanitized   string   `json:"sanitized"`
	Warnings    []string `json:"warnings,omitempty"`
	Blocked     bool     `json:"blocked"`
	BlockReason string   `json:"block_reason,omitempty"`
}

// rule pairs a compiled pattern with a short human label used in logs and
// per-pattern tests. Rules are evaluated in declaration order.
type rule struct {
	re    *regexp.Regexp
	label string
}

// blockRules match input that is rejected outright. Any hit short-circuits
// all later processing and empties the sanitized output.
var blockRules = []rule{
	{regexp.MustCompile(`(?i)<\s*script`), "script tag"},
	{regexp.MustCompile(`(?i)javascript\s*:`), "javascript URI"},
	{regexp.MustCompile(`(?i)vbscript\s*:`), "vbscript URI"},
	{regexp.MustCompile(`(?i)data\s*:`), "data URI"},
	{regexp.MustCompile(`(?i)\bon\w+\s*=`), "event handler attribute"},
	{regexp.MustCompile(`(?i)expression\s*\(`), "CSS expression"},
	{regexp.MustCompile(`(?i)url\s*\(`), "CSS url"},
	{regexp.MustCompile(`(?i)<\s*iframe`), "iframe tag"},
	{regexp.MustCompile(`(?i)<\s*object`), "object tag"},
	{regexp.MustCompile(`(?i)<\s*embed`), "embed tag"},
	{regexp.MustCompile(`\{\{.*\}\}`), "template injection"},
	{regexp.MustCompile(`\$\{.*\}`), "template literal injection"},
	{regexp.MustCompile(`__proto__`), "prototype pollution"},
	{regexp.MustCompile(`(?i)constructor\s*\[`), "constructor access"},
}

// warnRules match input that is suspicious but allowed; each hit adds a
// warning and sanitisation strips the offending characters afterwards.
var warnRules = []rule{
	{regexp.MustCompile(`[<>]`), "angle brackets"},
	{regexp.MustCompile("[\"'`]"), "quotes"},
	{regexp.MustCompile(`[/\\]`), "slashes"},
	{regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]"), "control characters"},
}

var (
	// Tab, CR, and LF are left for the whitespace collapse.
	controlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	htmlEntities = regexp.MustCompile(`&[a-zA-Z#0-9]+;`)
	angleBracket = regexp.MustCompile(`[<>]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

const blockReason = "Input contains disallowed patterns"

// Validate classifies and sanitises raw query text. Processing order:
// empty check, length truncation, blocklist, warning list, sanitisation.
// The result is valid iff the sanitized text is non-empty.
func Validate(raw string) Result {
	if raw == "" {
		return Result{Warnings: []string{"Empty input"}}
	}

	var warnings []string
	truncated := false
	if len(raw) > MaxQueryLength {
		// Back up to a rune boundary so the cut never leaves an
		// invalid-UTF-8 tail in the sanitized output.
		cut := MaxQueryLength
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut]
		truncated = true
		warnings = append(warnings, "Input truncated to 200 characters")
	}

	for _, r := range blockRules {
		if r.re.MatchString(raw) {
			return Result{
				Warnings:    warnings,
				Blocked:     true,
				BlockReason: blockReason,
			}
		}
	}

	for _, r := range warnRules {
		if r.re.MatchString(raw) {
			warnings = append(warnings, "Input contains "+r.label)
		}
	}

	// Truncation is not a security block, but a truncated query is no
	// longer the query the caller asked for, so it is marked invalid.
	sanitized := sanitize(raw)
	return Result{
		IsValid:   sanitized != "" && !truncated,
		Sanitized: sanitized,
		Warnings:  warnings,
	}
}

// sanitize strips control characters and HTML entities, removes angle
// brackets, collapses runs of whitespace, trims, and lower-cases.
func sanitize(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	s = htmlEntities.ReplaceAllString(s, "")
	s = angleBracket.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

// BlockPatternLabels returns the labels of the blocklist in evaluation
// order, for audit endpoints and tests.
func BlockPatternLabels() []string {
	labels := make([]string, len(blockRules))
	for i, r := range blockRules {
		labels[i] = r.label
	}
	return labels
}
