package analysis

import "strings"

// stemRules is applied in order; the first matching suffix wins and at
// most one rule is applied per token. This is a fast heuristic reducer,
// not a full Porter stemmer.
var stemRules = []struct {
	suffix      string
	replacement string
}{
	{"ies", "y"},
	{"es", ""},
	{"s", ""},
	{"ing", ""},
	{"ed", ""},
	{"ly", ""},
	{"ness", ""},
	{"ment", ""},
	{"tion", "t"},
	{"sion", "s"},
}

// Stem reduces a token to an approximate root form. A rule only applies
// when the token is strictly longer than the suffix it strips, so the
// result is never empty.
func Stem(word string) string {
	for _, rule := range stemRules {
		if len(word) > len(rule.suffix) && strings.HasSuffix(word, rule.suffix) {
			return word[:len(word)-len(rule.suffix)] + rule.replacement
		}
	}
	return word
}
