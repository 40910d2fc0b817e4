package query

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateBlocklist(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"script tag", "<script>alert(1)</script>"},
		{"script tag with spaces", "< script >alert(1)"},
		{"javascript uri", "javascript:alert(1)"},
		{"javascript uri with space", "javascript :alert(1)"},
		{"vbscript uri", "vbscript:msgbox(1)"},
		{"data uri", "data:text/html;base64,xyz"},
		{"event handler", "x onerror=alert(1)"},
		{"onclick handler", "sun onclick = steal()"},
		{"css expression", "expression(document.cookie)"},
		{"css url", "url(http://evil.example)"},
		{"iframe tag", "<iframe src=x>"},
		{"object tag", "<object data=x>"},
		{"embed tag", "<embed src=x>"},
		{"template injection", "{{constructor.constructor('alert(1)')()}}"},
		{"template literal", "${process.env}"},
		{"prototype pollution", "__proto__.polluted"},
		{"constructor access", "constructor['alert']"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)
			if !got.Blocked {
				t.Fatalf("Validate(%q) not blocked", tt.input)
			}
			if got.IsValid {
				t.Error("blocked input must be invalid")
			}
			if got.Sanitized != "" {
				t.Errorf("blocked input must sanitize to empty, got %q", got.Sanitized)
			}
			if got.BlockReason != "Input contains disallowed patterns" {
				t.Errorf("unexpected block reason %q", got.BlockReason)
			}
		})
	}
}

func TestValidateEmpty(t *testing.T) {
	got := Validate("")
	if got.IsValid || got.Blocked {
		t.Errorf("empty input: IsValid=%t Blocked=%t, want false/false", got.IsValid, got.Blocked)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != "Empty input" {
		t.Errorf("empty input warnings = %v", got.Warnings)
	}
}

func TestValidateWhitespaceOnly(t *testing.T) {
	got := Validate("   \t  ")
	if got.IsValid {
		t.Error("whitespace-only input must be invalid")
	}
	if got.Blocked {
		t.Error("whitespace-only input must not be blocked")
	}
	if got.Sanitized != "" {
		t.Errorf("whitespace-only sanitized = %q, want empty", got.Sanitized)
	}
}

func TestValidateTruncation(t *testing.T) {
	long := strings.Repeat("moon ", 60) // 300 chars
	got := Validate(long)
	if got.IsValid {
		t.Error("truncated input must be invalid")
	}
	if got.Blocked {
		t.Error("truncation is not a security block")
	}
	if len(got.Sanitized) > MaxQueryLength {
		t.Errorf("sanitized length %d exceeds %d", len(got.Sanitized), MaxQueryLength)
	}
	found := false
	for _, w := range got.Warnings {
		if strings.Contains(w, "truncated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a truncation warning, got %v", got.Warnings)
	}
}

func TestValidateTruncationRuneBoundary(t *testing.T) {
	// A two-byte rune straddling the 200-byte cap must not be split into
	// an orphan continuation byte.
	long := strings.Repeat("a", MaxQueryLength-1) + "éz"
	got := Validate(long)
	if !utf8.ValidString(got.Sanitized) {
		t.Fatalf("sanitized output is not valid UTF-8: %q", got.Sanitized)
	}
	if len(got.Sanitized) > MaxQueryLength {
		t.Errorf("sanitized length %d exceeds %d", len(got.Sanitized), MaxQueryLength)
	}
	if got.IsValid {
		t.Error("truncated input must be invalid")
	}
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"angle brackets", "sun > moon", "angle brackets"},
		{"quotes", `the "tower"`, "quotes"},
		{"slashes", "wands/cups", "slashes"},
		{"control characters", "sun\x01moon", "control characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)
			if got.Blocked {
				t.Fatalf("Validate(%q) blocked, want warning only", tt.input)
			}
			if !got.IsValid {
				t.Fatalf("Validate(%q) invalid, want valid with warning", tt.input)
			}
			found := false
			for _, w := range got.Warnings {
				if strings.Contains(w, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("warnings %v missing %q", got.Warnings, tt.want)
			}
		})
	}
}

func TestValidateSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The  Sun   Rises", "the sun rises"},
		{"sun &amp; moon", "sun moon"},
		{"a < b > c", "a b c"},
		{"  trimmed  ", "trimmed"},
		{"tab\tand\nnewline", "tab and newline"},
	}
	for _, tt := range tests {
		got := Validate(tt.input)
		if got.Sanitized != tt.want {
			t.Errorf("Validate(%q).Sanitized = %q, want %q", tt.input, got.Sanitized, tt.want)
		}
		if !got.IsValid {
			t.Errorf("Validate(%q) invalid, want valid", tt.input)
		}
	}
}

func TestValidatePlainQueriesPass(t *testing.T) {
	queries := []string{
		"the empress",
		"love and relationships",
		"three of swords",
		"what does the hermit mean",
	}
	for _, q := range queries {
		got := Validate(q)
		if !got.IsValid || got.Blocked || len(got.Warnings) != 0 {
			t.Errorf("Validate(%q) = %+v, want clean pass", q, got)
		}
	}
}

func TestBlockPatternLabels(t *testing.T) {
	labels := BlockPatternLabels()
	if len(labels) != len(blockRules) {
		t.Fatalf("got %d labels, want %d", len(labels), len(blockRules))
	}
	if labels[0] != "script tag" {
		t.Errorf("first pattern label = %q, want script tag", labels[0])
	}
}
