package analysis

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "moon", 4},
		{"sun", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"empress", "empres", 1},
		{"wands", "wand", 1},
		{"cups", "cusp", 2},
		{"tower", "tower", 0},
		{"héro", "hero", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshteinSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"sword", "sward"},
		{"pentacle", "pinnacle"},
		{"hermit", "hermes"},
		{"fool", "full"},
		{"", "arcana"},
		{"judgement", "judgment"},
	}
	for _, p := range pairs {
		ab := Levenshtein(p[0], p[1])
		ba := Levenshtein(p[1], p[0])
		if ab != ba {
			t.Errorf("Levenshtein(%q, %q) = %d but reversed = %d", p[0], p[1], ab, ba)
		}
	}
}

func TestLevenshteinIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "chariot", "high priestess"} {
		if got := Levenshtein(s, s); got != 0 {
			t.Errorf("Levenshtein(%q, %q) = %d, want 0", s, s, got)
		}
	}
}

func TestLevenshteinWithin(t *testing.T) {
	tests := []struct {
		a, b string
		max  int
		want bool
	}{
		{"empress", "empres", 1, true},
		{"empress", "emp", 1, false},
		{"wands", "wands", 0, true},
		{"sun", "moon", 2, false},
		{"sun", "son", 1, true},
	}
	for _, tt := range tests {
		if got := LevenshteinWithin(tt.a, tt.b, tt.max); got != tt.want {
			t.Errorf("LevenshteinWithin(%q, %q, %d) = %t, want %t", tt.a, tt.b, tt.max, got, tt.want)
		}
	}
}
