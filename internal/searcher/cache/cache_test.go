package cache

import (
	"strings"
	"testing"

	"github.com/arcanalabs/significator/internal/search"
)

func TestBuildKeyStable(t *testing.T) {
	opts := search.DefaultOptions()
	a := buildKey("the empress", opts)
	b := buildKey("the empress", opts)
	if a != b {
		t.Fatalf("same inputs produced different keys: %s vs %s", a, b)
	}
}

func TestBuildKeyNormalizesQuery(t *testing.T) {
	opts := search.DefaultOptions()
	base := buildKey("the empress", opts)
	for _, q := range []string{"The Empress", "  the   empress  ", "THE\tEMPRESS"} {
		if got := buildKey(q, opts); got != base {
			t.Errorf("buildKey(%q) = %s, want %s", q, got, base)
		}
	}
}

func TestBuildKeyVariesWithOptions(t *testing.T) {
	base := buildKey("sun", search.DefaultOptions())
	variants := []search.Options{
		func() search.Options { o := search.DefaultOptions(); o.Limit = 5; return o }(),
		func() search.Options { o := search.DefaultOptions(); o.FuzzyThreshold = 1; return o }(),
		func() search.Options { o := search.DefaultOptions(); o.ExpandSynonyms = false; return o }(),
		func() search.Options { o := search.DefaultOptions(); o.UsePhonetic = false; return o }(),
		func() search.Options { o := search.DefaultOptions(); o.BoostExactMatch = 3.0; return o }(),
		func() search.Options { o := search.DefaultOptions(); o.FilterBySuit = "wands"; return o }(),
		func() search.Options { o := search.DefaultOptions(); o.FilterByType = "major"; return o }(),
	}
	seen := map[string]struct{}{base: {}}
	for i, opts := range variants {
		key := buildKey("sun", opts)
		if _, dup := seen[key]; dup {
			t.Errorf("variant %d collided with an earlier key", i)
		}
		seen[key] = struct{}{}
	}
}

func TestBuildKeyVariesWithQuery(t *testing.T) {
	opts := search.DefaultOptions()
	if buildKey("sun", opts) == buildKey("moon", opts) {
		t.Error("different queries produced the same key")
	}
}

func TestBuildKeyFormat(t *testing.T) {
	key := buildKey("tower", search.DefaultOptions())
	if !strings.HasPrefix(key, keyPrefix) {
		t.Errorf("key %s lacks prefix %s", key, keyPrefix)
	}
	// Prefix plus a 16-byte hash in hex.
	if len(key) != len(keyPrefix)+32 {
		t.Errorf("key length = %d, want %d", len(key), len(keyPrefix)+32)
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Sun", "sun"},
		{"  the   SUN ", "the sun"},
		{"a\tb\nc", "a b c"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeQuery(tt.in); got != tt.want {
			t.Errorf("normalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
