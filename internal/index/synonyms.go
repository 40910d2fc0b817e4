package index

import (
	"sort"

	"github.com/arcanalabs/significator/internal/analysis"
)

// synonymSeed maps query vocabulary to card vocabulary. The seed is
// directional; buildSynonyms computes the symmetric closure so that
// every edge works both ways. Terms are stemmed during construction so
// lookups against stemmed query terms hit.
var synonymSeed = map[string][]string{
	"love":       {"romance", "relationship", "heart", "emotion", "passion"},
	"money":      {"wealth", "finance", "prosperity", "abundance", "riches"},
	"work":       {"career", "job", "labor", "craft"},
	"death":      {"ending", "transformation", "transition", "rebirth"},
	"luck":       {"fortune", "chance", "fate", "destiny"},
	"strength":   {"courage", "power", "resilience", "bravery"},
	"wisdom":     {"knowledge", "insight", "understanding", "guidance"},
	"journey":    {"travel", "path", "quest", "adventure"},
	"conflict":   {"struggle", "battle", "fight", "discord"},
	"happiness":  {"joy", "bliss", "delight", "contentment"},
	"fear":       {"anxiety", "dread", "worry", "doubt"},
	"change":     {"upheaval", "transformation", "shift", "transition"},
	"balance":    {"harmony", "moderation", "equilibrium", "temperance"},
	"hope":       {"faith", "optimism", "renewal", "inspiration"},
	"secret":     {"mystery", "hidden", "unknown", "occult"},
	"leader":     {"authority", "ruler", "command", "king"},
	"mother":     {"nurturing", "fertility", "empress", "feminine"},
	"father":     {"authority", "structure", "emperor", "masculine"},
	"dream":      {"vision", "illusion", "subconscious", "imagination"},
	"spirit":     {"soul", "divine", "sacred", "spiritual"},
	"home":       {"family", "security", "foundation", "stability"},
	"loss":       {"grief", "sorrow", "mourning", "absence"},
	"success":    {"victory", "achievement", "triumph", "accomplishment"},
	"beginning":  {"start", "birth", "dawn", "seed"},
	"completion": {"fulfillment", "wholeness", "culmination", "closure"},
}

// buildSynonyms stems the seed and returns its deduplicated symmetric
// closure: for every seed edge a→b, the result also contains b→a.
func buildSynonyms() map[string][]string {
	sets := make(map[string]map[string]struct{})
	add := func(from, to string) {
		if from == to {
			return
		}
		if sets[from] == nil {
			sets[from] = make(map[string]struct{})
		}
		sets[from][to] = struct{}{}
	}
	for term, syns := range synonymSeed {
		st := analysis.Stem(term)
		for _, s := range syns {
			ss := analysis.Stem(s)
			add(st, ss)
			add(ss, st)
		}
	}
	out := make(map[string][]string, len(sets))
	for term, set := range sets {
		list := make([]string, 0, len(set))
		for s := range set {
			list = append(list, s)
		}
		sort.Strings(list)
		out[term] = list
	}
	return out
}
