// Package search fuses exact, fuzzy, and phonetic term matches against
// the inverted index into a single ranked result list. The query path
// never returns an error: blocked or empty input yields an empty slice.
package search

import (
	"math"
	"sort"

	"github.com/arcanalabs/significator/internal/analysis"
	"github.com/arcanalabs/significator/internal/catalog"
	"github.com/arcanalabs/significator/internal/index"
	"github.com/arcanalabs/significator/internal/query"
)

// phoneticSeedScore is the flat score given to cards whose only signal
// is a shared Soundex bucket. Phonetic-only matches are a weak hint,
// not a computed relevance value.
const phoneticSeedScore = 0.5

// Result is one ranked hit, created fresh per query.
type Result struct {
	CardID        string              `json:"card_id"`
	Card          catalog.Card        `json:"card"`
	Score         float64             `json:"score"`
	MatchedTerms  []string            `json:"matched_terms"`
	MatchedFields []string            `json:"matched_fields"`
	Highlights    map[string][]string `json:"highlights,omitempty"`
}

// accumulator collects per-card score contributions across all query
// terms before filtering and ranking.
type accumulator struct {
	score      float64
	terms      map[string]struct{}
	fields     map[index.Field]struct{}
	highlights map[index.Field]map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		terms:      make(map[string]struct{}),
		fields:     make(map[index.Field]struct{}),
		highlights: make(map[index.Field]map[string]struct{}),
	}
}

func (a *accumulator) hit(term string, field index.Field, contribution float64) {
	a.score += contribution
	a.terms[term] = struct{}{}
	a.fields[field] = struct{}{}
	if a.highlights[field] == nil {
		a.highlights[field] = make(map[string]struct{})
	}
	a.highlights[field][term] = struct{}{}
}

// Search validates, tokenises, and stems the raw query, then scores it
// against the index. Invalid or blocked input and queries with no
// surviving terms return an empty slice, never an error. A nil index is
// a usage bug (searching before building) and panics.
func Search(ix *index.Index, rawQuery string, opts Options) []Result {
	if ix == nil {
		panic("search: nil index, build the index before searching")
	}
	opts = opts.normalize()

	vr := query.Validate(rawQuery)
	if !vr.IsValid || vr.Blocked {
		return []Result{}
	}
	terms := stemmedTerms(vr.Sanitized)
	if len(terms) == 0 {
		return []Result{}
	}
	return searchTerms(ix, terms, opts)
}

// QuickSearch is the convenience profile for interactive lookups:
// fuzzy threshold 1, synonym expansion on, phonetic matching off.
func QuickSearch(ix *index.Index, rawQuery string, limit int) []Result {
	return Search(ix, rawQuery, QuickOptions(limit))
}

func stemmedTerms(sanitized string) []string {
	tokens := analysis.Tokenize(sanitized)
	terms := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		term := analysis.Stem(tok)
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

func searchTerms(ix *index.Index, terms []string, opts Options) []Result {
	if opts.ExpandSynonyms {
		terms = expandSynonyms(ix, terms)
	}

	accs := make(map[string]*accumulator)
	acc := func(cardID string) *accumulator {
		a, ok := accs[cardID]
		if !ok {
			a = newAccumulator()
			accs[cardID] = a
		}
		return a
	}

	total := float64(ix.TotalCards())
	for _, term := range terms {
		// Exact postings at full match weight.
		if df := ix.DocFreq(term); df > 0 {
			idf := math.Log(total / float64(df))
			for _, p := range ix.Postings(term) {
				acc(p.CardID).hit(term, p.Field, idf*p.Boost*opts.BoostExactMatch)
			}
		}

		// Fuzzy pass scans every distinct index term; the threshold
		// bounds the Levenshtein cost and the match weight decays with
		// distance.
		if opts.FuzzyThreshold > 0 {
			for _, candidate := range ix.Terms() {
				if candidate == term {
					continue
				}
				if !analysis.LevenshteinWithin(term, candidate, opts.FuzzyThreshold) {
					continue
				}
				dist := analysis.Levenshtein(term, candidate)
				weight := 1 - float64(dist)/float64(opts.FuzzyThreshold+1)
				idf := math.Log(total / float64(ix.DocFreq(candidate)))
				for _, p := range ix.Postings(candidate) {
					acc(p.CardID).hit(candidate, p.Field, idf*p.Boost*weight)
				}
			}
		}
	}

	// Phonetic matches only seed cards nothing else scored.
	if opts.UsePhonetic {
		for _, term := range terms {
			for _, cardID := range ix.PhoneticBucket(analysis.Soundex(term)) {
				if _, scored := accs[cardID]; scored {
					continue
				}
				a := newAccumulator()
				a.score = phoneticSeedScore
				a.terms[term] = struct{}{}
				accs[cardID] = a
			}
		}
	}

	results := make([]Result, 0, len(accs))
	for cardID, a := range accs {
		card, ok := ix.Card(cardID)
		if !ok {
			continue
		}
		if !matchesFilters(card, opts) {
			continue
		}
		results = append(results, buildResult(cardID, card, a))
	}

	// Score descending, card ID as the deterministic tie-break.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CardID < results[j].CardID
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

func expandSynonyms(ix *index.Index, terms []string) []string {
	expanded := make([]string, 0, len(terms)*2)
	seen := make(map[string]struct{})
	for _, term := range terms {
		if _, dup := seen[term]; !dup {
			seen[term] = struct{}{}
			expanded = append(expanded, term)
		}
		for _, syn := range ix.Synonyms(term) {
			if _, dup := seen[syn]; !dup {
				seen[syn] = struct{}{}
				expanded = append(expanded, syn)
			}
		}
	}
	return expanded
}

func matchesFilters(card catalog.Card, opts Options) bool {
	if opts.FilterBySuit != "" && card.Suit != opts.FilterBySuit {
		return false
	}
	switch opts.FilterByType {
	case TypeMajor:
		return card.IsMajor()
	case TypeMinor:
		return !card.IsMajor()
	case TypeCourt:
		return card.IsCourt()
	case TypePip:
		return !card.IsMajor() && !card.IsCourt()
	}
	return true
}

func buildResult(cardID string, card catalog.Card, a *accumulator) Result {
	r := Result{
		CardID:       cardID,
		Card:         card,
		Score:        a.score,
		MatchedTerms: sortedKeys(a.terms),
	}
	if len(a.fields) > 0 {
		r.MatchedFields = make([]string, 0, len(a.fields))
		r.Highlights = make(map[string][]string, len(a.fields))
		// Walk fields in priority order so output is stable.
		for f := index.FieldName; f <= index.FieldReversedMeaning; f++ {
			if _, ok := a.fields[f]; !ok {
				continue
			}
			r.MatchedFields = append(r.MatchedFields, f.String())
			r.Highlights[f.String()] = sortedKeys(a.highlights[f])
		}
	}
	return r
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
