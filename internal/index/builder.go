package index

import (
	"sort"

	"github.com/arcanalabs/significator/internal/analysis"
	"github.com/arcanalabs/significator/internal/catalog"
)

// Build constructs the complete index in a single pass over the
// catalog. For each card it walks the ten indexed fields in priority
// order, tokenises and stems every value, and records a posting per
// term occurrence, a document-frequency increment per distinct
// (card, term) pair, and a Soundex bucket entry per raw token. Given
// the same catalog, Build is deterministic.
func Build(cat *catalog.Catalog) *Index {
	ix := &Index{
		postings:   make(map[string][]Posting),
		docFreq:    make(map[string]int),
		cards:      make(map[string]catalog.Card, cat.Len()),
		synonyms:   buildSynonyms(),
		phonetic:   make(map[string][]string),
		totalCards: cat.Len(),
	}

	phoneticSeen := make(map[string]map[string]struct{})

	for _, card := range cat.All() {
		ix.cards[card.ID] = card
		termSeen := make(map[string]struct{})

		for f := FieldName; f <= FieldReversedMeaning; f++ {
			spec := fieldSpecs[f]
			position := 0
			for _, value := range spec.values(card) {
				for _, token := range analysis.Tokenize(value) {
					term := analysis.Stem(token)
					ix.postings[term] = append(ix.postings[term], Posting{
						CardID:   card.ID,
						Field:    f,
						Position: position,
						Boost:    spec.boost,
					})
					position++

					if _, dup := termSeen[term]; !dup {
						termSeen[term] = struct{}{}
						ix.docFreq[term]++
					}

					code := analysis.Soundex(token)
					if phoneticSeen[code] == nil {
						phoneticSeen[code] = make(map[string]struct{})
					}
					if _, dup := phoneticSeen[code][card.ID]; !dup {
						phoneticSeen[code][card.ID] = struct{}{}
						ix.phonetic[code] = append(ix.phonetic[code], card.ID)
					}
				}
			}
		}
	}

	ix.terms = make([]string, 0, len(ix.docFreq))
	for term := range ix.docFreq {
		ix.terms = append(ix.terms, term)
	}
	sort.Strings(ix.terms)
	return ix
}
