// Package index builds and serves the immutable inverted index over the
// card catalog: term postings with per-field boosts, document
// frequencies, Soundex buckets, and the symmetric synonym map. An Index
// is never mutated after Build returns; rebuilds produce a new Index
// that readers pick up through an atomic Handle swap.
package index

import "github.com/arcanalabs/significator/internal/catalog"

// Field identifies one indexed card field. The enumeration fixes both
// the iteration order and the arity of each field, so single-string and
// string-list fields are handled explicitly rather than through a
// runtime union.
type Field int

const (
	FieldName Field = iota
	FieldKeywords
	FieldArchetypes
	FieldThemes
	FieldElements
	FieldZodiacSigns
	FieldPlanetaryRulers
	FieldPersona
	FieldUprightMeaning
	FieldReversedMeaning
)

// fieldSpec fixes a field's wire name, relevance boost, and value
// extractor. values always returns a slice; single-string fields wrap
// their value in a one-element slice.
type fieldSpec struct {
	name   string
	boost  float64
	values func(catalog.Card) []string
}

// fieldSpecs is ordered by indexing priority; boosts are fixed by the
// ranking design and not configurable.
var fieldSpecs = [...]fieldSpec{
	FieldName:            {"name", 10.0, func(c catalog.Card) []string { return []string{c.Name} }},
	FieldKeywords:        {"keywords", 5.0, func(c catalog.Card) []string { return c.Keywords }},
	FieldArchetypes:      {"archetypes", 4.0, func(c catalog.Card) []string { return c.Archetypes }},
	FieldThemes:          {"themes", 3.0, func(c catalog.Card) []string { return c.Themes }},
	FieldElements:        {"elements", 2.5, func(c catalog.Card) []string { return c.Elements }},
	FieldZodiacSigns:     {"zodiacSigns", 2.5, func(c catalog.Card) []string { return c.ZodiacSigns }},
	FieldPlanetaryRulers: {"planetaryRulers", 2.0, func(c catalog.Card) []string { return c.PlanetaryRulers }},
	FieldPersona:         {"persona", 1.5, func(c catalog.Card) []string { return []string{c.PersonaDescription} }},
	FieldUprightMeaning:  {"uprightMeaning", 1.0, func(c catalog.Card) []string { return []string{c.UprightMeaning} }},
	FieldReversedMeaning: {"reversedMeaning", 0.8, func(c catalog.Card) []string { return []string{c.ReversedMeaning} }},
}

// String returns the field's wire name as used in highlights and
// matched-field lists.
func (f Field) String() string {
	if int(f) < 0 || int(f) >= len(fieldSpecs) {
		return "unknown"
	}
	return fieldSpecs[f].name
}

// Boost returns the field's fixed relevance boost.
func (f Field) Boost() float64 {
	return fieldSpecs[f].boost
}

// Posting records one occurrence of a stemmed term in one field of one
// card. Postings are created by Build and never mutated afterwards.
type Posting struct {
	CardID   string
	Field    Field
	Position int
	Boost    float64
}
