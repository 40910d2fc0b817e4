package index

import (
	"sync/atomic"

	"github.com/arcanalabs/significator/internal/catalog"
)

// Index is the immutable inverted index over one catalog snapshot.
// Every card ID referenced by postings or phonetic buckets exists in
// the card map, docFreq counts distinct cards per term, and the synonym
// map is symmetric. None of the maps are written after Build returns,
// so an Index is safe for concurrent readers without locks.
type Index struct {
	postings   map[string][]Posting
	docFreq    map[string]int
	cards      map[string]catalog.Card
	synonyms   map[string][]string
	phonetic   map[string][]string
	terms      []string
	totalCards int
}

// Postings returns the postings for an exact stemmed term.
func (ix *Index) Postings(term string) []Posting {
	return ix.postings[term]
}

// DocFreq returns the number of distinct cards containing the stemmed
// term. Zero means the term is not in the index.
func (ix *Index) DocFreq(term string) int {
	return ix.docFreq[term]
}

// Terms returns every distinct stemmed term, sorted. The slice is
// shared and must not be mutated; it is the scan set for fuzzy search.
func (ix *Index) Terms() []string {
	return ix.terms
}

// Synonyms returns the symmetric expansion for a stemmed term.
func (ix *Index) Synonyms(term string) []string {
	return ix.synonyms[term]
}

// PhoneticBucket returns the card IDs whose indexed tokens share the
// given Soundex code.
func (ix *Index) PhoneticBucket(code string) []string {
	return ix.phonetic[code]
}

// Card returns the indexed card with the given ID.
func (ix *Index) Card(id string) (catalog.Card, bool) {
	c, ok := ix.cards[id]
	return c, ok
}

// TotalCards returns the number of cards in the indexed catalog.
func (ix *Index) TotalCards() int {
	return ix.totalCards
}

// TermCount returns the number of distinct stemmed terms.
func (ix *Index) TermCount() int {
	return len(ix.terms)
}

// Handle publishes the current Index to concurrent readers. Rebuilding
// means constructing a whole new Index and swapping it in; the old one
// stays valid for readers that already loaded it.
type Handle struct {
	ptr atomic.Pointer[Index]
}

// NewHandle returns a Handle publishing ix, which may be nil.
func NewHandle(ix *Index) *Handle {
	h := &Handle{}
	if ix != nil {
		h.ptr.Store(ix)
	}
	return h
}

// Load returns the currently published Index, or nil if none was built.
func (h *Handle) Load() *Index {
	return h.ptr.Load()
}

// Swap atomically replaces the published Index.
func (h *Handle) Swap(ix *Index) {
	h.ptr.Store(ix)
}
