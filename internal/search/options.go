package search

// Type filter values accepted by Options.FilterByType.
const (
	TypeMajor = "major" // major arcana
	TypeMinor = "minor" // any non-major card
	TypeCourt = "court" // page, knight, queen, king (numbers 11-14)
	TypePip   = "pip"   // minor and not court
)

// Options control one search. The zero value is not useful; start from
// DefaultOptions or QuickOptions and override.
type Options struct {
	// Limit caps the number of returned results. Values <= 0 fall back
	// to the default of 10.
	Limit int
	// FuzzyThreshold is the maximum Levenshtein distance for fuzzy term
	// matches; 0 disables fuzzy matching entirely. The fuzzy pass scans
	// every distinct index term per query term, so keep it small.
	FuzzyThreshold int
	// ExpandSynonyms unions the query terms with their synonym-table
	// expansions before scoring.
	ExpandSynonyms bool
	// UsePhonetic seeds cards from the query term's Soundex bucket with
	// a weak flat score when nothing else matched them.
	UsePhonetic bool
	// BoostExactMatch is the match weight applied to exact term hits.
	// Values <= 0 fall back to the default of 2.0.
	BoostExactMatch float64
	// FilterBySuit keeps only cards of the given suit (exact match).
	FilterBySuit string
	// FilterByType keeps only cards of the given type (major, minor,
	// court, pip). Unknown values filter nothing out.
	FilterByType string
}

// DefaultOptions returns the documented defaults: limit 10, fuzzy
// threshold 2, synonyms and phonetic matching on, exact-match boost 2.0,
// no filters.
func DefaultOptions() Options {
	return Options{
		Limit:           10,
		FuzzyThreshold:  2,
		ExpandSynonyms:  true,
		UsePhonetic:     true,
		BoostExactMatch: 2.0,
	}
}

// QuickOptions returns the quick-search profile: tight fuzzy threshold,
// synonyms on, phonetic off. A limit <= 0 falls back to 5.
func QuickOptions(limit int) Options {
	if limit <= 0 {
		limit = 5
	}
	return Options{
		Limit:           limit,
		FuzzyThreshold:  1,
		ExpandSynonyms:  true,
		UsePhonetic:     false,
		BoostExactMatch: 2.0,
	}
}

// normalize applies defaults for out-of-range values once at the call
// boundary.
func (o Options) normalize() Options {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.FuzzyThreshold < 0 {
		o.FuzzyThreshold = 0
	}
	if o.BoostExactMatch <= 0 {
		o.BoostExactMatch = 2.0
	}
	return o
}
