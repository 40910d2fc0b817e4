// Package catalog defines the tarot card record and the fixed 78-card
// deck the search engine indexes. The deck ships embedded as JSON; an
// alternative Postgres-backed source lives in pkg/postgres. The catalog
// is read-only once loaded.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

// Suit names as they appear in card records and search filters.
const (
	SuitMajor     = "major"
	SuitWands     = "wands"
	SuitCups      = "cups"
	SuitSwords    = "swords"
	SuitPentacles = "pentacles"
)

// Court cards are the page, knight, queen, and king of each minor suit.
const (
	CourtLowNumber  = 11
	CourtHighNumber = 14
)

// Card is one immutable catalog record. The string and string-list
// fields after Number feed the inverted index; the engine only reads
// them.
type Card struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Suit               string   `json:"suit"`
	Number             int      `json:"number"`
	Keywords           []string `json:"keywords"`
	Themes             []string `json:"themes"`
	Archetypes         []string `json:"archetypes"`
	Elements           []string `json:"elements"`
	ZodiacSigns        []string `json:"zodiacSigns"`
	PlanetaryRulers    []string `json:"planetaryRulers"`
	UprightMeaning     string   `json:"uprightMeaning"`
	ReversedMeaning    string   `json:"reversedMeaning"`
	PersonaDescription string   `json:"personaDescription"`
}

// IsMajor reports whether the card belongs to the major arcana.
func (c Card) IsMajor() bool {
	return c.Suit == SuitMajor
}

// IsCourt reports whether the card is a court card (page through king).
func (c Card) IsCourt() bool {
	return !c.IsMajor() && c.Number >= CourtLowNumber && c.Number <= CourtHighNumber
}

// Catalog holds the full deck with lookup maps for the typed accessors.
type Catalog struct {
	cards  []Card
	byID   map[string]Card
	byName map[string]Card
}

//go:embed cards.json
var embeddedDeck []byte

// LoadEmbedded parses the embedded 78-card deck.
func LoadEmbedded() (*Catalog, error) {
	var cards []Card
	if err := json.Unmarshal(embeddedDeck, &cards); err != nil {
		return nil, fmt.Errorf("parsing embedded deck: %w", err)
	}
	return New(cards)
}

// New builds a Catalog from card records, rejecting duplicate IDs.
func New(cards []Card) (*Catalog, error) {
	c := &Catalog{
		cards:  make([]Card, len(cards)),
		byID:   make(map[string]Card, len(cards)),
		byName: make(map[string]Card, len(cards)),
	}
	copy(c.cards, cards)
	for _, card := range c.cards {
		if card.ID == "" {
			return nil, fmt.Errorf("card %q has no id", card.Name)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", card.ID)
		}
		c.byID[card.ID] = card
		c.byName[strings.ToLower(card.Name)] = card
	}
	return c, nil
}

// All returns the deck in catalog order. The returned slice is shared;
// callers must not mutate it.
func (c *Catalog) All() []Card {
	return c.cards
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// ByID returns the card with the given id.
func (c *Catalog) ByID(id string) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// ByExactName returns the card whose name matches, case-insensitively.
func (c *Catalog) ByExactName(name string) (Card, bool) {
	card, ok := c.byName[strings.ToLower(name)]
	return card, ok
}

// ByNumber returns all cards with the given number, in catalog order.
func (c *Catalog) ByNumber(number int) []Card {
	var out []Card
	for _, card := range c.cards {
		if card.Number == number {
			out = append(out, card)
		}
	}
	return out
}

// BySuit returns all cards of the given suit, in catalog order.
func (c *Catalog) BySuit(suit string) []Card {
	suit = strings.ToLower(suit)
	var out []Card
	for _, card := range c.cards {
		if card.Suit == suit {
			out = append(out, card)
		}
	}
	return out
}
