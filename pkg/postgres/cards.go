package postgres

import (
	"context"
	"fmt"

	"github.com/arcanalabs/significator/internal/catalog"
	apperrors "github.com/arcanalabs/significator/pkg/errors"
	"github.com/lib/pq"
)

// cardsQuery reads the full deck. List-valued fields are text[] columns.
const cardsQuery = `
SELECT id, name, suit, number,
       keywords, themes, archetypes, elements,
       zodiac_signs, planetary_rulers,
       upright_meaning, reversed_meaning, persona_description
FROM cards
ORDER BY suit, number`

// LoadCards reads every card record from the cards table.
func (c *Client) LoadCards(ctx context.Context) ([]catalog.Card, error) {
	rows, err := c.DB.QueryContext(ctx, cardsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: querying cards: %v", apperrors.ErrCatalogSource, err)
	}
	defer rows.Close()

	var cards []catalog.Card
	for rows.Next() {
		var card catalog.Card
		err := rows.Scan(
			&card.ID,
			&card.Name,
			&card.Suit,
			&card.Number,
			pq.Array(&card.Keywords),
			pq.Array(&card.Themes),
			pq.Array(&card.Archetypes),
			pq.Array(&card.Elements),
			pq.Array(&card.ZodiacSigns),
			pq.Array(&card.PlanetaryRulers),
			&card.UprightMeaning,
			&card.ReversedMeaning,
			&card.PersonaDescription,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}
	return cards, nil
}
