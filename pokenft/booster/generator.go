package booster

import (
	"context"
	"log/slog"

	"github.com/pokenft/pokenft/pokenft/catalog"
	"github.com/pokenft/pokenft/pokenft/database/models"
)

// Pack is a generated booster before it touches the chain: the chosen card
// ids plus the concrete set they came from.
type Pack struct {
	Name    string              `json:"name"`
	SetID   string              `json:"setId"`
	SetName string              `json:"setName"`
	CardIDs []string            `json:"cardIds"`
	Cards   []models.CardRecord `json:"cards"`
}

// Generator draws boosters from catalog sets.
type Generator struct {
	catalog         *catalog.Store
	cardsPerBooster int
}

func NewGenerator(store *catalog.Store, cardsPerBooster int) *Generator {
	return &Generator{catalog: store, cardsPerBooster: cardsPerBooster}
}

// Generate builds a booster of count distinct cards from the given set.
// A negative count falls back to the configured default, zero yields an
// empty pack, and the random set sentinel is resolved before drawing.
func (g *Generator) Generate(ctx context.Context, setID string, count int, name string) (*Pack, error) {
	if count < 0 {
		count = g.cardsPerBooster
	}

	resolved, err := g.catalog.ResolveSet(setID)
	if err != nil {
		return nil, err
	}

	pool, err := g.catalog.CardsForSet(ctx, resolved)
	if err != nil {
		return nil, err
	}

	ids, err := Select(pool, count)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.CardRecord, len(pool))
	for _, c := range pool {
		byID[c.ID] = c
	}
	cards := make([]models.CardRecord, len(ids))
	setName := resolved
	for i, id := range ids {
		cards[i] = byID[id]
		setName = cards[i].Set.Name
	}

	slog.Info("Generated booster",
		slog.String("type", "api"),
		slog.String("set_id", resolved),
		slog.Int("cards", len(ids)),
		slog.String("name", name),
	)

	return &Pack{
		Name:    name,
		SetID:   resolved,
		SetName: setName,
		CardIDs: ids,
		Cards:   cards,
	}, nil
}
