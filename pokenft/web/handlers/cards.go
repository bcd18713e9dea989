package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// GetSetCards returns every card of a set, served from cache when possible.
func (app *WebApp) GetSetCards(c *fiber.Ctx) error {
	setID := c.Params("setId")

	cards, err := app.Catalog.CardsForSet(c.Context(), setID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, cards, "")
}

// RefreshSetCards drops the cache for a set and refetches it upstream.
func (app *WebApp) RefreshSetCards(c *fiber.Ctx) error {
	setID := c.Params("setId")

	cards, err := app.Catalog.Refresh(c.Context(), setID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, fiber.Map{
		"setId": setID,
		"cards": len(cards),
	}, "Set refreshed")
}

// GetAllSets returns the static set list.
func (app *WebApp) GetAllSets(c *fiber.Ctx) error {
	return apiutil.SendSuccess(c, app.Catalog.Sets().Sets(), "")
}

// SearchSets fuzzy-matches a query against set names.
func (app *WebApp) SearchSets(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return apiutil.SendBadRequest(c, "Missing query parameter q", nil)
	}
	return apiutil.SendSuccess(c, app.Catalog.Sets().Find(query, 10), "")
}

// GetCard fetches a single card by its catalog id, always upstream.
func (app *WebApp) GetCard(c *fiber.Ctx) error {
	cardID := c.Params("cardId")

	card, err := app.Catalog.Card(c.Context(), cardID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, card, "")
}
