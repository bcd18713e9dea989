package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/chain"
	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// GetActiveListings returns every listing currently for sale.
func (app *WebApp) GetActiveListings(c *fiber.Ctx) error {
	listings, err := app.Market.GetActiveListings(c.Context())
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, listings, "")
}

// ListCard puts a token up for sale at a fixed price. The caller must own
// the token and have approved the marketplace beforehand.
func (app *WebApp) ListCard(c *fiber.Ctx) error {
	address, ok := wallet(c)
	if !ok {
		return missingWallet(c)
	}

	var body struct {
		TokenID int64 `json:"tokenId"`
		Price   int64 `json:"price"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}

	listing, err := app.Market.ListCard(c.Context(), chain.Caller{Address: address}, body.TokenID, body.Price)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendCreated(c, listing, "Card listed")
}

// BuyCard purchases a listed token. The attached value must equal the
// listing price exactly; ownership transfers and the seller is credited.
func (app *WebApp) BuyCard(c *fiber.Ctx) error {
	address, ok := wallet(c)
	if !ok {
		return missingWallet(c)
	}

	tokenID, err := parseInt64(c.Params("tokenId"))
	if err != nil {
		return apiutil.SendBadRequest(c, "tokenId must be an integer", nil)
	}

	var body struct {
		Value int64 `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return apiutil.SendBadRequest(c, "Invalid request body", nil)
	}

	listing, err := app.Market.BuyCard(c.Context(), chain.Caller{Address: address, Value: body.Value}, tokenID)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, listing, "Card purchased")
}

// CancelListing takes a token off the market. Seller only.
func (app *WebApp) CancelListing(c *fiber.Ctx) error {
	address, ok := wallet(c)
	if !ok {
		return missingWallet(c)
	}

	tokenID, err := parseInt64(c.Params("tokenId"))
	if err != nil {
		return apiutil.SendBadRequest(c, "tokenId must be an integer", nil)
	}

	if err := app.Market.CancelListing(c.Context(), chain.Caller{Address: address}, tokenID); err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, fiber.Map{"tokenId": tokenID}, "Listing cancelled")
}
