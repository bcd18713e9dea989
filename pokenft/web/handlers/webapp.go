package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft"
	"github.com/pokenft/pokenft/pokenft/auth"
	"github.com/pokenft/pokenft/pokenft/booster"
	"github.com/pokenft/pokenft/pokenft/catalog"
	"github.com/pokenft/pokenft/pokenft/chain"
	"github.com/pokenft/pokenft/pokenft/services"
	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// WebApp holds the dependencies shared by all HTTP handlers.
type WebApp struct {
	Config    *pokenft.Config
	Catalog   *catalog.Store
	Generator *booster.Generator
	Ledger    *chain.Ledger
	Market    *chain.Market
	Spaces    *services.SpacesService
	Auth      auth.Authenticator
	Version   string
}

// walletHeader carries the caller's wallet address on chain routes. A real
// deployment would recover it from a transaction signature; here the trusted
// frontend asserts it.
const walletHeader = "X-Wallet-Address"

// wallet returns the caller's wallet address from the request header.
func wallet(c *fiber.Ctx) (string, bool) {
	address := c.Get(walletHeader)
	if address == "" {
		return "", false
	}
	return address, true
}

func missingWallet(c *fiber.Ctx) error {
	return apiutil.SendBadRequest(c, "Missing "+walletHeader+" header", nil)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
