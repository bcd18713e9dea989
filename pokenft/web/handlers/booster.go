package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// GenerateBooster draws a booster of distinct random cards from a set. The
// set id may be the literal "random" to pick any known set.
func (app *WebApp) GenerateBooster(c *fiber.Ctx) error {
	setID := c.Params("setId")
	name := c.Params("boosterName")

	count, err := c.ParamsInt("numCards")
	if err != nil {
		return apiutil.SendBadRequest(c, "numCards must be an integer", nil)
	}

	pack, err := app.Generator.Generate(c.Context(), setID, count, name)
	if err != nil {
		return apiutil.SendDomainError(c, err)
	}
	return apiutil.SendSuccess(c, pack, "")
}
