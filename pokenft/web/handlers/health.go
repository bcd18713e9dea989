package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pokenft/pokenft/pokenft/web/apiutil"
)

// Health reports service liveness and which caches are warm.
func (app *WebApp) Health(c *fiber.Ctx) error {
	cachedSets, err := app.Catalog.CachedSetIDs()
	status := "healthy"
	if err != nil {
		status = "degraded"
	}

	return apiutil.SendSuccess(c, fiber.Map{
		"status":     status,
		"version":    app.Version,
		"cachedSets": len(cachedSets),
		"timestamp":  time.Now(),
	}, "")
}
