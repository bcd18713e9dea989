package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/web/handlers"
	"github.com/pokenft/pokenft/pokenft/web/middleware"
)

// NewApp builds the fiber application with the global middleware stack.
func NewApp(webApp *handlers.WebApp, allowOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "PokeNFT API",
		ServerHeader: "PokeNFT",
		ReadTimeout:  config.RequestTimeout,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Wallet-Address",
	}))
	app.Use(middleware.LoggingMiddleware())

	SetupRoutes(app, webApp)
	return app
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", webApp.Health)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "PokeNFT API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	api := app.Group("/api")
	api.Use(middleware.RateLimit(config.UserRateLimit, config.RateLimitWindow))

	admin := middleware.RequireAdmin(webApp.Auth)

	// Catalog routes. The literal segments must register before the :setId
	// catch-all.
	cards := api.Group("/cards")
	cards.Get("/sets/getAllSets", webApp.GetAllSets)
	cards.Get("/sets/search", webApp.SearchSets)
	cards.Get("/card/:cardId", webApp.GetCard)
	cards.Post("/refresh/:setId", admin, middleware.AuditLogMiddleware("catalog_refresh"), webApp.RefreshSetCards)
	cards.Get("/:setId", admin, webApp.GetSetCards)

	api.Get("/booster/generate/:setId/:numCards/:boosterName", webApp.GenerateBooster)

	// Ledger routes.
	chainGroup := api.Group("/chain")
	chainGroup.Post("/users", webApp.RegisterUser)
	chainGroup.Get("/users", webApp.GetAllUsers)
	chainGroup.Get("/collections", webApp.GetAllCollections)
	chainGroup.Post("/collections", admin, middleware.AuditLogMiddleware("collection_create"), webApp.CreateCollection)
	chainGroup.Get("/players/:address/nfts", webApp.GetPlayerNFTs)
	chainGroup.Get("/cards/:tokenId", webApp.GetCardMetadata)
	chainGroup.Get("/cards/:tokenId/collection", webApp.GetCardCollection)
	chainGroup.Post("/cards/:tokenId/approve", webApp.ApproveCard)
	chainGroup.Post("/boosters", admin, middleware.AuditLogMiddleware("booster_create"), webApp.CreateBooster)
	chainGroup.Get("/boosters", webApp.GetAllBoosters)
	chainGroup.Get("/boosters/user/:address", webApp.GetPlayerBoosters)
	chainGroup.Get("/boosters/:id/cards", webApp.GetBoosterCards)
	chainGroup.Post("/boosters/:id/redeem", webApp.RedeemBooster)

	// Marketplace routes.
	market := api.Group("/market")
	market.Get("/listings", webApp.GetActiveListings)
	market.Post("/listings", webApp.ListCard)
	market.Post("/listings/:tokenId/buy", webApp.BuyCard)
	market.Delete("/listings/:tokenId", webApp.CancelListing)

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "api"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
	})
}
