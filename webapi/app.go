// Package webapi exposes the conversion core over HTTP for UI shells.
package webapi

import (
	"log/slog"
	"time"

	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/rates"
	"github.com/coinwatch/coinwatch/pkg/watchlist"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps carries the services the API serves.
type Deps struct {
	Catalog   *catalog.Catalog
	Engine    *rates.Engine
	Watchlist *watchlist.Service
	Logger    *slog.Logger
}

// NewApp builds the fiber application with all routes registered.
func NewApp(deps Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("coinwatch API is up")
	})

	CurrencyRoutes(app, deps.Catalog)
	ConvertRoutes(app, deps.Engine)
	WatchlistRoutes(app, deps.Watchlist)

	return app
}
