package webapi

import (
	"github.com/coinwatch/coinwatch/pkg/watchlist"
	"github.com/gofiber/fiber/v2"
)

// WatchlistRequest is the add-to-watchlist body.
type WatchlistRequest struct {
	CurrencyID string `json:"currency_id" validate:"required"`
}

// WatchlistRoutes sets up favorites routes.
func WatchlistRoutes(app *fiber.App, svc *watchlist.Service) {
	group := app.Group("/api/watchlist")

	group.Get("/", ListWatchlist(svc))
	group.Post("/", AddToWatchlist(svc))
	group.Delete("/:id", RemoveFromWatchlist(svc))
}

// ListWatchlist returns the favorited currencies.
// @Summary List watchlist
// @Tags watchlist
// @Produce json
// @Success 200 {object} Response
// @Router /api/watchlist [get]
func ListWatchlist(svc *watchlist.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencies, err := svc.List(c.Context())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to list watchlist", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Watchlist fetched successfully", currencies)
	}
}

// AddToWatchlist favorites a currency.
// @Summary Add a currency to the watchlist
// @Tags watchlist
// @Accept json
// @Produce json
// @Param request body WatchlistRequest true "Currency to add"
// @Success 201 {object} Response
// @Failure 404 {object} ProblemDetails
// @Router /api/watchlist [post]
func AddToWatchlist(svc *watchlist.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[WatchlistRequest](c)
		if input == nil {
			return err
		}
		currency, err := svc.Add(c.Context(), input.CurrencyID)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to add to watchlist", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Currency added to watchlist", currency)
	}
}

// RemoveFromWatchlist unfavorites a currency.
// @Summary Remove a currency from the watchlist
// @Tags watchlist
// @Produce json
// @Param id path string true "Currency id"
// @Success 200 {object} Response
// @Router /api/watchlist/{id} [delete]
func RemoveFromWatchlist(svc *watchlist.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Currency id is required", nil)
		}
		if err := svc.Remove(c.Context(), id); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to remove from watchlist", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Currency removed from watchlist", nil)
	}
}
