package webapi

import (
	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/gofiber/fiber/v2"
)

// CurrencyRoutes sets up catalog routes.
func CurrencyRoutes(app *fiber.App, cat *catalog.Catalog) {
	group := app.Group("/api/currencies")

	group.Get("/crypto", ListCrypto(cat))
	group.Get("/fiat", ListFiat(cat))
	group.Get("/popular/crypto", ListPopularCrypto(cat))
	group.Get("/popular/fiat", ListPopularFiat(cat))
	group.Get("/:id", GetCurrency(cat))
}

// ListCrypto returns the supported cryptocurrencies.
// @Summary List cryptocurrencies
// @Tags currencies
// @Produce json
// @Success 200 {object} Response
// @Failure 502 {object} ProblemDetails
// @Router /api/currencies/crypto [get]
func ListCrypto(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencies, err := cat.ListCrypto(c.Context())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to list cryptocurrencies", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Cryptocurrencies fetched successfully", currencies)
	}
}

// ListFiat returns the supported fiat currencies.
// @Summary List fiat currencies
// @Tags currencies
// @Produce json
// @Success 200 {object} Response
// @Failure 502 {object} ProblemDetails
// @Router /api/currencies/fiat [get]
func ListFiat(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencies, err := cat.ListFiat(c.Context())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to list fiat currencies", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Fiat currencies fetched successfully", currencies)
	}
}

// ListPopularCrypto returns the curated crypto subset.
// @Summary List popular cryptocurrencies
// @Tags currencies
// @Produce json
// @Success 200 {object} Response
// @Router /api/currencies/popular/crypto [get]
func ListPopularCrypto(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencies, err := cat.PopularCrypto(c.Context())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to list popular cryptocurrencies", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Popular cryptocurrencies fetched successfully", currencies)
	}
}

// ListPopularFiat returns the curated fiat subset.
// @Summary List popular fiat currencies
// @Tags currencies
// @Produce json
// @Success 200 {object} Response
// @Router /api/currencies/popular/fiat [get]
func ListPopularFiat(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currencies, err := cat.PopularFiat(c.Context())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to list popular fiat currencies", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Popular fiat currencies fetched successfully", currencies)
	}
}

// GetCurrency resolves one currency id, accepting aliases like "btc".
// @Summary Get currency by id
// @Tags currencies
// @Produce json
// @Param id path string true "Currency id or ticker"
// @Success 200 {object} Response
// @Failure 404 {object} ProblemDetails
// @Router /api/currencies/{id} [get]
func GetCurrency(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Currency id is required", nil)
		}
		currency, err := cat.Lookup(c.Context(), id)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Currency not found", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched successfully", currency)
	}
}
