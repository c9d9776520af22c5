package webapi

import (
	"github.com/coinwatch/coinwatch/pkg/convert"
	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/rates"
	"github.com/gofiber/fiber/v2"
)

// ConvertRequest is the conversion request body.
type ConvertRequest struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// ConvertResponse is the conversion result payload.
type ConvertResponse struct {
	FromAmount        float64             `json:"from_amount"`
	ToAmount          float64             `json:"to_amount"`
	FormattedToAmount string              `json:"formatted_to_amount"`
	Rate              domain.ExchangeRate `json:"rate"`
}

// ConvertRoutes sets up the conversion route.
func ConvertRoutes(app *fiber.App, engine *rates.Engine) {
	group := app.Group("/api/convert")

	group.Post("/", Convert(engine))
	group.Post("/refresh", ConvertFresh(engine))
}

// Convert resolves a rate and applies it to the requested amount.
// @Summary Convert an amount between two currencies
// @Tags convert
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Conversion request"
// @Success 200 {object} Response
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Failure 502 {object} ProblemDetails
// @Router /api/convert [post]
func Convert(engine *rates.Engine) fiber.Handler {
	return convertHandler(engine, false)
}

// ConvertFresh is Convert with the rate cache bypassed.
// @Summary Convert with a forced rate refresh
// @Tags convert
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Conversion request"
// @Success 200 {object} Response
// @Router /api/convert/refresh [post]
func ConvertFresh(engine *rates.Engine) fiber.Handler {
	return convertHandler(engine, true)
}

func convertHandler(engine *rates.Engine, fresh bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[ConvertRequest](c)
		if input == nil {
			return err
		}

		var rate *domain.ExchangeRate
		if fresh {
			rate, err = engine.Refresh(c.Context(), input.From, input.To)
		} else {
			rate, err = engine.Resolve(c.Context(), input.From, input.To)
		}
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Conversion failed", err.Error())
		}

		toAmount := convert.Apply(rate, input.Amount)
		return SuccessResponseJSON(c, fiber.StatusOK, "Conversion succeeded", ConvertResponse{
			FromAmount:        input.Amount,
			ToAmount:          toAmount,
			FormattedToAmount: convert.FormatAmount(toAmount),
			Rate:              *rate,
		})
	}
}
