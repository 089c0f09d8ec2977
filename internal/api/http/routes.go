package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cangcimen/uv-index-api/internal/forecast"
	"github.com/cangcimen/uv-index-api/internal/geo"
	"github.com/cangcimen/uv-index-api/internal/uvindex"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *uvindex.Service) {
	app.Get("/", handleRoot)
	app.Get("/status", handleStatus)

	app.Post("/predict", func(c *fiber.Ctx) error {
		var req predictRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		result, err := service.Predict(c.UserContext(), req.City, req.Date)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		return c.JSON(fiber.Map{
			"status": "success",
			"data": fiber.Map{
				"city":               result.City,
				"coordinates":        result.Coordinate,
				"date":               result.Forecast.Date.Format("2006-01-02"),
				"predicted_uv_index": result.Forecast.UVIndex,
				"uv_risk_level":      result.Forecast.RiskLevel,
			},
		})
	})

	app.Post("/predict-fortnight", func(c *fiber.Ctx) error {
		var req fortnightRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		result, err := service.PredictFortnight(c.UserContext(), req.City, req.StartDate)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		days := make([]fiber.Map, 0, len(result.Days))
		for _, d := range result.Days {
			days = append(days, fiber.Map{
				"date":               d.Date.Format("2006-01-02"),
				"predicted_uv_index": d.UVIndex,
				"uv_risk_level":      d.RiskLevel,
			})
		}

		return c.JSON(fiber.Map{
			"status": "success",
			"data": fiber.Map{
				"city":        result.City,
				"coordinates": result.Coordinate,
				"total_days":  len(result.Days),
				"predictions": days,
			},
		})
	})

	app.Post("/predict-realtime", func(c *fiber.Ctx) error {
		var req realtimeRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		predictions, err := service.PredictRealtime(c.UserContext(), req.APIKey, req.City)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		out := make([]fiber.Map, 0, len(predictions))
		for _, p := range predictions {
			out = append(out, fiber.Map{
				"datetime":          p.Timestamp.Format("2006-01-02 15:04"),
				"predicted_uvIndex": p.UVIndex,
				"uv_category":       p.RiskLevel,
			})
		}

		return c.JSON(fiber.Map{
			"status":      "success",
			"predictions": out,
		})
	})
}

type predictRequest struct {
	City string `json:"city" validate:"required"`
	Date string `json:"date" validate:"required"`
}

type fortnightRequest struct {
	City      string `json:"city" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
}

type realtimeRequest struct {
	APIKey string `json:"api_key"`
	City   string `json:"city" validate:"required"`
}

// bind parses and validates a JSON request body.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// statusForError is the single error-kind to HTTP-status mapping: request
// validation failures map to 400, upstream weather API failures to 502, and
// everything else (malformed payloads, shape mismatches) to 500.
func statusForError(err error) int {
	var upstream *forecast.UpstreamError

	switch {
	case errors.Is(err, geo.ErrUnknownCity),
		errors.Is(err, uvindex.ErrInvalidDateFormat),
		errors.Is(err, uvindex.ErrDateInPast),
		errors.Is(err, uvindex.ErrMissingAPIKey):
		return fiber.StatusBadRequest
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to UV Index Prediction API!",
		"service": "uv-index-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"cities":  geo.Cities(),
		"endpoints": []string{
			"POST /predict",
			"POST /predict-fortnight",
			"POST /predict-realtime",
			"GET /status",
		},
	})
}

func handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}
