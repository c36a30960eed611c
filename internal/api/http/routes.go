package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-cities/internal/weather"
)

var validate = validator.New()

// WeatherService is what the handlers need from weather.Service.
type WeatherService interface {
	Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
	Forecast(ctx context.Context, loc weather.Location, steps int) (weather.Forecast, error)
	Health() []weather.ProviderStatus
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		providers := service.Health()
		status := "ok"
		for _, p := range providers {
			if !p.Healthy {
				status = "degraded"
				break
			}
		}
		return c.JSON(fiber.Map{
			"status":    status,
			"service":   "weather-cities",
			"providers": providers,
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.Current(c.UserContext(), locReq.toLocation())
		if err != nil {
			return weatherError(err, "failed to fetch weather")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := service.Forecast(c.UserContext(), req.Location.toLocation(), req.Steps)
		if err != nil {
			return weatherError(err, "failed to fetch forecast")
		}

		return c.JSON(forecast)
	})
}

// weatherError maps service errors to HTTP errors. The not-found message is
// shown to users verbatim by the dashboard.
func weatherError(err error, fallback string) error {
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, "City not found")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, fallback)
	default:
		return fiber.NewError(fiber.StatusBadGateway, fallback)
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required,max=100"`
	Country string `validate:"omitempty,len=2,alpha"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	loc := weather.ParseLocation(c.Query("city"))
	if country := c.Query("country"); country != "" {
		loc.Country = country
	}

	q := locationQuery{City: loc.City, Country: loc.Country}
	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Location locationQuery
	Steps    int `validate:"min=1,max=40"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	f.Location = loc

	f.Steps = weather.MaxForecastSteps
	if s := c.Query("steps"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("steps must be an integer")
		}
		f.Steps = n
	}
	return nil
}
