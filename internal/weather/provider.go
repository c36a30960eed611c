package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Snapshot, error)
}

// ForecastProvider is implemented by providers that can also return a
// forecast. Entries must be ForecastStep apart and ordered by time.
type ForecastProvider interface {
	Provider
	FetchForecast(ctx context.Context, loc Location, steps int) (Forecast, error)
}
