package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cities/internal/weather"
)

const owmCurrentBody = `{
  "coord": {"lon": 30.5167, "lat": 50.4333},
  "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": 12.4, "feels_like": 11.2, "temp_min": 11, "temp_max": 13, "pressure": 1015, "humidity": 71},
  "visibility": 10000,
  "wind": {"speed": 3.6, "deg": 250},
  "clouds": {"all": 75},
  "dt": 1760875200,
  "sys": {"country": "UA"},
  "id": 703448,
  "name": "Kyiv",
  "cod": 200
}`

const owmForecastBody = `{
  "cod": "200",
  "cnt": 2,
  "list": [
    {"dt": 1760875200, "main": {"temp": 12, "feels_like": 11, "pressure": 1015, "humidity": 70},
     "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
     "clouds": {"all": 90}, "wind": {"speed": 4, "deg": 180}, "visibility": 8000, "pop": 0.65,
     "rain": {"3h": 1.2}},
    {"dt": 1760886000, "main": {"temp": 10, "feels_like": 9, "pressure": 1016, "humidity": 80},
     "weather": [{"main": "Clear", "description": "clear sky", "icon": "01n"}],
     "clouds": {"all": 0}, "wind": {"speed": 2, "deg": 90}, "visibility": 10000, "pop": 0}
  ],
  "city": {"id": 703448, "name": "Kyiv", "country": "UA"}
}`

func newTestOpenWeather(t *testing.T, handler http.HandlerFunc) *OpenWeatherProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL
	p.httpCfg = fastConfig(srv.Client())
	return p
}

func TestOpenWeatherFetch(t *testing.T) {
	p := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Kyiv", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(owmCurrentBody))
	})

	snap, err := p.Fetch(context.Background(), weather.Location{City: "Kyiv"})
	require.NoError(t, err)

	assert.Equal(t, int64(703448), snap.CityID)
	assert.Equal(t, "Kyiv", snap.City)
	assert.Equal(t, "UA", snap.Country)
	assert.Equal(t, 12.4, snap.Temperature)
	assert.Equal(t, 11.2, snap.FeelsLike)
	assert.Equal(t, 71.0, snap.Humidity)
	assert.Equal(t, 3.6, snap.WindSpeed)
	assert.Equal(t, 1015.0, snap.Pressure)
	assert.Equal(t, weather.ConditionCloudy, snap.Condition)
	assert.Equal(t, "Clouds", snap.Summary)
	assert.Equal(t, "broken clouds", snap.Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/04d@2x.png", snap.Icon)
	assert.Equal(t, time.Unix(1760875200, 0).UTC(), snap.Timestamp)
}

func TestOpenWeatherNotFound(t *testing.T) {
	p := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})

	_, err := p.Fetch(context.Background(), weather.Location{City: "Atlantis"})
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestOpenWeatherUnauthorized(t *testing.T) {
	p := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := p.Fetch(context.Background(), weather.Location{City: "Kyiv"})
	assert.True(t, errors.Is(err, errUnexpected), "got %v", err)
}

func TestOpenWeatherMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")

	_, err := p.Fetch(context.Background(), weather.Location{City: "Kyiv"})
	assert.Error(t, err)
}

func TestOpenWeatherFetchForecast(t *testing.T) {
	p := newTestOpenWeather(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "Paris,FR", r.URL.Query().Get("q"))
		assert.Equal(t, "8", r.URL.Query().Get("cnt"))
		_, _ = w.Write([]byte(owmForecastBody))
	})

	fc, err := p.FetchForecast(context.Background(), weather.Location{City: "Paris", Country: "FR"}, 8)
	require.NoError(t, err)

	assert.Equal(t, "Kyiv", fc.City)
	assert.Equal(t, int64(703448), fc.CityID)
	require.Len(t, fc.Entries, 2)

	first := fc.Entries[0]
	assert.Equal(t, weather.ConditionRain, first.Condition)
	assert.Equal(t, 0.65, first.PrecipChance)
	assert.Equal(t, 1.2, first.PrecipMM)
	assert.Equal(t, 8000.0, first.Visibility)
	assert.Equal(t, 90.0, first.Cloudiness)
	assert.Equal(t, weather.ForecastStep, fc.Entries[1].Timestamp.Sub(first.Timestamp))
}

func TestMapOpenWeatherCondition(t *testing.T) {
	cases := map[string]weather.Condition{
		"Clear":        weather.ConditionClear,
		"Drizzle":      weather.ConditionRain,
		"Snow":         weather.ConditionSnow,
		"Thunderstorm": weather.ConditionStorm,
		"Fog":          weather.ConditionMist,
		"Tornado":      weather.ConditionUnknown,
	}
	for main, want := range cases {
		got := mapOpenWeatherCondition([]owmCondition{{Main: main}})
		assert.Equal(t, want, got, main)
	}
	assert.Equal(t, weather.ConditionUnknown, mapOpenWeatherCondition(nil))
}
