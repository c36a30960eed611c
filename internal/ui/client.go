package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-cities/internal/weather"
)

var (
	errWeatherFailed  = errors.New("failed to fetch weather")
	errForecastFailed = errors.New("failed to fetch forecast")
)

// Client talks to the dashboard's own JSON API. Under wasm net/http goes
// through the browser's Fetch API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// Current returns the current weather for a city name.
func (c *Client) Current(ctx context.Context, name string) (weather.Snapshot, error) {
	q := url.Values{}
	q.Set("city", name)

	var snap weather.Snapshot
	if err := c.get(ctx, "/api/v1/weather/current", q, &snap, errWeatherFailed); err != nil {
		return weather.Snapshot{}, err
	}
	return snap, nil
}

// Forecast returns up to steps forecast entries for a city name.
func (c *Client) Forecast(ctx context.Context, name string, steps int) (weather.Forecast, error) {
	q := url.Values{}
	q.Set("city", name)
	q.Set("steps", strconv.Itoa(steps))

	var fc weather.Forecast
	if err := c.get(ctx, "/api/v1/weather/forecast", q, &fc, errForecastFailed); err != nil {
		return weather.Forecast{}, err
	}
	return fc, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any, failed error) error {
	u := fmt.Sprintf("%s%s?%s", c.BaseURL, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", failed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.ErrCityNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", failed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", failed, err)
	}
	return nil
}

// userMessage is the short reason shown under an error heading.
func userMessage(err error) string {
	if errors.Is(err, weather.ErrCityNotFound) {
		return "City not found"
	}
	return "Please try again later"
}
