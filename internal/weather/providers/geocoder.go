package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-cities/internal/weather"
)

// Place is a geocoded city.
type Place struct {
	ID      int64
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (Place, error)
}

// OpenMeteoGeocoder uses the keyless Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(client *http.Client) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, loc weather.Location) (Place, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", loc.City)
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")
		if len(loc.Country) == 2 {
			values.Set("countryCode", strings.ToUpper(loc.Country))
		}

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Place{}, unexpectedStatus(resp)
	}

	var payload struct {
		Results []struct {
			ID          int64   `json:"id"`
			Name        string  `json:"name"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Place{}, err
	}
	if len(payload.Results) == 0 {
		return Place{}, weather.ErrCityNotFound
	}

	r := payload.Results[0]
	return Place{
		ID:      r.ID,
		Name:    r.Name,
		Country: r.CountryCode,
		Lat:     r.Latitude,
		Lon:     r.Longitude,
	}, nil
}

// GoogleGeocoder resolves cities through the Google Geocoding API.
// The geocoder library keeps its key in a package variable, so only one
// key can be active per process.
// Forward geocoding only yields coordinates, so the canonical city name comes
// from a reverse lookup.
type GoogleGeocoder struct {
	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (Place, error) {
	if err := ctx.Err(); err != nil {
		return Place{}, err
	}

	res, err := g.geocode(geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	})
	if err != nil {
		if containsAny(err.Error(), "ZERO_RESULTS", "no results") {
			return Place{}, weather.ErrCityNotFound
		}
		return Place{}, fmt.Errorf("google geocoding: %w", err)
	}

	return Place{
		ID:      coordinateID(res.Latitude, res.Longitude),
		Name:    g.cityName(res, loc.City),
		Country: strings.ToUpper(loc.Country),
		Lat:     res.Latitude,
		Lon:     res.Longitude,
	}, nil
}

// cityName returns the locality Google reports at loc, or fallback when the
// reverse lookup fails or names no city.
func (g *GoogleGeocoder) cityName(loc geocoder.Location, fallback string) string {
	if g.reverse == nil {
		return fallback
	}
	addrs, err := g.reverse(loc)
	if err != nil {
		log.Printf("google geocoding: reverse lookup for %s failed: %v", fallback, err)
		return fallback
	}
	for _, a := range addrs {
		if name := strings.TrimSpace(a.City); name != "" {
			return name
		}
	}
	return fallback
}
