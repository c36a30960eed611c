package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-cities/internal/weather"
)

// Provider names accepted in PROVIDERS.
const (
	ProviderOpenWeather = "openweathermap"
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	// GeocoderAPIKey switches Open-Meteo geocoding to Google when set.
	GeocoderAPIKey string

	// Providers lists provider names in failover order.
	Providers []string

	HTTPTimeout time.Duration

	// Provider health probing.
	ProbeInterval time.Duration
	ProbeLocation weather.Location

	Port    string
	Dev     bool
	Version string
}

// Load reads configuration from environment with sensible defaults.
// The caller is expected to have loaded .env already.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	providers, err := parseProviders(getenvDefault("PROVIDERS", "openweathermap,weatherapi,openmeteo"))
	if err != nil {
		return nil, err
	}
	cfg.Providers = providers

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Probe interval: default 15 minutes, 0 disables probing.
	interval, err := time.ParseDuration(getenvDefault("HEALTH_PROBE_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_PROBE_INTERVAL: %w", err)
	}
	cfg.ProbeInterval = interval
	cfg.ProbeLocation = weather.ParseLocation(getenvDefault("HEALTH_PROBE_CITY", "London,GB"))

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Dev = getenvBool("DEV", false)
	cfg.Version = getenvDefault("APP_VERSION", "dev")

	return cfg, nil
}

// Enabled drops providers that cannot work with the configured keys.
// Open-Meteo needs no key.
func (c *AppConfig) Enabled() []string {
	var out []string
	for _, name := range c.Providers {
		switch {
		case name == ProviderOpenWeather && c.OpenWeatherAPIKey == "":
		case name == ProviderWeatherAPI && c.WeatherAPIKey == "":
		default:
			out = append(out, name)
		}
	}
	return out
}

func parseProviders(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		switch name {
		case ProviderOpenWeather, ProviderWeatherAPI, ProviderOpenMeteo:
		default:
			return nil, fmt.Errorf("invalid PROVIDERS entry %q", name)
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("PROVIDERS must name at least one provider")
	}
	return out, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
