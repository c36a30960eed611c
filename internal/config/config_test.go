package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cities/internal/weather"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY", "GEOCODER_API_KEY", "PROVIDERS",
		"HTTP_TIMEOUT", "HEALTH_PROBE_INTERVAL", "HEALTH_PROBE_CITY", "PORT", "DEV", "APP_VERSION",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{ProviderOpenWeather, ProviderWeatherAPI, ProviderOpenMeteo}, cfg.Providers)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ProbeInterval)
	assert.Equal(t, weather.Location{City: "London", Country: "GB"}, cfg.ProbeLocation)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Dev)

	// Without keys only the keyless provider remains.
	assert.Equal(t, []string{ProviderOpenMeteo}, cfg.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "owm")
	t.Setenv("PROVIDERS", " OpenMeteo , openweathermap,openmeteo")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("HEALTH_PROBE_CITY", "Kyiv")
	t.Setenv("DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{ProviderOpenMeteo, ProviderOpenWeather}, cfg.Providers)
	assert.Equal(t, []string{ProviderOpenMeteo, ProviderOpenWeather}, cfg.Enabled())
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, weather.Location{City: "Kyiv"}, cfg.ProbeLocation)
	assert.True(t, cfg.Dev)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDERS", "darksky")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("HEALTH_PROBE_INTERVAL", "often")
	_, err = Load()
	assert.Error(t, err)
}
