package weather

import (
	"errors"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

const (
	// ForecastStep is the fixed spacing between forecast entries.
	ForecastStep = 3 * time.Hour

	// MaxForecastSteps covers five days at ForecastStep.
	MaxForecastSteps = 40
)

var (
	// ErrCityNotFound is returned when no provider knows the requested city.
	ErrCityNotFound = errors.New("city not found")

	// ErrUnavailable is returned when providers failed for other reasons.
	ErrUnavailable = errors.New("weather data unavailable")
)

// Location is a city name with an optional ISO country code.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// ParseLocation splits "Paris, FR" into city and country. Input without a
// comma is treated as a bare city name.
func ParseLocation(s string) Location {
	city, country, _ := strings.Cut(s, ",")
	return Location{
		City:    strings.TrimSpace(city),
		Country: strings.TrimSpace(country),
	}
}

// Query returns the "city,country" form most providers accept.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// Key returns a canonical string key for logging and status tracking.
func (l Location) Key() string {
	return strings.ToLower(l.City) + ":" + strings.ToLower(l.Country)
}

// Snapshot is a normalized weather reading for one city at a point in time.
type Snapshot struct {
	CityID    int64     `json:"cityId"`
	City      string    `json:"city"`
	Country   string    `json:"country,omitempty"`
	Timestamp time.Time `json:"timestamp"` // always UTC

	Temperature  float64 `json:"temperatureC"`
	FeelsLike    float64 `json:"feelsLikeC"`
	Humidity     float64 `json:"humidityPercent"`
	WindSpeed    float64 `json:"windSpeed"` // m/s
	WindDeg      float64 `json:"windDeg"`
	Pressure     float64 `json:"pressureHpa"`
	Visibility   float64 `json:"visibilityM,omitempty"`
	Cloudiness   float64 `json:"cloudinessPercent"`
	PrecipChance float64 `json:"precipChance"` // 0..1, forecasts only
	PrecipMM     float64 `json:"precipMm"`

	Condition   Condition `json:"condition"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"` // absolute URL

	Provider string `json:"provider"`
}

// Forecast is an ordered sequence of snapshots, ForecastStep apart, for one
// city.
type Forecast struct {
	CityID   int64      `json:"cityId"`
	City     string     `json:"city"`
	Country  string     `json:"country,omitempty"`
	Provider string     `json:"provider"`
	Entries  []Snapshot `json:"entries"`
}

// Truncate keeps at most n entries.
func (f Forecast) Truncate(n int) Forecast {
	if n >= 0 && len(f.Entries) > n {
		f.Entries = f.Entries[:n]
	}
	return f
}

// ProviderStatus describes the outcome of the latest call to a provider.
type ProviderStatus struct {
	Name      string    `json:"provider"`
	Healthy   bool      `json:"healthy"`
	LastError string    `json:"lastError,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}
