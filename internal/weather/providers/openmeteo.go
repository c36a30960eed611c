package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-cities/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	openMeteoCurrentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation," +
		"weather_code,cloud_cover,pressure_msl,wind_speed_10m,wind_direction_10m,is_day"
	openMeteoHourlyFields = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation_probability," +
		"precipitation,weather_code,cloud_cover,pressure_msl,visibility,wind_speed_10m,wind_direction_10m,is_day"
)

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo.
// Open-Meteo works on coordinates, so every call geocodes the city first.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	geocoder Geocoder
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	if geo == nil {
		geo = NewOpenMeteoGeocoder(client)
	}

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		geocoder: geo,
		httpCfg:  defaultHTTPConfig(client),
		circuit:  newCircuit("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoCurrent struct {
	Time                int64   `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	Humidity            float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
	CloudCover          float64 `json:"cloud_cover"`
	PressureMSL         float64 `json:"pressure_msl"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WindDirection       float64 `json:"wind_direction_10m"`
	IsDay               int     `json:"is_day"`
}

type openMeteoHourly struct {
	Time                     []int64   `json:"time"`
	Temperature              []float64 `json:"temperature_2m"`
	Humidity                 []float64 `json:"relative_humidity_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	Precipitation            []float64 `json:"precipitation"`
	WeatherCode              []int     `json:"weather_code"`
	CloudCover               []float64 `json:"cloud_cover"`
	PressureMSL              []float64 `json:"pressure_msl"`
	Visibility               []float64 `json:"visibility"`
	WindSpeed                []float64 `json:"wind_speed_10m"`
	WindDirection            []float64 `json:"wind_direction_10m"`
	IsDay                    []int     `json:"is_day"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	place, err := p.geocoder.Geocode(ctx, loc)
	if err != nil {
		return weather.Snapshot{}, err
	}

	extra := url.Values{}
	extra.Set("current", openMeteoCurrentFields)

	var payload struct {
		Current openMeteoCurrent `json:"current"`
	}
	if err := p.get(ctx, place, extra, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	c := payload.Current
	ts := time.Unix(c.Time, 0).UTC()
	if c.Time == 0 {
		ts = time.Now().UTC()
	}

	snap := weather.Snapshot{
		Timestamp:   ts,
		Temperature: c.Temperature,
		FeelsLike:   c.ApparentTemperature,
		Humidity:    c.Humidity,
		WindSpeed:   c.WindSpeed,
		WindDeg:     c.WindDirection,
		Pressure:    c.PressureMSL,
		Cloudiness:  c.CloudCover,
		PrecipMM:    c.Precipitation,
		Provider:    p.name,
	}
	applyPlace(&snap, place)
	applyWMOCode(&snap, c.WeatherCode, c.IsDay == 1)
	return snap, nil
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, steps int) (weather.Forecast, error) {
	place, err := p.geocoder.Geocode(ctx, loc)
	if err != nil {
		return weather.Forecast{}, err
	}

	days := (steps*int(weather.ForecastStep/time.Hour))/24 + 2
	extra := url.Values{}
	extra.Set("hourly", openMeteoHourlyFields)
	extra.Set("forecast_days", fmt.Sprintf("%d", min(days, 16)))

	var payload struct {
		Hourly openMeteoHourly `json:"hourly"`
	}
	if err := p.get(ctx, place, extra, &payload); err != nil {
		return weather.Forecast{}, err
	}

	fc := weather.Forecast{
		CityID:   place.ID,
		City:     place.Name,
		Country:  place.Country,
		Provider: p.name,
	}

	h := payload.Hourly
	from := time.Now().UTC().Truncate(time.Hour).Unix()
	stride := int(weather.ForecastStep / time.Hour)
	n := 0
	for i, t := range h.Time {
		if t < from {
			continue
		}
		if n%stride == 0 {
			snap := weather.Snapshot{
				Timestamp:    time.Unix(t, 0).UTC(),
				Temperature:  at(h.Temperature, i),
				FeelsLike:    at(h.ApparentTemperature, i),
				Humidity:     at(h.Humidity, i),
				WindSpeed:    at(h.WindSpeed, i),
				WindDeg:      at(h.WindDirection, i),
				Pressure:     at(h.PressureMSL, i),
				Visibility:   at(h.Visibility, i),
				Cloudiness:   at(h.CloudCover, i),
				PrecipChance: at(h.PrecipitationProbability, i) / 100,
				PrecipMM:     at(h.Precipitation, i),
				Provider:     p.name,
			}
			applyPlace(&snap, place)
			applyWMOCode(&snap, at(h.WeatherCode, i), at(h.IsDay, i) == 1)
			fc.Entries = append(fc.Entries, snap)
		}
		n++
	}
	return fc.Truncate(steps), nil
}

func (p *OpenMeteoProvider) get(ctx context.Context, place Place, extra url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range extra {
			values[k] = v
		}
		values.Set("latitude", fmt.Sprintf("%f", place.Lat))
		values.Set("longitude", fmt.Sprintf("%f", place.Lon))
		values.Set("wind_speed_unit", "ms")
		values.Set("timeformat", "unixtime")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unexpectedStatus(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func at[T any](s []T, i int) T {
	var zero T
	if i < 0 || i >= len(s) {
		return zero
	}
	return s[i]
}

func applyPlace(snap *weather.Snapshot, place Place) {
	snap.CityID = place.ID
	if snap.CityID == 0 {
		snap.CityID = coordinateID(place.Lat, place.Lon)
	}
	snap.City = place.Name
	snap.Country = place.Country
}

// applyWMOCode fills condition, summary, description and an
// OpenWeatherMap-style icon from a WMO weather interpretation code.
func applyWMOCode(snap *weather.Snapshot, code int, isDay bool) {
	var (
		cond    weather.Condition
		summary string
		desc    string
		icon    string
	)

	switch {
	case code == 0:
		cond, summary, desc, icon = weather.ConditionClear, "Clear", "clear sky", "01"
	case code == 1:
		cond, summary, desc, icon = weather.ConditionClear, "Clear", "mainly clear", "02"
	case code == 2:
		cond, summary, desc, icon = weather.ConditionCloudy, "Clouds", "partly cloudy", "03"
	case code == 3:
		cond, summary, desc, icon = weather.ConditionCloudy, "Clouds", "overcast", "04"
	case code == 45 || code == 48:
		cond, summary, desc, icon = weather.ConditionMist, "Fog", "fog", "50"
	case code >= 51 && code <= 57:
		cond, summary, desc, icon = weather.ConditionRain, "Drizzle", "drizzle", "09"
	case code >= 61 && code <= 67:
		cond, summary, desc, icon = weather.ConditionRain, "Rain", "rain", "10"
	case code >= 71 && code <= 77:
		cond, summary, desc, icon = weather.ConditionSnow, "Snow", "snow", "13"
	case code >= 80 && code <= 82:
		cond, summary, desc, icon = weather.ConditionRain, "Rain", "rain showers", "09"
	case code == 85 || code == 86:
		cond, summary, desc, icon = weather.ConditionSnow, "Snow", "snow showers", "13"
	case code >= 95:
		cond, summary, desc, icon = weather.ConditionStorm, "Thunderstorm", "thunderstorm", "11"
	default:
		cond, summary, desc = weather.ConditionUnknown, "Unknown", "unknown"
	}

	snap.Condition = cond
	snap.Summary = summary
	snap.Description = desc
	if icon != "" {
		if isDay {
			icon += "d"
		} else {
			icon += "n"
		}
		snap.Icon = owmIconURL(icon)
	}
}
