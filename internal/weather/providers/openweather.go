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

// OpenWeatherProvider implements weather.ForecastProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmReading struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []owmCondition `json:"weather"`
	Clouds  struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"snow"`
	Visibility float64 `json:"visibility"`
	Pop        float64 `json:"pop"`
}

func (r owmReading) snapshot() weather.Snapshot {
	ts := time.Unix(r.Dt, 0).UTC()
	if r.Dt == 0 {
		ts = time.Now().UTC()
	}

	precip := r.Rain.OneH + r.Snow.OneH
	if precip == 0 {
		precip = r.Rain.ThreeH + r.Snow.ThreeH
	}

	snap := weather.Snapshot{
		Timestamp:    ts,
		Temperature:  r.Main.Temp,
		FeelsLike:    r.Main.FeelsLike,
		Humidity:     r.Main.Humidity,
		WindSpeed:    r.Wind.Speed,
		WindDeg:      r.Wind.Deg,
		Pressure:     r.Main.Pressure,
		Visibility:   r.Visibility,
		Cloudiness:   r.Clouds.All,
		PrecipChance: r.Pop,
		PrecipMM:     precip,
		Condition:    mapOpenWeatherCondition(r.Weather),
	}
	if len(r.Weather) > 0 {
		snap.Summary = r.Weather[0].Main
		snap.Description = r.Weather[0].Description
		snap.Icon = owmIconURL(r.Weather[0].Icon)
	}
	return snap
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	var payload struct {
		owmReading
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	if err := p.get(ctx, "/weather", loc, nil, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	snap := payload.snapshot()
	snap.CityID = payload.ID
	snap.City = payload.Name
	snap.Country = payload.Sys.Country
	snap.Provider = p.name
	return snap, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, steps int) (weather.Forecast, error) {
	extra := url.Values{}
	if steps > 0 {
		extra.Set("cnt", fmt.Sprintf("%d", steps))
	}

	var payload struct {
		List []owmReading `json:"list"`
		City struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
	}
	if err := p.get(ctx, "/forecast", loc, extra, &payload); err != nil {
		return weather.Forecast{}, err
	}

	fc := weather.Forecast{
		CityID:   payload.City.ID,
		City:     payload.City.Name,
		Country:  payload.City.Country,
		Provider: p.name,
		Entries:  make([]weather.Snapshot, 0, len(payload.List)),
	}
	for _, r := range payload.List {
		snap := r.snapshot()
		snap.CityID = fc.CityID
		snap.City = fc.City
		snap.Country = fc.Country
		snap.Provider = p.name
		fc.Entries = append(fc.Entries, snap)
	}
	return fc, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, loc weather.Location, extra url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range extra {
			values[k] = v
		}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("q", loc.Query())

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.ErrCityNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return unexpectedStatus(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func mapOpenWeatherCondition(items []owmCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
