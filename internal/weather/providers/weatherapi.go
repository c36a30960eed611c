package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-cities/internal/weather"
	"github.com/sony/gobreaker"
)

// weatherAPINoMatch is WeatherAPI's error code for an unknown location.
const weatherAPINoMatch = 1006

// WeatherAPIProvider implements weather.ForecastProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuit("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPILocation struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type weatherAPIReading struct {
	TimeEpoch    int64   `json:"time_epoch"`
	LastUpdated  int64   `json:"last_updated_epoch"`
	TempC        float64 `json:"temp_c"`
	FeelsLikeC   float64 `json:"feelslike_c"`
	Humidity     float64 `json:"humidity"`
	WindKph      float64 `json:"wind_kph"`
	WindDegree   float64 `json:"wind_degree"`
	PressureMb   float64 `json:"pressure_mb"`
	PrecipMm     float64 `json:"precip_mm"`
	Cloud        float64 `json:"cloud"`
	VisKm        float64 `json:"vis_km"`
	ChanceOfRain float64 `json:"chance_of_rain"`
	ChanceOfSnow float64 `json:"chance_of_snow"`
	Condition    struct {
		Text string `json:"text"`
		Icon string `json:"icon"`
	} `json:"condition"`
}

func (r weatherAPIReading) snapshot(loc weatherAPILocation) weather.Snapshot {
	epoch := r.TimeEpoch
	if epoch == 0 {
		epoch = r.LastUpdated
	}
	ts := time.Now().UTC()
	if epoch != 0 {
		ts = time.Unix(epoch, 0).UTC()
	}

	icon := r.Condition.Icon
	if strings.HasPrefix(icon, "//") {
		icon = "https:" + icon
	}

	return weather.Snapshot{
		CityID:      coordinateID(loc.Lat, loc.Lon),
		City:        loc.Name,
		Country:     loc.Country,
		Timestamp:   ts,
		Temperature: r.TempC,
		FeelsLike:   r.FeelsLikeC,
		Humidity:    r.Humidity,
		// Convert wind from kph to m/s.
		WindSpeed:    r.WindKph / 3.6,
		WindDeg:      r.WindDegree,
		Pressure:     r.PressureMb,
		Visibility:   r.VisKm * 1000,
		Cloudiness:   r.Cloud,
		PrecipChance: max(r.ChanceOfRain, r.ChanceOfSnow) / 100,
		PrecipMM:     r.PrecipMm,
		Condition:    mapWeatherAPICondition(r.Condition.Text),
		Summary:      r.Condition.Text,
		Description:  strings.ToLower(r.Condition.Text),
		Icon:         icon,
	}
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	var payload struct {
		Location weatherAPILocation `json:"location"`
		Current  weatherAPIReading  `json:"current"`
	}
	if err := p.get(ctx, "/current.json", loc, nil, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	snap := payload.Current.snapshot(payload.Location)
	snap.Provider = p.name
	return snap, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, steps int) (weather.Forecast, error) {
	// Hourly data, sampled every ForecastStep. Three days covers the default
	// 24h view; longer requests ask for more.
	days := 3
	if need := (steps*int(weather.ForecastStep/time.Hour))/24 + 1; need > days {
		days = min(need, 10)
	}
	extra := url.Values{}
	extra.Set("days", fmt.Sprintf("%d", days))

	var payload struct {
		Location weatherAPILocation `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Hour []weatherAPIReading `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := p.get(ctx, "/forecast.json", loc, extra, &payload); err != nil {
		return weather.Forecast{}, err
	}

	fc := weather.Forecast{
		CityID:   coordinateID(payload.Location.Lat, payload.Location.Lon),
		City:     payload.Location.Name,
		Country:  payload.Location.Country,
		Provider: p.name,
	}

	// Start at the current hour and keep every ForecastStep-th hour.
	from := time.Now().UTC().Truncate(time.Hour).Unix()
	stride := int(weather.ForecastStep / time.Hour)
	n := 0
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			if h.TimeEpoch < from {
				continue
			}
			if n%stride == 0 {
				snap := h.snapshot(payload.Location)
				snap.Provider = p.name
				fc.Entries = append(fc.Entries, snap)
			}
			n++
		}
	}
	return fc.Truncate(steps), nil
}

func (p *WeatherAPIProvider) get(ctx context.Context, path string, loc weather.Location, extra url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range extra {
			values[k] = v
		}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		values.Set("q", loc.Query())

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Code == weatherAPINoMatch {
			return weather.ErrCityNotFound
		}
		return unexpectedStatus(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case containsAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case containsAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case containsAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case containsAny(text, "mist", "fog"):
		return weather.ConditionMist
	case containsAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case containsAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
