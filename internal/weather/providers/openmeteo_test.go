package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cities/internal/weather"
)

type staticGeocoder struct {
	place Place
	err   error
}

func (g staticGeocoder) Geocode(context.Context, weather.Location) (Place, error) {
	return g.place, g.err
}

var berlin = Place{ID: 2950159, Name: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.41}

func newTestOpenMeteo(t *testing.T, geo Geocoder, handler http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewOpenMeteoProvider(srv.Client(), geo)
	p.baseURL = srv.URL
	p.httpCfg = fastConfig(srv.Client())
	return p
}

func TestOpenMeteoFetch(t *testing.T) {
	p := newTestOpenMeteo(t, staticGeocoder{place: berlin}, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "52.520000", q.Get("latitude"))
		assert.Equal(t, "13.410000", q.Get("longitude"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		assert.NotEmpty(t, q.Get("current"))
		_, _ = w.Write([]byte(`{"current": {"time": 1760875200, "temperature_2m": 8.1,
		  "relative_humidity_2m": 77, "apparent_temperature": 5.9, "precipitation": 0,
		  "weather_code": 3, "cloud_cover": 100, "pressure_msl": 1021.3,
		  "wind_speed_10m": 4.2, "wind_direction_10m": 240, "is_day": 0}}`))
	})

	snap, err := p.Fetch(context.Background(), weather.Location{City: "Berlin"})
	require.NoError(t, err)

	assert.Equal(t, int64(2950159), snap.CityID)
	assert.Equal(t, "Berlin", snap.City)
	assert.Equal(t, 8.1, snap.Temperature)
	assert.Equal(t, 5.9, snap.FeelsLike)
	assert.Equal(t, weather.ConditionCloudy, snap.Condition)
	assert.Equal(t, "overcast", snap.Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/04n@2x.png", snap.Icon)
}

func TestOpenMeteoGeocodeFailureShortCircuits(t *testing.T) {
	called := false
	p := newTestOpenMeteo(t, staticGeocoder{err: weather.ErrCityNotFound}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := p.Fetch(context.Background(), weather.Location{City: "Atlantis"})
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
	assert.False(t, called)
}

func TestOpenMeteoFetchForecast(t *testing.T) {
	start := time.Now().UTC().Truncate(time.Hour)
	var (
		times []int64
		temps []float64
		pops  []float64
		codes []int
	)
	for i := -3; i < 48; i++ {
		times = append(times, start.Add(time.Duration(i)*time.Hour).Unix())
		temps = append(temps, float64(i))
		pops = append(pops, 20)
		codes = append(codes, 61)
	}
	body, err := json.Marshal(map[string]any{
		"hourly": map[string]any{
			"time":                      times,
			"temperature_2m":            temps,
			"precipitation_probability": pops,
			"weather_code":              codes,
		},
	})
	require.NoError(t, err)

	p := newTestOpenMeteo(t, staticGeocoder{place: berlin}, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("hourly"))
		_, _ = w.Write(body)
	})

	fc, err := p.FetchForecast(context.Background(), weather.Location{City: "Berlin"}, 8)
	require.NoError(t, err)

	assert.Equal(t, "Berlin", fc.City)
	require.Len(t, fc.Entries, 8)
	for i, e := range fc.Entries {
		assert.Equal(t, start.Add(time.Duration(i)*weather.ForecastStep), e.Timestamp)
		assert.Equal(t, float64(i*3), e.Temperature)
		assert.Equal(t, 0.2, e.PrecipChance)
		assert.Equal(t, weather.ConditionRain, e.Condition)
	}
}

func TestOpenMeteoGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("name") {
		case "Berlin":
			assert.Equal(t, "DE", r.URL.Query().Get("countryCode"))
			_, _ = w.Write([]byte(`{"results":[{"id":2950159,"name":"Berlin","latitude":52.52437,
			  "longitude":13.41053,"country_code":"DE","country":"Germany"}]}`))
		default:
			_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
		}
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(srv.Client())
	g.baseURL = srv.URL
	g.httpCfg = fastConfig(srv.Client())

	place, err := g.Geocode(context.Background(), weather.Location{City: "Berlin", Country: "de"})
	require.NoError(t, err)
	assert.Equal(t, int64(2950159), place.ID)
	assert.Equal(t, "DE", place.Country)

	_, err = g.Geocode(context.Background(), weather.Location{City: "Atlantis"})
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestGoogleGeocoder(t *testing.T) {
	g := &GoogleGeocoder{geocode: func(a geocoder.Address) (geocoder.Location, error) {
		if a.City == "Kyiv" {
			return geocoder.Location{Latitude: 50.45, Longitude: 30.52}, nil
		}
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	}}

	place, err := g.Geocode(context.Background(), weather.Location{City: "Kyiv", Country: "ua"})
	require.NoError(t, err)
	assert.Equal(t, coordinateID(50.45, 30.52), place.ID)
	assert.Equal(t, "UA", place.Country)
	assert.Equal(t, "Kyiv", place.Name)

	_, err = g.Geocode(context.Background(), weather.Location{City: "Atlantis"})
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestGoogleGeocoderUsesResolvedName(t *testing.T) {
	g := &GoogleGeocoder{
		geocode: func(geocoder.Address) (geocoder.Location, error) {
			return geocoder.Location{Latitude: 50.45, Longitude: 30.52}, nil
		},
		reverse: func(l geocoder.Location) ([]geocoder.Address, error) {
			assert.Equal(t, 50.45, l.Latitude)
			return []geocoder.Address{{Street: "Khreshchatyk"}, {City: "Kyiv"}}, nil
		},
	}

	place, err := g.Geocode(context.Background(), weather.Location{City: "  kyiv  "})
	require.NoError(t, err)
	assert.Equal(t, "Kyiv", place.Name)

	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return nil, errors.New("OVER_QUERY_LIMIT")
	}
	place, err = g.Geocode(context.Background(), weather.Location{City: "Kyiv"})
	require.NoError(t, err)
	assert.Equal(t, "Kyiv", place.Name)
}

func TestApplyWMOCode(t *testing.T) {
	var snap weather.Snapshot

	applyWMOCode(&snap, 95, true)
	assert.Equal(t, weather.ConditionStorm, snap.Condition)
	assert.Equal(t, "https://openweathermap.org/img/wn/11d@2x.png", snap.Icon)

	applyWMOCode(&snap, 73, false)
	assert.Equal(t, weather.ConditionSnow, snap.Condition)
	assert.Equal(t, "https://openweathermap.org/img/wn/13n@2x.png", snap.Icon)
}
