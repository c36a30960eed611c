package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/city"
	"github.com/i474232898/weather-cities/internal/weather"
)

var _ app.Navigator = (*CityPage)(nil)

// CityPage is the "/<city id>" page with the next 24 hours of forecast.
type CityPage struct {
	app.Compo

	city     city.City
	tracked  bool
	forecast *weather.Forecast
	err      error
	loading  bool
}

func (p *CityPage) OnNav(ctx app.Context) {
	id := strings.TrimPrefix(ctx.Page().URL().Path, "/")

	p.city, p.tracked = openCities(ctx).Get(id)
	p.forecast = nil
	p.err = nil
	if !p.tracked {
		p.loading = false
		return
	}

	p.loading = true
	name := p.city.Name
	client := newClient(ctx)

	ctx.Async(func() {
		fc, err := client.Forecast(ctx, name, hourlyEntries)
		ctx.Dispatch(func(ctx app.Context) {
			if p.city.Name != name {
				return
			}
			p.loading = false
			p.err = err
			if err != nil {
				app.Logf("forecast for %q: %v", name, err)
				return
			}
			p.forecast = &fc
		})
	})
}

func (p *CityPage) home(ctx app.Context, _ app.Event) {
	ctx.Navigate("/")
}

func (p *CityPage) Render() app.UI {
	if !p.tracked {
		return app.Div().Class("error-container").Body(
			app.P().Text("City not found"),
			app.Button().Class("back-button").OnClick(p.home).Text("Return to home"),
		)
	}

	return app.Main().Class("main").Body(
		app.Div().Class("container").Body(
			app.Button().Class("back-button").OnClick(p.home).Text("← Back"),
			&ForecastView{
				CityName: p.city.Name,
				Forecast: p.forecast,
				Loading:  p.loading,
				Err:      p.err,
			},
		),
	)
}

// ForecastView renders a forecast in its loading, error or success state.
type ForecastView struct {
	app.Compo

	CityName string
	Forecast *weather.Forecast
	Loading  bool
	Err      error
}

type forecastState int

const (
	forecastLoading forecastState = iota
	forecastFailed
	forecastEmpty
	forecastReady
)

func (v *ForecastView) state() forecastState {
	switch {
	case v.Loading:
		return forecastLoading
	case v.Err != nil:
		return forecastFailed
	case v.Forecast == nil || len(v.Forecast.Entries) == 0:
		return forecastEmpty
	}
	return forecastReady
}

func (v *ForecastView) Render() app.UI {
	switch v.state() {
	case forecastLoading:
		return app.Article().Class("detail").Body(
			app.Div().Class("loading").Attr("role", "status").Aria("live", "polite").Text("Loading forecast..."),
		)
	case forecastFailed:
		return app.Article().Class("detail").Body(
			app.Div().Class("error").Attr("role", "alert").Body(
				app.H2().Text(v.CityName),
				app.P().Text("Error loading forecast"),
				app.P().Class("error-message").Text(userMessage(v.Err)),
			),
		)
	case forecastEmpty:
		return app.Article().Class("detail").Body(
			app.Div().Class("error").Attr("role", "alert").Text("No forecast data available"),
		)
	}

	fc := *v.Forecast
	entries := firstN(fc.Entries, hourlyEntries)
	scale := newTempScale(entries)

	return app.Article().Class("detail").Body(
		app.Header().Body(
			app.H1().Class("detail-title").Text(fc.City),
			app.Div().Class("current-info").Body(
				app.P().Class("country").Text(fc.Country),
			),
		),
		app.Section().Class("forecast-section").Body(
			app.H2().Class("section-title").Text("Hourly Forecast (24 hours)"),
			renderChart(entries, scale),
			app.Div().Class("forecast-list").Body(renderEntries(entries)...),
		),
	)
}

func renderChart(entries []weather.Snapshot, scale tempScale) app.UI {
	bars := make([]app.UI, 0, len(entries))
	for _, e := range entries {
		temp := roundHalfUp(e.Temperature)
		bars = append(bars, app.Div().Class("chart-item").Body(
			app.Div().Class("bar-container").Body(
				app.Div().
					Class("temp-bar").
					Style("height", fmt.Sprintf("%g%%", scale.barHeight(temp))).
					Body(app.Span().Class("temp-value").Text(strconv.Itoa(temp)+"°")),
			),
			app.Div().Class("time-label").Text(clockTime(e.Timestamp)),
			app.Div().Class("weather-icon").Body(
				app.Img().Src(e.Icon).Alt(e.Description),
			),
		))
	}

	return app.Div().Class("temperature-chart").Body(
		app.Div().Class("chart-container").Body(bars...),
		app.Div().Class("chart-legend").Body(
			app.Span().Text(fmt.Sprintf("Min: %d°", scale.Min)),
			app.Span().Text(fmt.Sprintf("Max: %d°", scale.Max)),
		),
	)
}

func renderEntries(entries []weather.Snapshot) []app.UI {
	items := make([]app.UI, 0, len(entries))
	for _, e := range entries {
		items = append(items, app.Div().Class("forecast-item").Body(
			app.Div().Class("forecast-header").Body(
				app.Div().Class("forecast-time-section").Body(
					app.Div().Class("forecast-time").Text(clockTime(e.Timestamp)),
					app.Div().Class("forecast-date").Text(shortDate(e.Timestamp)),
				),
				app.Div().Class("forecast-temp-main").Body(
					app.Span().Class("forecast-temp-value").Text(degrees(e.Temperature)),
					app.Span().Class("forecast-feels-like").Text("Feels like "+degrees(e.FeelsLike)),
				),
			),
			app.Div().Class("forecast-body").Body(
				app.Div().Class("forecast-weather").Body(
					app.Div().Class("weather-icon-wrapper").Body(
						app.Img().Class("forecast-icon").Src(e.Icon).Alt(e.Description),
					),
					app.Div().Class("forecast-description").Body(
						app.P().Class("forecast-main").Text(e.Summary),
						app.P().Class("forecast-desc").Text(e.Description),
					),
				),
				app.Div().Class("forecast-details").Body(detailCards(e)...),
			),
		))
	}
	return items
}

func detailCards(e weather.Snapshot) []app.UI {
	humidity := roundHalfUp(e.Humidity)
	precip := percent(e.PrecipChance)
	clouds := roundHalfUp(e.Cloudiness)

	cards := []app.UI{
		detailCard("💧", "Humidity", fmt.Sprintf("%d%%", humidity), progressBar(humidity)),
		detailCard("💨", "Wind", fmt.Sprintf("%.1f m/s", e.WindSpeed),
			app.Div().Class("wind-direction").Body(
				app.Span().
					Class("wind-arrow").
					Style("transform", fmt.Sprintf("rotate(%gdeg)", e.WindDeg)).
					Text("↑"),
				app.Span().Class("wind-dir-text").Text(compassDirection(e.WindDeg)),
			),
		),
		detailCard("🌧️", "Precipitation", fmt.Sprintf("%d%%", precip), progressBar(precip)),
		detailCard("📊", "Pressure", fmt.Sprintf("%d hPa", roundHalfUp(e.Pressure))),
	}
	if km := visibilityKm(e.Visibility); km != "" {
		cards = append(cards, detailCard("👁️", "Visibility", km+" km"))
	}
	return append(cards, detailCard("☁️", "Cloudiness", fmt.Sprintf("%d%%", clouds), progressBar(clouds)))
}

func detailCard(icon, label, value string, extra ...app.UI) app.UI {
	content := []app.UI{
		app.Span().Class("detail-label").Text(label),
		app.Span().Class("detail-value").Text(value),
	}
	content = append(content, extra...)

	return app.Div().Class("detail-card").Body(
		app.Div().Class("detail-icon").Text(icon),
		app.Div().Class("detail-content").Body(content...),
	)
}

func progressBar(pct int) app.UI {
	return app.Div().Class("progress-bar").Body(
		app.Div().Class("progress-fill").Style("width", fmt.Sprintf("%d%%", pct)),
	)
}
