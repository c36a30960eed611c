package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/city"
	"github.com/i474232898/weather-cities/internal/weather"
)

// refreshCooldown keeps the refresh button disabled a little after a
// refresh settled.
const refreshCooldown = 500 * time.Millisecond

var _ app.Mounter = (*CityCard)(nil)
var _ app.Updater = (*CityCard)(nil)

// CityCard shows the current weather of one tracked city. Each card fetches
// on its own.
type CityCard struct {
	app.Compo
	City city.City

	loadedID   string
	data       *weather.Snapshot
	err        error
	loading    bool
	refreshing bool
}

func (c *CityCard) OnMount(ctx app.Context) {
	c.load(ctx)
}

// OnUpdate runs when the list reuses this card for another city.
func (c *CityCard) OnUpdate(ctx app.Context) {
	if c.City.ID != c.loadedID {
		c.load(ctx)
	}
}

func (c *CityCard) load(ctx app.Context) {
	c.loadedID = c.City.ID
	c.data = nil
	c.err = nil
	c.loading = true

	id, name := c.City.ID, c.City.Name
	client := newClient(ctx)

	ctx.Async(func() {
		snap, err := client.Current(ctx, name)
		ctx.Dispatch(func(ctx app.Context) {
			c.loaded(id, snap, err)
		})
	})
}

// loaded applies the result of the first fetch for the city id.
func (c *CityCard) loaded(id string, snap weather.Snapshot, err error) {
	if c.loadedID != id {
		return
	}
	c.loading = false
	c.err = err
	if err == nil {
		c.data = &snap
	}
}

func (c *CityCard) refresh(ctx app.Context, e app.Event) {
	e.Call("stopPropagation")
	if c.refreshing {
		return
	}
	c.refreshing = true

	id, name := c.City.ID, c.City.Name
	client := newClient(ctx)

	ctx.Async(func() {
		snap, err := client.Current(ctx, name)
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				app.Logf("refreshing %q: %v", name, err)
			}
			if !c.refreshed(id, snap, err) {
				return
			}
			ctx.After(refreshCooldown, func(ctx app.Context) {
				c.refreshing = false
			})
		})
	})
}

// refreshed applies a refresh result. A failed refresh keeps the last good
// reading on screen. It reports whether the cooldown still has to run.
func (c *CityCard) refreshed(id string, snap weather.Snapshot, err error) bool {
	if c.loadedID != id {
		c.refreshing = false
		return false
	}
	c.err = err
	if err == nil {
		c.data = &snap
	}
	return true
}

func (c *CityCard) remove(ctx app.Context, e app.Event) {
	e.Call("stopPropagation")

	if err := openCities(ctx).Remove(c.City.ID); err != nil {
		app.Logf("removing %q: %v", c.City.ID, err)
		return
	}
	ctx.NewAction(actionCitiesChanged)
}

func (c *CityCard) open(ctx app.Context, _ app.Event) {
	ctx.Navigate("/" + c.City.ID)
}

type cardState int

const (
	cardEmpty cardState = iota
	cardLoading
	cardError
	cardWeather
)

func (c *CityCard) state() cardState {
	switch {
	case c.loading:
		return cardLoading
	case c.data != nil:
		return cardWeather
	case c.err != nil:
		return cardError
	}
	return cardEmpty
}

func (c *CityCard) Render() app.UI {
	switch c.state() {
	case cardLoading:
		return app.Article().Class("card").Body(
			app.Div().Class("loading").Attr("role", "status").Aria("live", "polite").Text("Loading..."),
		)
	case cardError:
		return c.renderError()
	case cardWeather:
		return c.renderWeather(*c.data)
	}
	return app.Article().Class("card")
}

func (c *CityCard) renderError() app.UI {
	return app.Article().Class("card").Body(
		app.Div().Class("error").Attr("role", "alert").Body(
			app.H3().Text(c.City.Name),
			app.P().Text("Error loading weather"),
			app.P().Class("error-message").Text(userMessage(c.err)),
			c.refreshButton("Try again"),
			app.Button().
				Class("remove-button").
				Aria("label", "Remove city").
				OnClick(c.remove).
				Text("Remove"),
		),
	)
}

func (c *CityCard) renderWeather(w weather.Snapshot) app.UI {
	return app.Article().
		Class("card").
		Style("background-image", fmt.Sprintf("url(%s)", cardImageURL(c.City.Name))).
		Style("background-size", "cover").
		Style("background-position", "center").
		OnClick(c.open).
		Body(
			app.Header().Class("card-header").Body(
				app.H2().Class("city-name").Text(w.City),
				app.Button().
					Class("remove-button").
					Aria("label", "Remove city").
					OnClick(c.remove).
					Text("×"),
			),
			app.Section().Class("weather-info").Body(
				app.Div().Class("temperature").Body(
					app.Span().Class("temp-value").Text(degrees(w.Temperature)),
					app.Span().Class("feels-like").Text("Feels like "+degrees(w.FeelsLike)),
				),
				app.Div().Class("weather-details").Body(
					app.Div().Class("weather-icon").Body(
						app.Img().Src(w.Icon).Alt(w.Description).Width(64).Height(64),
					),
					app.Div().Class("weather-description").Body(
						app.P().Class("main-weather").Text(w.Summary),
						app.P().Class("description").Text(w.Description),
					),
				),
				app.Div().Class("additional-info").Body(
					infoItem("Humidity:", strconv.Itoa(roundHalfUp(w.Humidity))+"%"),
					infoItem("Wind:", windSpeed(w.WindSpeed)+" m/s"),
					infoItem("Pressure:", strconv.Itoa(roundHalfUp(w.Pressure))+" hPa"),
				),
			),
			c.refreshButton("Refresh now"),
		)
}

func (c *CityCard) refreshButton(label string) app.UI {
	class := "refresh-button"
	if c.refreshing {
		class += " refreshing"
	}
	return app.Button().
		Class(class).
		Disabled(c.refreshing).
		Aria("label", "Refresh weather data").
		OnClick(c.refresh).
		Body(
			app.Span().Class("refresh-icon").Text("↻"),
			app.Span().Text(label),
		)
}

func infoItem(label, value string) app.UI {
	return app.Div().Class("info-item").Body(
		app.Span().Class("info-label").Text(label),
		app.Span().Class("info-value").Text(value),
	)
}

func degrees(t float64) string {
	return strconv.Itoa(roundHalfUp(t)) + "°"
}
