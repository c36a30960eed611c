// Package ui holds the go-app components of the dashboard. The same code is
// compiled to wasm for the browser and natively for the server-side handler.
package ui

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/city"
)

// cityPathPattern matches "/<city id>". Ids always end in "-<number>", which
// keeps files such as /favicon.ico or /robots.txt off the city page.
const cityPathPattern = `^/[^/]+-[0-9]+$`

// actionCitiesChanged is raised after the tracked list was written.
const actionCitiesChanged = "cities-changed"

// Routes registers the dashboard pages. It must run before
// app.RunWhenOnBrowser and before the server builds its app.Handler.
func Routes() {
	app.Route("/", func() app.Composer { return &Home{} })
	app.RouteWithRegexp(cityPathPattern, func() app.Composer { return &CityPage{} })
}

// openCities loads the tracked list from the browser's local storage.
func openCities(ctx app.Context) *city.Store {
	s := city.NewStore(ctx.LocalStorage())
	if err := s.Load(); err != nil {
		app.Logf("loading cities: %v", err)
	}
	return s
}

// newClient returns an API client for the origin the page was served from.
func newClient(ctx app.Context) *Client {
	u := ctx.Page().URL()
	return &Client{
		BaseURL: u.Scheme + "://" + u.Host,
		HTTP:    http.DefaultClient,
	}
}
