package ui

import (
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/city"
)

var _ app.AppUpdater = (*Home)(nil)
var _ app.Mounter = (*Home)(nil)

// Home is the "/" page: the add form over the list of tracked cities.
type Home struct {
	app.Compo
	cities []city.City
}

func (h *Home) OnMount(ctx app.Context) {
	h.cities = openCities(ctx).List()

	ctx.Handle(actionCitiesChanged, func(ctx app.Context, _ app.Action) {
		ctx.Dispatch(func(ctx app.Context) {
			h.cities = openCities(ctx).List()
		})
	})

	if app.Getenv("DEV") != "" {
		ctx.Async(func() {
			ticker := time.NewTicker(3 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					app.TryUpdate()
				case <-ctx.Done():
					return
				}
			}
		})
	}
}

func (h *Home) OnAppUpdate(ctx app.Context) {
	if app.Getenv("DEV") != "" && ctx.AppUpdateAvailable() {
		ctx.Reload()
	}
}

func (h *Home) Render() app.UI {
	return app.Main().Class("main").Body(
		app.Div().Class("container").Body(
			app.H1().Class("title").Text("Weather in Cities"),
			&AddCityForm{},
			&CityList{Cities: h.cities},
		),
	)
}
