package ui

import (
	"errors"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/city"
	"github.com/i474232898/weather-cities/internal/weather"
)

// AddCityForm looks a city up and, when it resolves, starts tracking it.
type AddCityForm struct {
	app.Compo

	name    string
	err     string
	loading bool
}

func (f *AddCityForm) Render() app.UI {
	label := "Add city"
	if f.loading {
		label = "Adding..."
	}

	body := []app.UI{
		app.Div().Class("input-group").Body(
			app.Input().
				Type("text").
				Class("input").
				Placeholder("Enter city name").
				Aria("label", "City name").
				Value(f.name).
				Disabled(f.loading).
				OnInput(f.ValueTo(&f.name)),
			app.Button().
				Type("submit").
				Class("button").
				Disabled(f.loading).
				Text(label),
		),
	}
	if f.err != "" {
		body = append(body, app.P().Class("form-error").Attr("role", "alert").Text(f.err))
	}

	return app.Form().Class("add-city-form").OnSubmit(f.onSubmit).Body(body...)
}

// Form messages.
const (
	msgEnterCity      = "Enter city name"
	msgAlreadyAdded   = "This city is already added"
	msgCityNotFound   = "City not found"
	msgLoadingWeather = "Error loading weather"
)

func (f *AddCityForm) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()

	name, ok := f.begin()
	if !ok {
		return
	}
	client := newClient(ctx)

	ctx.Async(func() {
		snap, err := client.Current(ctx, name)
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				app.Logf("adding %q: %v", name, err)
			}
			if f.finish(openCities(ctx), snap, err) {
				ctx.NewAction(actionCitiesChanged)
			}
		})
	})
}

// begin validates the input and enters the loading state. It returns the
// trimmed name to look up.
func (f *AddCityForm) begin() (string, bool) {
	f.err = ""

	name := strings.TrimSpace(f.name)
	if name == "" {
		f.err = msgEnterCity
		return "", false
	}
	f.loading = true
	return name, true
}

// finish applies a lookup result. It reports whether the city was added.
func (f *AddCityForm) finish(cities *city.Store, snap weather.Snapshot, lookupErr error) bool {
	f.loading = false
	if lookupErr != nil {
		f.err = lookupMessage(lookupErr)
		return false
	}

	if msg := track(cities, snap); msg != "" {
		f.err = msg
		return false
	}
	f.name = ""
	return true
}

// track adds the looked up city to cities. It returns the form error, or ""
// when the city was added.
func track(cities *city.Store, snap weather.Snapshot) string {
	id := city.NewID(snap.City, snap.CityID)
	if cities.Contains(id, snap.City) {
		return msgAlreadyAdded
	}

	err := cities.Add(city.City{ID: id, Name: snap.City})
	switch {
	case errors.Is(err, city.ErrDuplicate):
		return msgAlreadyAdded
	case err != nil:
		app.Logf("saving %q: %v", id, err)
		return msgLoadingWeather
	}
	return ""
}

// lookupMessage is the form error shown for a failed lookup.
func lookupMessage(err error) string {
	if errors.Is(err, weather.ErrCityNotFound) {
		return msgCityNotFound
	}
	return msgLoadingWeather
}
