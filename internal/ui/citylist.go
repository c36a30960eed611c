package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/city"
)

// CityList renders one card per tracked city.
type CityList struct {
	app.Compo
	Cities []city.City
}

func (l *CityList) Render() app.UI {
	if len(l.Cities) == 0 {
		return app.Div().Class("empty").Body(
			app.P().Text("Add a city to see the weather"),
		)
	}

	cards := make([]app.UI, 0, len(l.Cities))
	for _, c := range l.Cities {
		cards = append(cards, &CityCard{City: c})
	}
	return app.Div().Class("list").Body(cards...)
}
