package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/i474232898/weather-cities/internal/ui"
)

// The same binary is built twice: as web/app.wasm for the browser, where
// RunWhenOnBrowser takes over, and natively, where serve starts the server.
func main() {
	ui.Routes()

	app.RunWhenOnBrowser()

	serve()
}
