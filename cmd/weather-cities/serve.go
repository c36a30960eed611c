//go:build !wasm

package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	httpapi "github.com/i474232898/weather-cities/internal/api/http"
	"github.com/i474232898/weather-cities/internal/config"
	"github.com/i474232898/weather-cities/internal/scheduler"
	"github.com/i474232898/weather-cities/internal/weather"
	"github.com/i474232898/weather-cities/internal/weather/providers"
)

func serve() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker), in failover order.
	provs := buildProviders(cfg, httpClient)
	if len(provs) == 0 {
		log.Fatalf("no weather provider is usable; set PROVIDERS and the matching API keys")
	}

	service := weather.NewService(provs)

	// Scheduler that periodically probes every provider.
	sched := scheduler.New(cfg.ProbeLocation, cfg.ProbeInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	fiberApp := fiber.New(fiber.Config{
		AppName:               "weather-cities",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	fiberApp.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Next: func(c *fiber.Ctx) bool {
			// The service worker and wasm binary are polled constantly.
			p := c.Path()
			return p == "/app-worker.js" || strings.HasSuffix(p, ".wasm")
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(compress.New())

	// API routes.
	httpapi.RegisterRoutes(fiberApp, service)

	// Everything else is the go-app PWA: pages, app.js, the worker and web/.
	fiberApp.Get("/*", adaptor.HTTPHandler(pwaHandler(cfg)))

	go func() {
		log.Printf("INFO: listening on :%s with providers %v", cfg.Port, cfg.Enabled())
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func buildProviders(cfg *config.AppConfig, client *http.Client) []weather.Provider {
	enabled := cfg.Enabled()

	var provs []weather.Provider
	for _, name := range enabled {
		switch name {
		case config.ProviderOpenWeather:
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
		case config.ProviderWeatherAPI:
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
		case config.ProviderOpenMeteo:
			// Open-Meteo needs no key. Google geocoding replaces its own
			// geocoder when a key is configured.
			var geo providers.Geocoder
			if cfg.GeocoderAPIKey != "" {
				geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
			}
			provs = append(provs, providers.NewOpenMeteoProvider(client, geo))
		}
	}
	for _, name := range cfg.Providers {
		if !slices.Contains(enabled, name) {
			log.Printf("INFO: provider %s skipped: no API key configured", name)
		}
	}
	return provs
}

func pwaHandler(cfg *config.AppConfig) *app.Handler {
	h := &app.Handler{
		Name:        "Weather Cities App",
		ShortName:   "Weather",
		Title:       "Weather Cities App",
		Description: "Current weather and forecasts for the cities you track",
		Icon:        app.Icon{SVG: "/web/icon.svg"},
		Styles:      []string{"/web/app.css"},
		Env:         map[string]string{},
	}
	if cfg.Dev {
		h.Version = ""
		h.Env["DEV"] = "1"
	} else {
		h.Version = cfg.Version
	}
	return h
}
