// Command routecheck runs a one-shot route risk analysis and prints the
// result as JSON.
//
//	routecheck -from "Chennai" -to "Trichy"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stormline/advisory/internal/adapter/mapbox"
	"github.com/stormline/advisory/internal/adapter/openweather"
	"github.com/stormline/advisory/internal/config"
	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/observability"
	"github.com/stormline/advisory/internal/route"
)

func main() {
	var (
		from    = flag.String("from", "", "start location name")
		to      = flag.String("to", "", "destination location name")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall analysis timeout")
	)
	flag.Parse()

	if *from == "" || *to == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	clock := clockwork.NewRealClock()

	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, cfg.HomeCountry, logger)
	geocoder := openweather.NewCachedGeocoder(weather, cfg.GeocodeCacheSize)

	var directions domain.DirectionsProvider
	if cfg.MapboxEnabled {
		directions = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger)
	}

	sampler := route.NewSampler(geocoder, directions, nil, cfg.RouteWorkers, cfg.DetourThresholdKm, logger, nil)
	classifier := domain.NewClassifier(domain.DefaultThresholds())
	advisor := route.NewAdvisor(geocoder, weather, sampler, classifier, cfg.RouteWorkers, clock, logger, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	analysis, err := advisor.Analyze(ctx, *from, *to)
	if err != nil {
		logger.Error("route analysis failed", "from", *from, "to", *to, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		logger.Error("encoding analysis failed", "error", err)
		os.Exit(1)
	}
}
