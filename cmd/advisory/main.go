package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/stormline/advisory/internal/adapter/httpapi"
	kafkaadapter "github.com/stormline/advisory/internal/adapter/kafka"
	"github.com/stormline/advisory/internal/adapter/openweather"
	"github.com/stormline/advisory/internal/alerting"
	"github.com/stormline/advisory/internal/config"
	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/notify"
	"github.com/stormline/advisory/internal/observability"
	"github.com/stormline/advisory/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	db, err := store.New(cfg.DBPath, clock, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, cfg.HomeCountry, logger)
	geocoder := openweather.NewCachedGeocoder(weather, cfg.GeocodeCacheSize)

	// Alert publishing is feature-flagged via KAFKA_ENABLED.
	var publisher alerting.AlertPublisher
	var publisherCloser interface{ Close() error }
	if cfg.KafkaEnabled {
		p := kafkaadapter.NewPublisher(cfg, logger)
		publisher = p
		publisherCloser = p
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertsTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	// No SMTP or push provider wired yet; deliveries land in the log and
	// the audit trail stays accurate.
	transports := map[domain.Channel]notify.Transport{
		domain.ChannelEmail: notify.LogTransport{Channel: domain.ChannelEmail, Logger: logger},
		domain.ChannelPush:  notify.LogTransport{Channel: domain.ChannelPush, Logger: logger},
	}
	dispatcher := notify.NewDispatcher(transports, db, cfg.NotifyWorkers, clock, logger, metrics)

	classifier := domain.NewClassifier(domain.DefaultThresholds())
	monitor := alerting.New(geocoder, weather, classifier, db, db, publisher, dispatcher,
		cfg.CheckInterval, clock, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, logger, monitor, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := monitor.Run(ctx); err != nil {
			logger.Error("alert monitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisherCloser != nil {
		if err := publisherCloser.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := db.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
