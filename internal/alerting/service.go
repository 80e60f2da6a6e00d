// Package alerting runs the continuous threat detection loop: fetch weather
// for subscribed locations, classify, deduplicate into the alert ledger, and
// fan new alerts out to subscribers.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/notify"
	"github.com/stormline/advisory/internal/observability"
)

// AlertLedger is the persistence surface the service needs: atomic
// create-or-dedup, send bookkeeping, and expiry.
type AlertLedger interface {
	CreateIfAbsent(ctx context.Context, candidate domain.Alert) (domain.Alert, bool, error)
	MarkSent(ctx context.Context, id string) error
	ExpireStale(ctx context.Context) (int64, error)
}

// SubscriptionSource lists the standing subscriptions to monitor and notify.
type SubscriptionSource interface {
	ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}

// AlertPublisher emits created alerts to downstream consumers. Publishing is
// best effort; a broker outage never blocks detection.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert domain.Alert) error
}

// Dispatcher fans one alert out to its matched subscribers.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert domain.Alert, subs []domain.Subscription) notify.Result
}

// Service is the threat detection engine. One instance monitors all
// subscribed locations on a fixed interval.
type Service struct {
	geocoder   domain.Geocoder
	weather    domain.WeatherProvider
	classifier *domain.Classifier
	ledger     AlertLedger
	subs       SubscriptionSource
	publisher  AlertPublisher // nil disables publishing
	dispatcher Dispatcher     // nil disables notifications

	checkInterval time.Duration
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
	ready         atomic.Bool
}

// New creates the detection service. publisher and dispatcher may be nil.
func New(geocoder domain.Geocoder, weather domain.WeatherProvider, classifier *domain.Classifier,
	ledger AlertLedger, subs SubscriptionSource, publisher AlertPublisher, dispatcher Dispatcher,
	checkInterval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		geocoder:      geocoder,
		weather:       weather,
		classifier:    classifier,
		ledger:        ledger,
		subs:          subs,
		publisher:     publisher,
		dispatcher:    dispatcher,
		checkInterval: checkInterval,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
	}
}

// CheckReadiness returns nil once the service has completed at least one
// monitoring sweep.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("monitor has not completed a sweep yet")
	}
	return nil
}

// CheckLocation runs one detection pass for a location. It returns the alert
// when conditions warranted one (new or deduplicated) and nil otherwise.
func (s *Service) CheckLocation(ctx context.Context, location string) (*domain.Alert, error) {
	geo, err := s.geocoder.ForwardGeocode(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("resolve location %q: %w", location, err)
	}

	report, err := s.weather.CurrentWeather(ctx, geo.Lat, geo.Lon)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %q: %w", location, err)
	}

	// The forecast sharpens classification but its absence never blocks it.
	entries, err := s.weather.Forecast(ctx, geo.Lat, geo.Lon)
	if err != nil {
		s.logger.Warn("forecast unavailable, classifying on current conditions only",
			"location", location, "error", err)
	} else {
		report.Forecast = domain.SummarizeForecast(entries)
	}

	metrics := domain.ExtractMetrics(domain.WeatherObservation{Report: &report}, s.logger)
	classification, ok := s.classifier.Classify(metrics, location)
	if !ok {
		return nil, nil
	}
	if s.metrics != nil {
		s.metrics.ClassificationsTotal.WithLabelValues(string(classification.Type), string(classification.Severity)).Inc()
	}

	candidate := domain.NewAlert(classification, location, geo, metrics)
	alert, created, err := s.ledger.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("persist alert for %q: %w", location, err)
	}
	if !created {
		if s.metrics != nil {
			s.metrics.AlertsDeduplicated.Inc()
		}
		s.logger.Debug("duplicate trigger folded into active alert",
			"alert_id", alert.ID, "location", location, "type", alert.Type)
		return &alert, nil
	}

	if s.metrics != nil {
		s.metrics.AlertsCreated.Inc()
	}
	s.logger.Info("alert created",
		"alert_id", alert.ID,
		"location", location,
		"type", alert.Type,
		"severity", alert.Severity)

	s.publish(ctx, alert)
	s.notifySubscribers(ctx, alert)
	return &alert, nil
}

// CheckSubscribedLocations sweeps every distinct subscribed location once.
func (s *Service) CheckSubscribedLocations(ctx context.Context) error {
	subs, err := s.subs.ListActiveSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	for _, location := range distinctLocations(subs) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.CheckLocation(ctx, location); err != nil {
			s.logger.Error("location check failed", "location", location, "error", err)
		}
	}
	return nil
}

// Run executes the monitoring loop until the context is cancelled. Each tick
// sweeps the subscribed locations and expires stale alerts.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("alert monitor started", "check_interval", s.checkInterval)
	if s.metrics != nil {
		s.metrics.ServiceRunning.Set(1)
		defer s.metrics.ServiceRunning.Set(0)
	}

	ticker := s.clock.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		s.ready.Store(true)

		select {
		case <-ctx.Done():
			s.logger.Info("alert monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	if err := s.CheckSubscribedLocations(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("monitoring sweep failed", "error", err)
	}

	expired, err := s.ledger.ExpireStale(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("alert expiry failed", "error", err)
		}
		return
	}
	if expired > 0 {
		if s.metrics != nil {
			s.metrics.AlertsExpired.Add(float64(expired))
		}
		s.logger.Info("expired stale alerts", "count", expired)
	}
}

func (s *Service) publish(ctx context.Context, alert domain.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAlert(ctx, alert); err != nil {
		s.logger.Error("alert publish failed", "alert_id", alert.ID, "error", err)
	}
}

// notifySubscribers matches and dispatches, then flips the ledger's sent flag
// when at least one delivery succeeded.
func (s *Service) notifySubscribers(ctx context.Context, alert domain.Alert) {
	if s.dispatcher == nil {
		return
	}

	subs, err := s.subs.ListActiveSubscriptions(ctx)
	if err != nil {
		s.logger.Error("listing subscribers failed", "alert_id", alert.ID, "error", err)
		return
	}

	matched := notify.Match(alert, subs)
	if len(matched) == 0 {
		s.logger.Info("no subscribers for alert", "alert_id", alert.ID, "location", alert.Location)
		return
	}

	result := s.dispatcher.Dispatch(ctx, alert, matched)
	if result.Sent == 0 {
		return
	}
	if err := s.ledger.MarkSent(ctx, alert.ID); err != nil {
		s.logger.Error("marking alert sent failed", "alert_id", alert.ID, "error", err)
	}
}

// distinctLocations collapses subscriptions to unique location strings,
// sorted for a stable sweep order.
func distinctLocations(subs []domain.Subscription) []string {
	seen := make(map[string]string)
	for _, sub := range subs {
		location := strings.TrimSpace(sub.Location)
		if location == "" {
			continue
		}
		key := strings.ToLower(location)
		if _, ok := seen[key]; !ok {
			seen[key] = location
		}
	}
	out := make([]string, 0, len(seen))
	for _, location := range seen {
		out = append(out, location)
	}
	sort.Strings(out)
	return out
}
