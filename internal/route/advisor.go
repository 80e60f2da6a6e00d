package route

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/observability"
)

const weatherFetchTimeout = 10 * time.Second

// Advisor produces a travel risk assessment for a route: the settlements
// along it, their weather, per-city travel severity, and an aggregate
// recommendation.
type Advisor struct {
	geocoder   domain.Geocoder
	weather    domain.WeatherProvider
	sampler    *Sampler
	classifier *domain.Classifier

	workers int
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAdvisor creates a route advisor.
func NewAdvisor(geocoder domain.Geocoder, weather domain.WeatherProvider, sampler *Sampler,
	classifier *domain.Classifier, workers int, clock clockwork.Clock,
	logger *slog.Logger, metrics *observability.Metrics) *Advisor {
	if workers < 1 {
		workers = 1
	}
	return &Advisor{
		geocoder:   geocoder,
		weather:    weather,
		sampler:    sampler,
		classifier: classifier,
		workers:    workers,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Analyze assesses the route between two named locations. A location that
// cannot be geocoded fails the whole analysis; a city whose weather fetch
// fails degrades to a no-data entry without failing the rest.
func (a *Advisor) Analyze(ctx context.Context, startName, endName string) (domain.RouteAnalysis, error) {
	started := a.clock.Now()

	start, err := a.geocoder.ForwardGeocode(ctx, startName)
	if err != nil {
		return domain.RouteAnalysis{}, fmt.Errorf("resolve location %q: %w", startName, err)
	}
	end, err := a.geocoder.ForwardGeocode(ctx, endName)
	if err != nil {
		return domain.RouteAnalysis{}, fmt.Errorf("resolve location %q: %w", endName, err)
	}

	startCoord := domain.Coordinate{Lat: start.Lat, Lon: start.Lon}
	endCoord := domain.Coordinate{Lat: end.Lat, Lon: end.Lon}

	middle, err := a.sampler.FindCities(ctx, start, end)
	if err != nil {
		return domain.RouteAnalysis{}, fmt.Errorf("sample route: %w", err)
	}

	cities := make([]domain.RouteCity, 0, len(middle)+2)
	cities = append(cities, domain.RouteCity{
		Name: start.Name, State: start.State, Lat: start.Lat, Lon: start.Lon, IsStart: true,
	})
	cities = append(cities, middle...)
	cities = append(cities, domain.RouteCity{
		Name: end.Name, State: end.State, Lat: end.Lat, Lon: end.Lon,
		DistanceKm: domain.Haversine(startCoord, endCoord), IsEnd: true,
	})

	a.fetchWeather(ctx, cities)

	var warnings []string
	for i := range cities {
		c := &cities[i]
		if c.Weather == nil {
			continue
		}
		c.Severity = domain.AssessTravelSeverity(*c.Weather)

		metrics := domain.ExtractMetrics(domain.WeatherObservation{Report: c.Weather}, a.logger)
		if cls, ok := a.classifier.Classify(metrics, c.Name); ok {
			c.Alert = &cls
		}

		if c.Severity == domain.TravelHigh || c.Severity == domain.TravelCritical {
			warnings = append(warnings, fmt.Sprintf("%s: %s", c.Name, c.Weather.Condition))
		}
		if c.Weather.WindSpeed > 40 {
			warnings = append(warnings, fmt.Sprintf("Strong winds in %s: %.1f km/h", c.Name, c.Weather.WindSpeed))
		}
	}

	analysis := domain.RouteAnalysis{
		Start:           start.Name,
		End:             end.Name,
		TotalDistanceKm: domain.Haversine(startCoord, endCoord),
		Cities:          cities,
		Warnings:        warnings,
		Recommendation:  domain.Recommend(cities),
		GeneratedAt:     a.clock.Now().UTC(),
	}

	if a.metrics != nil {
		a.metrics.RouteAnalyses.Inc()
		a.metrics.RouteCitiesPerRoute.Observe(float64(len(cities)))
		a.metrics.RouteAnalysisSeconds.Observe(a.clock.Since(started).Seconds())
	}
	return analysis, nil
}

// fetchWeather fills in Weather for each city with bounded parallelism. A
// failed fetch leaves Weather nil and is logged, not returned.
func (a *Advisor) fetchWeather(ctx context.Context, cities []domain.RouteCity) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, a.workers)
	)
	for i := range cities {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *domain.RouteCity) {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, weatherFetchTimeout)
			defer cancel()

			report, err := a.weather.CurrentWeather(callCtx, c.Lat, c.Lon)
			if err != nil {
				a.logger.Warn("weather unavailable for route city", "city", c.Name, "error", err)
				return
			}
			c.Weather = &report
		}(&cities[i])
	}
	wg.Wait()
}
