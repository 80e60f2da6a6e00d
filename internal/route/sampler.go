package route

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/observability"
)

const (
	// Every Nth route waypoint is reverse-geocoded in addition to the key
	// percentile points.
	sampleStride = 5

	// Fallback interpolation kicks in below this many discovered cities on
	// routes longer than interpolateMinDistanceKm.
	minDiscoveredCities      = 2
	interpolateMinDistanceKm = 100.0

	// Filtering is advisory; without a usable filter result the list is
	// capped at this many settlements.
	maxUnfilteredCities = 6

	reverseGeocodeTimeout = 10 * time.Second
)

// CityFilter optionally narrows a candidate list to administratively major
// settlements. Implementations may call external services; a failure or an
// empty result never blocks the route analysis.
type CityFilter interface {
	Filter(ctx context.Context, start, end string, cities []domain.RouteCity) ([]domain.RouteCity, error)
}

// Sampler discovers settlements along a route. The preferred path samples a
// real driving route from a directions provider; without one it falls back
// to scanning the curated gazetteer by detour cost.
type Sampler struct {
	geocoder   domain.Geocoder
	directions domain.DirectionsProvider // nil disables the preferred path
	filter     CityFilter                // nil disables filtering

	workers           int
	detourThresholdKm float64

	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSampler creates a route sampler. directions and filter may be nil.
func NewSampler(geocoder domain.Geocoder, directions domain.DirectionsProvider, filter CityFilter,
	workers int, detourThresholdKm float64, logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	if workers < 1 {
		workers = 1
	}
	return &Sampler{
		geocoder:          geocoder,
		directions:        directions,
		filter:            filter,
		workers:           workers,
		detourThresholdKm: detourThresholdKm,
		logger:            logger,
		metrics:           metrics,
	}
}

// FindCities returns settlements between the two endpoints, ordered by
// distance from start. The endpoints themselves are excluded.
func (s *Sampler) FindCities(ctx context.Context, start, end domain.GeocodingResult) ([]domain.RouteCity, error) {
	startCoord := domain.Coordinate{Lat: start.Lat, Lon: start.Lon}
	endCoord := domain.Coordinate{Lat: end.Lat, Lon: end.Lon}

	var cities []domain.RouteCity
	if s.directions != nil {
		waypoints, err := s.directions.Route(ctx, startCoord, endCoord)
		if err != nil {
			s.logger.Warn("directions provider failed, using gazetteer fallback", "error", err)
		} else {
			cities = s.citiesFromWaypoints(ctx, waypoints, start.Name, end.Name, startCoord)
		}
	}
	if len(cities) == 0 {
		cities = s.citiesFromGazetteer(ctx, start.Name, end.Name, startCoord, endCoord)
	}

	sort.Slice(cities, func(i, j int) bool { return cities[i].DistanceKm < cities[j].DistanceKm })
	return s.applyFilter(ctx, start.Name, end.Name, cities), nil
}

// citiesFromWaypoints samples the route geometry at the start, the 20/40/
// 60/80% points, the end, and every Nth waypoint, then reverse-geocodes the
// samples. Percentile points catch junction towns that a regular stride can
// skip over.
func (s *Sampler) citiesFromWaypoints(ctx context.Context, waypoints []domain.Coordinate, startName, endName string, startCoord domain.Coordinate) []domain.RouteCity {
	n := len(waypoints)
	if n == 0 {
		return nil
	}

	indexSet := map[int]struct{}{
		0:         {},
		n / 5:     {},
		2 * n / 5: {},
		3 * n / 5: {},
		4 * n / 5: {},
		n - 1:     {},
	}
	for i := 0; i < n; i += sampleStride {
		indexSet[i] = struct{}{}
	}
	indices := make([]int, 0, len(indexSet))
	for i := range indexSet {
		if i >= 0 && i < n {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	results := s.reverseGeocodeAll(ctx, waypoints, indices)

	var cities []domain.RouteCity
	seen := map[string]struct{}{
		strings.ToLower(startName): {},
		strings.ToLower(endName):   {},
	}
	for _, i := range indices {
		geo, ok := results[i]
		if !ok || geo.Name == "" {
			continue
		}
		key := strings.ToLower(geo.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		coord := waypoints[i]
		cities = append(cities, domain.RouteCity{
			Name:       geo.Name,
			State:      geo.State,
			Lat:        coord.Lat,
			Lon:        coord.Lon,
			DistanceKm: domain.Haversine(startCoord, coord),
		})
	}
	return cities
}

// reverseGeocodeAll resolves the sampled waypoints with bounded parallelism.
// Results are keyed by waypoint index; failed lookups are simply absent.
func (s *Sampler) reverseGeocodeAll(ctx context.Context, waypoints []domain.Coordinate, indices []int) map[int]domain.GeocodingResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[int]domain.GeocodingResult, len(indices))
		sem     = make(chan struct{}, s.workers)
	)

	for _, i := range indices {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, reverseGeocodeTimeout)
			defer cancel()

			p := waypoints[i]
			geo, err := s.geocoder.ReverseGeocode(callCtx, p.Lat, p.Lon)
			if err != nil {
				if s.metrics != nil {
					s.metrics.GeocodeRequests.WithLabelValues("reverse", outcomeLabel(err)).Inc()
				}
				if !errors.Is(err, domain.ErrNotFound) {
					s.logger.Warn("reverse geocode failed", "lat", p.Lat, "lon", p.Lon, "error", err)
				}
				return
			}
			if s.metrics != nil {
				s.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
			}
			mu.Lock()
			results[i] = geo
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return results
}

// citiesFromGazetteer scans the curated settlement table for entries whose
// detour cost stays under the threshold. Sparse long routes additionally get
// interpolated probe points, one per 100 km up to five.
func (s *Sampler) citiesFromGazetteer(ctx context.Context, startName, endName string, startCoord, endCoord domain.Coordinate) []domain.RouteCity {
	var cities []domain.RouteCity
	seen := map[string]struct{}{
		strings.ToLower(startName): {},
		strings.ToLower(endName):   {},
	}

	for _, settlement := range gazetteer {
		key := strings.ToLower(settlement.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		if domain.DetourCost(settlement.Coord, startCoord, endCoord) > s.detourThresholdKm {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, domain.RouteCity{
			Name:       settlement.Name,
			State:      settlement.State,
			Lat:        settlement.Coord.Lat,
			Lon:        settlement.Coord.Lon,
			DistanceKm: domain.Haversine(startCoord, settlement.Coord),
		})
	}

	totalDistance := domain.Haversine(startCoord, endCoord)
	if len(cities) >= minDiscoveredCities || totalDistance <= interpolateMinDistanceKm {
		return cities
	}

	numPoints := int(totalDistance / 100)
	if numPoints < 2 {
		numPoints = 2
	}
	if numPoints > 5 {
		numPoints = 5
	}

	points := domain.Interpolate(startCoord, endCoord, numPoints)
	indices := make([]int, len(points))
	for i := range points {
		indices[i] = i
	}
	results := s.reverseGeocodeAll(ctx, points, indices)

	for i, p := range points {
		geo, ok := results[i]
		if !ok || geo.Name == "" {
			continue
		}
		key := strings.ToLower(geo.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, domain.RouteCity{
			Name:       geo.Name,
			State:      geo.State,
			Lat:        p.Lat,
			Lon:        p.Lon,
			DistanceKm: domain.Haversine(startCoord, p),
		})
	}
	return cities
}

// applyFilter runs the optional major-settlement filter. Filtering is
// advisory: on error or an empty result the unfiltered list is used, capped
// at maxUnfilteredCities.
func (s *Sampler) applyFilter(ctx context.Context, startName, endName string, cities []domain.RouteCity) []domain.RouteCity {
	if s.filter != nil {
		filtered, err := s.filter.Filter(ctx, startName, endName, cities)
		if err != nil {
			s.logger.Warn("city filter failed, using unfiltered list", "error", err)
		} else if len(filtered) > 0 {
			return filtered
		}
	}
	if len(cities) > maxUnfilteredCities {
		return cities[:maxUnfilteredCities]
	}
	return cities
}

func outcomeLabel(err error) string {
	if errors.Is(err, domain.ErrNotFound) {
		return "empty"
	}
	return "error"
}
