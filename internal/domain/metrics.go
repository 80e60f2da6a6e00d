package domain

import (
	"context"
	"strings"
	"time"
)

// OfficialAlert is an alert issued by a meteorological service, carried
// through from the weather provider payload.
type OfficialAlert struct {
	Event       string `json:"event"`
	Sender      string `json:"sender,omitempty"`
	Description string `json:"description,omitempty"`
}

// ForecastEntry is a single 3-hour forecast slot from the weather provider.
type ForecastEntry struct {
	Time        time.Time `json:"time"`
	WindSpeed   float64   `json:"wind_speed"` // km/h
	Precip3h    float64   `json:"precip_3h"`  // mm over the 3h window
	Description string    `json:"description,omitempty"`
}

// ForecastSummary condenses the next 24 hours of forecast entries into the
// signals the classifier consumes.
type ForecastSummary struct {
	HasSevereForecast bool     `json:"has_severe_forecast"`
	MaxWind24h        float64  `json:"max_wind_24h"`
	TotalPrecip24h    float64  `json:"total_precip_24h"`
	SevereConditions  []string `json:"severe_conditions,omitempty"`
}

// WeatherReport is the structured payload from a weather provider, already
// converted to canonical units by the adapter.
type WeatherReport struct {
	City          string          `json:"city,omitempty"`
	Condition     string          `json:"condition"`
	Description   string          `json:"description,omitempty"`
	Temperature   float64         `json:"temperature"`   // °C
	WindSpeed     float64         `json:"wind_speed"`    // km/h
	Humidity      float64         `json:"humidity"`      // %
	Pressure      float64         `json:"pressure"`      // hPa
	CloudCover    float64         `json:"cloud_cover"`   // %
	Precipitation float64         `json:"precipitation"` // mm
	Alerts        []OfficialAlert `json:"alerts,omitempty"`
	Forecast      ForecastSummary `json:"forecast,omitempty"`
}

// WeatherObservation is the extractor's input: either a structured provider
// report or a loosely formatted text payload. Exactly one side is set.
type WeatherObservation struct {
	Report *WeatherReport
	Text   string
}

// WeatherMetrics is the canonical metric set every classification runs on.
// Derived, immutable once computed; recomputed on every classification call.
type WeatherMetrics struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"wind_speed"`
	Precipitation float64 `json:"precipitation"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	CloudCover    float64 `json:"cloud_cover"`

	Condition      string          `json:"condition,omitempty"`
	OfficialAlerts []OfficialAlert `json:"official_alerts,omitempty"`
	Forecast       ForecastSummary `json:"forecast,omitempty"`
}

// forecast entries more severe than these mark the 24h outlook as severe.
const (
	severeForecastWind   = 60.0 // km/h in any 3h slot
	severeForecastPrecip = 10.0 // mm in any 3h slot
)

// SummarizeForecast reduces raw forecast entries to the 24-hour severity
// signals. Only entries within 24 hours of the earliest entry are considered.
func SummarizeForecast(entries []ForecastEntry) ForecastSummary {
	var summary ForecastSummary
	if len(entries) == 0 {
		return summary
	}

	cutoff := entries[0].Time.Add(24 * time.Hour)
	for _, e := range entries {
		if !e.Time.IsZero() && e.Time.After(cutoff) {
			continue
		}
		if e.WindSpeed > summary.MaxWind24h {
			summary.MaxWind24h = e.WindSpeed
		}
		summary.TotalPrecip24h += e.Precip3h

		if e.WindSpeed > severeForecastWind || e.Precip3h > severeForecastPrecip || namesStormSystem(e.Description) {
			summary.HasSevereForecast = true
			if e.Description != "" {
				summary.SevereConditions = append(summary.SevereConditions, e.Description)
			}
		}
	}
	return summary
}

func namesStormSystem(s string) bool {
	s = strings.ToLower(s)
	for _, w := range []string{"cyclone", "hurricane", "typhoon", "storm"} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Geocoder resolves location names to coordinates and back. A miss is
// reported as ErrNotFound, never as an empty success.
type Geocoder interface {
	// ForwardGeocode converts a location name to coordinates and
	// administrative names.
	ForwardGeocode(ctx context.Context, name string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to the nearest settlement.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat     float64
	Lon     float64
	Name    string
	State   string
	Country string
}

// WeatherProvider fetches current conditions and forecasts for a coordinate.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherReport, error)
	Forecast(ctx context.Context, lat, lon float64) ([]ForecastEntry, error)
}

// DirectionsProvider returns the ordered waypoints of a real route between
// two coordinates. A missing route is reported as ErrNotFound.
type DirectionsProvider interface {
	Route(ctx context.Context, start, end Coordinate) ([]Coordinate, error)
}
