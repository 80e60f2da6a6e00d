package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Severity is the ordered alert severity scale. The total order
// Low < Medium < High < Critical drives both ledger severity queries and
// per-subscriber opt-in filtering.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the position of the severity in the total order, starting at
// 0 for Low. Unknown severities rank below Low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether s is at or above min in the severity order.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Severities lists all severity levels in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// AlertType identifies the kind of weather threat an alert describes.
type AlertType string

const (
	AlertHurricane  AlertType = "hurricane"
	AlertCyclone    AlertType = "cyclone"
	AlertFlood      AlertType = "flood"
	AlertTornado    AlertType = "tornado"
	AlertEarthquake AlertType = "earthquake"
	AlertTsunami    AlertType = "tsunami"
	AlertHeatwave   AlertType = "heatwave"
	AlertWildfire   AlertType = "wildfire"
	AlertStorm      AlertType = "storm"
	AlertHeavyRain  AlertType = "heavy_rain"
	AlertSnow       AlertType = "snow"
)

// Alert is a detected weather threat for a location. Created once, mutated
// only to flip IsSent/IsActive. Expired alerts are never revived; a fresh
// alert is created instead.
type Alert struct {
	ID          string    `json:"id"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	// Location descriptor: the raw string the caller supplied plus the
	// geocoded resolution.
	Location string  `json:"location"`
	City     string  `json:"city,omitempty"`
	State    string  `json:"state,omitempty"`
	Country  string  `json:"country,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`

	// Snapshot of the metrics that triggered the alert.
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"wind_speed"`
	Precipitation float64 `json:"precipitation"`
	Humidity      float64 `json:"humidity"`

	IsActive bool `json:"is_active"`
	IsSent   bool `json:"is_sent"`

	DetectedAt time.Time  `json:"detected_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

// AlertTTL is how long an alert stays active after detection.
const AlertTTL = 24 * time.Hour

// DedupWindow is the interval within which a second trigger for the same
// (location, type) pair is folded into the existing alert.
const DedupWindow = 6 * time.Hour

// NewAlert builds an alert from a classification outcome, the caller's
// location string, its geocoded resolution, and the triggering metrics.
// Detection and expiry timestamps come from the package clock.
func NewAlert(c Classification, location string, geo GeocodingResult, m WeatherMetrics) Alert {
	now := clock.Now().UTC()
	return Alert{
		ID:          newAlertID(c.Type, location, now),
		Type:        c.Type,
		Severity:    c.Severity,
		Title:       c.Title,
		Description: c.Description,

		Location: location,
		City:     geo.Name,
		State:    geo.State,
		Country:  geo.Country,
		Lat:      geo.Lat,
		Lon:      geo.Lon,

		Temperature:   m.Temperature,
		WindSpeed:     m.WindSpeed,
		Precipitation: m.Precipitation,
		Humidity:      m.Humidity,

		IsActive:   true,
		IsSent:     false,
		DetectedAt: now,
		ExpiresAt:  now.Add(AlertTTL),
	}
}

// newAlertID produces a deterministic ID from the alert's identity fields.
// Re-detecting the same threat in the same second produces the same ID,
// which keeps concurrent duplicate inserts harmless.
func newAlertID(t AlertType, location string, detectedAt time.Time) string {
	input := fmt.Sprintf("%s|%s|%d", t, location, detectedAt.Unix())
	hash := sha256.Sum256([]byte(input))
	return string(t) + "-" + hex.EncodeToString(hash[:8])
}
