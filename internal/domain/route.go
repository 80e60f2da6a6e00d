package domain

import (
	"fmt"
	"strings"
	"time"
)

// TravelSeverity is the per-city travel risk label, independent of alert
// type. Ordered low < medium < high < critical.
type TravelSeverity string

const (
	TravelLow      TravelSeverity = "low"
	TravelMedium   TravelSeverity = "medium"
	TravelHigh     TravelSeverity = "high"
	TravelCritical TravelSeverity = "critical"
)

// Rank returns the position of the severity in the total order, starting at
// 0 for low.
func (s TravelSeverity) Rank() int {
	switch s {
	case TravelLow:
		return 0
	case TravelMedium:
		return 1
	case TravelHigh:
		return 2
	case TravelCritical:
		return 3
	default:
		return -1
	}
}

// RouteCity is one settlement along an analyzed route with its weather
// snapshot and travel risk. Weather is nil when the provider call for this
// city failed; such cities carry no severity and are excluded from the
// aggregate recommendation.
type RouteCity struct {
	Name       string         `json:"name"`
	State      string         `json:"state,omitempty"`
	Lat        float64        `json:"lat"`
	Lon        float64        `json:"lon"`
	DistanceKm float64        `json:"distance_km"`
	IsStart    bool           `json:"is_start,omitempty"`
	IsEnd      bool           `json:"is_end,omitempty"`

	Weather  *WeatherReport  `json:"weather,omitempty"`
	Severity TravelSeverity  `json:"severity,omitempty"`
	Alert    *Classification `json:"alert,omitempty"`
}

// RouteAnalysis is the full advisory for one route.
type RouteAnalysis struct {
	Start           string      `json:"start"`
	End             string      `json:"end"`
	TotalDistanceKm float64     `json:"total_distance_km"`
	Cities          []RouteCity `json:"cities"`
	Warnings        []string    `json:"warnings,omitempty"`
	Recommendation  string      `json:"recommendation"`
	GeneratedAt     time.Time   `json:"generated_at"`
}

// AssessTravelSeverity rates a single city's conditions for travel. Only
// genuinely hazardous conditions rate high or critical; light rain, drizzle
// and cloud cover are all low.
func AssessTravelSeverity(r WeatherReport) TravelSeverity {
	condition := strings.ToLower(r.Condition + " " + r.Description)

	for _, w := range []string{"thunderstorm", "tornado", "hurricane", "cyclone", "severe storm"} {
		if strings.Contains(condition, w) {
			return TravelCritical
		}
	}
	if r.Temperature > 48 || r.Temperature < -5 {
		return TravelCritical
	}
	if r.WindSpeed > 60 {
		return TravelCritical
	}

	for _, w := range []string{"heavy rain", "heavy snow", "blizzard", "hail", "ice storm"} {
		if strings.Contains(condition, w) {
			return TravelHigh
		}
	}
	if r.Temperature > 43 || r.Temperature < 2 {
		return TravelHigh
	}
	if r.WindSpeed > 40 {
		return TravelHigh
	}

	for _, w := range []string{"moderate rain", "light snow", "fog", "mist"} {
		if strings.Contains(condition, w) {
			return TravelMedium
		}
	}
	if r.Temperature > 38 || r.Temperature < 8 {
		return TravelMedium
	}
	if r.WindSpeed > 25 {
		return TravelMedium
	}

	return TravelLow
}

// Recommend aggregates per-city severities into a route recommendation.
// Escalation is monotonic: the worst single city governs the outcome and is
// never averaged away. Cities without weather data must be excluded by the
// caller before aggregation.
func Recommend(cities []RouteCity) string {
	rated := make([]RouteCity, 0, len(cities))
	for _, c := range cities {
		if c.Weather != nil && c.Severity != "" {
			rated = append(rated, c)
		}
	}
	if len(rated) == 0 {
		return "Unable to generate recommendation: no weather data available."
	}

	var critical, high, medium []string
	for _, c := range rated {
		switch c.Severity {
		case TravelCritical:
			critical = append(critical, c.Name)
		case TravelHigh:
			high = append(high, c.Name)
		case TravelMedium:
			medium = append(medium, c.Name)
		}
	}

	switch {
	case len(critical) > 0:
		return fmt.Sprintf(
			"DO NOT TRAVEL: critical weather conditions detected in %s. Extreme weather poses serious safety risks. Postpone travel or take an alternative route.",
			strings.Join(critical, ", "))
	case len(high) >= 2:
		return fmt.Sprintf(
			"TRAVEL NOT RECOMMENDED: hazardous weather in %s. Heavy rain, snow, or very strong winds expected. Consider delaying travel until conditions improve.",
			strings.Join(high, ", "))
	case len(high) == 1:
		return fmt.Sprintf(
			"CAUTION ADVISED: hazardous weather expected in %s. Travel possible but drive carefully through this area and monitor weather updates.",
			high[0])
	case float64(len(medium)) >= float64(len(rated))*0.5:
		return "TRAVEL SAFE WITH CAUTION: some areas may have moderate rain, fog, or winds. Normal travel possible; drive carefully and stay alert to changing conditions."
	default:
		return "EXCELLENT CONDITIONS: weather is favorable for travel along this route. Safe journey expected."
	}
}
