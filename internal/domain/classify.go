package domain

import (
	"fmt"
	"strings"
)

// Thresholds holds the boundaries of the classification cascade. Current
// reading comparisons are inclusive on these values; the forecast
// comparisons are strict.
type Thresholds struct {
	TempHigh      float64 // °C, heatwave
	TempExtreme   float64 // °C, escalates heatwave to critical
	TempLow       float64 // °C, severe cold
	TempSevereLow float64 // °C, escalates cold to medium

	WindHigh      float64 // km/h, storm
	WindHurricane float64 // km/h, hurricane force

	PrecipModerate  float64 // mm, compound rain rule
	PrecipHeavy     float64 // mm, heavy rain
	PrecipHeavyHigh float64 // mm, escalates heavy rain to high
	PrecipCritical  float64 // mm, flash flood

	HumiditySaturated float64 // %
	CloudOvercast     float64 // %

	ForecastWindCritical   float64 // km/h over 24h
	ForecastWindHigh       float64 // km/h over 24h
	ForecastPrecipCritical float64 // mm over 24h
	ForecastPrecipHigh     float64 // mm over 24h
}

// DefaultThresholds returns the deployed threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHigh:      40,
		TempExtreme:   45,
		TempLow:       -10,
		TempSevereLow: -20,

		WindHigh:      70,
		WindHurricane: 118,

		PrecipModerate:  5,
		PrecipHeavy:     15,
		PrecipHeavyHigh: 25,
		PrecipCritical:  50,

		HumiditySaturated: 85,
		CloudOvercast:     90,

		ForecastWindCritical:   100,
		ForecastWindHigh:       60,
		ForecastPrecipCritical: 50,
		ForecastPrecipHigh:     30,
	}
}

// Classification is the outcome of running the rule cascade over a metric
// set: the threat type, its severity, and a human-readable title and
// description with the triggering numbers embedded. The description is
// stored verbatim on the alert and is the audit trail for the decision.
type Classification struct {
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// rule is one entry in the ordered cascade. eval returns the classification
// and true when the rule fires.
type rule struct {
	name string
	eval func(t Thresholds, m WeatherMetrics, location string) (Classification, bool)
}

// Classifier evaluates metrics against the ordered rule cascade. The first
// matching rule wins; later rules are never consulted. Safe for concurrent
// use.
type Classifier struct {
	thresholds Thresholds
	rules      []rule
}

// NewClassifier builds a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t, rules: cascade()}
}

// Classify runs the cascade over the metrics. The second return is false
// when no rule fires, meaning conditions are normal for the location.
func (c *Classifier) Classify(m WeatherMetrics, location string) (Classification, bool) {
	for _, r := range c.rules {
		if out, ok := r.eval(c.thresholds, m, location); ok {
			return out, true
		}
	}
	return Classification{}, false
}

// cascade returns the rules in evaluation order. Order encodes precedence
// and is a correctness property: official alerts outrank forecasts, which
// outrank current readings. The compound rain rule sits after plain heavy
// rain and so never fires when precipitation alone already matched.
func cascade() []rule {
	return []rule{
		{name: "official_alert", eval: evalOfficialAlert},
		{name: "severe_forecast", eval: evalSevereForecast},
		{name: "hurricane_wind", eval: evalHurricaneWind},
		{name: "extreme_heat", eval: evalExtremeHeat},
		{name: "flash_flood", eval: evalFlashFlood},
		{name: "heavy_rain", eval: evalHeavyRain},
		{name: "compound_rain", eval: evalCompoundRain},
		{name: "severe_storm", eval: evalSevereStorm},
		{name: "wind_advisory", eval: evalWindAdvisory},
		{name: "severe_cold", eval: evalSevereCold},
	}
}

// An alert from a meteorological service always outranks anything derived
// from readings.
func evalOfficialAlert(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if len(m.OfficialAlerts) == 0 {
		return Classification{}, false
	}
	a := m.OfficialAlerts[0]
	event := strings.ToLower(a.Event)

	severity := SeverityCritical
	for _, w := range []string{"watch", "advisory", "yellow"} {
		if strings.Contains(event, w) {
			severity = SeverityHigh
			break
		}
	}

	alertType := AlertStorm
	for _, w := range []string{"cyclone", "hurricane", "typhoon"} {
		if strings.Contains(event, w) {
			alertType = AlertHurricane
			break
		}
	}

	desc := strings.TrimSpace(a.Description)
	if desc != "" {
		desc += " "
	}
	desc += fmt.Sprintf(
		"Current conditions in %s: %.1f°C, %.1f km/h winds, %.1f mm rain, %.0f%% humidity. Follow official guidance and evacuation orders.",
		location, m.Temperature, m.WindSpeed, m.Precipitation, m.Humidity)

	return Classification{
		Type:        alertType,
		Severity:    severity,
		Title:       fmt.Sprintf("Official Alert: %s", a.Event),
		Description: desc,
	}, true
}

// A severe 24h outlook beats anything the current readings say. Forecast
// comparisons are strict; the boundary value does not trigger.
func evalSevereForecast(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	f := m.Forecast
	if !f.HasSevereForecast {
		return Classification{}, false
	}

	stormSystem := false
	for _, c := range f.SevereConditions {
		lc := strings.ToLower(c)
		if strings.Contains(lc, "cyclone") || strings.Contains(lc, "hurricane") {
			stormSystem = true
			break
		}
	}

	if f.MaxWind24h > t.ForecastWindCritical || f.TotalPrecip24h > t.ForecastPrecipCritical || stormSystem {
		return Classification{
			Type:     AlertHurricane,
			Severity: SeverityCritical,
			Title:    "Severe Weather Warning: Dangerous Conditions Approaching",
			Description: fmt.Sprintf(
				"Severe weather system approaching %s with %.1f km/h winds and %.1f mm rainfall expected in the next 24 hours. High risk of flooding, landslides, and falling trees. Avoid unnecessary travel and stay indoors.",
				location, f.MaxWind24h, f.TotalPrecip24h),
		}, true
	}
	if f.MaxWind24h > t.ForecastWindHigh || f.TotalPrecip24h > t.ForecastPrecipHigh {
		return Classification{
			Type:     AlertStorm,
			Severity: SeverityHigh,
			Title:    "Severe Weather Alert: Storm Approaching",
			Description: fmt.Sprintf(
				"Storm forecast for %s with %.1f km/h winds and %.1f mm rainfall expected in the next 24 hours. Flooding possible. Secure outdoor objects and avoid travel if possible.",
				location, f.MaxWind24h, f.TotalPrecip24h),
		}, true
	}
	return Classification{}, false
}

func evalHurricaneWind(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.WindSpeed < t.WindHurricane {
		return Classification{}, false
	}
	return Classification{
		Type:     AlertHurricane,
		Severity: SeverityCritical,
		Title:    "Hurricane Force Winds Detected",
		Description: fmt.Sprintf(
			"Extremely dangerous wind speeds of %.1f km/h detected in %s. Seek shelter immediately. Severe structural damage possible.",
			m.WindSpeed, location),
	}, true
}

func evalExtremeHeat(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.Temperature < t.TempHigh {
		return Classification{}, false
	}
	severity := SeverityHigh
	if m.Temperature >= t.TempExtreme {
		severity = SeverityCritical
	}
	return Classification{
		Type:     AlertHeatwave,
		Severity: severity,
		Title:    "Extreme Heat Warning",
		Description: fmt.Sprintf(
			"Dangerous heat conditions in %s with temperature at %.1f°C. Stay hydrated and avoid prolonged outdoor exposure.",
			location, m.Temperature),
	}, true
}

func evalFlashFlood(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.Precipitation < t.PrecipCritical {
		return Classification{}, false
	}
	return Classification{
		Type:     AlertFlood,
		Severity: SeverityCritical,
		Title:    "Flash Flood Warning",
		Description: fmt.Sprintf(
			"Extremely heavy rainfall of %.1f mm detected in %s. Flash flooding likely. Move to higher ground immediately.",
			m.Precipitation, location),
	}, true
}

func evalHeavyRain(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.Precipitation < t.PrecipHeavy {
		return Classification{}, false
	}
	severity := SeverityMedium
	if m.Precipitation >= t.PrecipHeavyHigh {
		severity = SeverityHigh
	}
	return Classification{
		Type:     AlertHeavyRain,
		Severity: severity,
		Title:    "Heavy Rainfall Alert",
		Description: fmt.Sprintf(
			"Heavy rainfall of %.1f mm detected in %s with %.0f%% humidity. Flooding possible in low-lying areas. Roads may be slippery.",
			m.Precipitation, location, m.Humidity),
	}, true
}

// Compound signal for active rain that the gauge under-reports: moderate
// precipitation with saturated air under full overcast.
func evalCompoundRain(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.Precipitation < t.PrecipModerate || m.Humidity < t.HumiditySaturated || m.CloudCover < t.CloudOvercast {
		return Classification{}, false
	}
	return Classification{
		Type:     AlertHeavyRain,
		Severity: SeverityMedium,
		Title:    "Heavy Rain Expected",
		Description: fmt.Sprintf(
			"Active rainfall of %.1f mm detected in %s with %.0f%% humidity and %.0f%% cloud cover. Wet roads and reduced visibility. Conditions may worsen.",
			m.Precipitation, location, m.Humidity, m.CloudCover),
	}, true
}

func evalSevereStorm(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.WindSpeed < t.WindHigh || m.Precipitation < t.PrecipModerate {
		return Classification{}, false
	}
	return Classification{
		Type:     AlertStorm,
		Severity: SeverityHigh,
		Title:    "Severe Storm Warning",
		Description: fmt.Sprintf(
			"Severe storm conditions in %s with %.1f km/h winds and heavy rain. Stay indoors and secure loose objects.",
			location, m.WindSpeed),
	}, true
}

func evalWindAdvisory(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.WindSpeed < t.WindHigh {
		return Classification{}, false
	}
	return Classification{
		Type:     AlertStorm,
		Severity: SeverityMedium,
		Title:    "High Wind Advisory",
		Description: fmt.Sprintf(
			"Strong winds of %.1f km/h expected in %s. Secure outdoor objects and use caution while driving.",
			m.WindSpeed, location),
	}, true
}

func evalSevereCold(t Thresholds, m WeatherMetrics, location string) (Classification, bool) {
	if m.Temperature > t.TempLow {
		return Classification{}, false
	}
	severity := SeverityLow
	if m.Temperature <= t.TempSevereLow {
		severity = SeverityMedium
	}
	return Classification{
		Type:     AlertSnow,
		Severity: severity,
		Title:    "Extreme Cold Warning",
		Description: fmt.Sprintf(
			"Dangerously cold temperature of %.1f°C in %s. Frostbite and hypothermia risk. Dress warmly.",
			m.Temperature, location),
	}, true
}
