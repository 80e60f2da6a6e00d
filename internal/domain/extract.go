package domain

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Labeled-field patterns for loosely formatted text payloads, e.g.
// "Temperature: 21.3°C" or "wind speed: 45 km/h". Case-insensitive; the
// first capture group is the numeric value.
var (
	tempRe     = regexp.MustCompile(`(?i)temperature[:\s]+(-?\d+(?:\.\d+)?)`)
	windRe     = regexp.MustCompile(`(?i)wind(?:\s*speed)?[:\s]+(\d+(?:\.\d+)?)`)
	precipRe   = regexp.MustCompile(`(?i)precipitation[:\s]+(\d+(?:\.\d+)?)`)
	humidityRe = regexp.MustCompile(`(?i)humidity[:\s]+(\d+(?:\.\d+)?)`)
	cloudRe    = regexp.MustCompile(`(?i)cloud(?:\s*cover)?[:\s]+(\d+(?:\.\d+)?)`)
	pressureRe = regexp.MustCompile(`(?i)pressure[:\s]+(\d+(?:\.\d+)?)`)
)

// Precipitation estimates substituted when the condition text names rain but
// the gauge reads zero, keyed by intensity keyword.
const (
	estimateHeavyRain    = 15.0
	estimateModerateRain = 8.0
	estimateLightRain    = 3.0
	estimateDefaultRain  = 5.0
)

// ExtractMetrics normalizes a weather observation into the canonical metric
// set. Every field defaults to zero when absent; malformed numeric text is
// swallowed with a logged warning and the default retained. It never fails.
func ExtractMetrics(obs WeatherObservation, logger *slog.Logger) WeatherMetrics {
	if obs.Report != nil {
		return extractFromReport(*obs.Report)
	}
	return extractFromText(obs.Text, logger)
}

func extractFromReport(r WeatherReport) WeatherMetrics {
	m := WeatherMetrics{
		Temperature:    r.Temperature,
		WindSpeed:      r.WindSpeed,
		Precipitation:  r.Precipitation,
		Humidity:       r.Humidity,
		Pressure:       r.Pressure,
		CloudCover:     r.CloudCover,
		Condition:      r.Condition,
		OfficialAlerts: r.Alerts,
		Forecast:       r.Forecast,
	}

	// Worsening conditions are the operative risk: when the 24h forecast
	// exceeds the current reading, the larger value wins.
	if r.Forecast.HasSevereForecast {
		if r.Forecast.MaxWind24h > m.WindSpeed {
			m.WindSpeed = r.Forecast.MaxWind24h
		}
		if r.Forecast.TotalPrecip24h > m.Precipitation {
			m.Precipitation = r.Forecast.TotalPrecip24h
		}
	}

	if m.Precipitation == 0 {
		m.Precipitation = estimatePrecipitation(r.Condition, r.Description)
	}

	return m
}

func extractFromText(text string, logger *slog.Logger) WeatherMetrics {
	var m WeatherMetrics
	m.Temperature = matchMetric(tempRe, text, "temperature", logger)
	m.WindSpeed = matchMetric(windRe, text, "wind_speed", logger)
	m.Precipitation = matchMetric(precipRe, text, "precipitation", logger)
	m.Humidity = matchMetric(humidityRe, text, "humidity", logger)
	m.CloudCover = matchMetric(cloudRe, text, "cloud_cover", logger)
	m.Pressure = matchMetric(pressureRe, text, "pressure", logger)
	m.Condition = text

	if m.Precipitation == 0 {
		m.Precipitation = estimatePrecipitation(text, "")
	}
	return m
}

// matchMetric applies a labeled-field pattern and parses the captured value.
// Unmatched metrics stay at the zero default.
func matchMetric(re *regexp.Regexp, text, name string, logger *slog.Logger) float64 {
	groups := re.FindStringSubmatch(text)
	if len(groups) != 2 {
		return 0
	}
	v, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		if logger != nil {
			logger.Warn("malformed metric value, keeping default", "metric", name, "value", groups[1])
		}
		return 0
	}
	return v
}

// estimatePrecipitation substitutes a rainfall estimate when the condition
// text plainly states precipitation that the gauge did not measure, so
// downstream classification is not blind to a stated rain condition.
func estimatePrecipitation(condition, description string) float64 {
	text := strings.ToLower(condition + " " + description)

	raining := false
	for _, w := range []string{"rain", "drizzle", "shower", "thunderstorm"} {
		if strings.Contains(text, w) {
			raining = true
			break
		}
	}
	if !raining {
		return 0
	}

	switch {
	case strings.Contains(text, "heavy"):
		return estimateHeavyRain
	case strings.Contains(text, "moderate"):
		return estimateModerateRain
	case strings.Contains(text, "light"), strings.Contains(text, "drizzle"):
		return estimateLightRain
	default:
		return estimateDefaultRain
	}
}
