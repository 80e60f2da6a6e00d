package notify

import (
	"fmt"
	"strings"

	"github.com/stormline/advisory/internal/domain"
)

// Subject builds the notification subject line shared by all channels.
func Subject(alert domain.Alert) string {
	return fmt.Sprintf("%s ALERT: %s", strings.ToUpper(string(alert.Severity)), alert.Title)
}

// RenderEmail builds the plain-text email body for an alert.
func RenderEmail(owner string, alert domain.Alert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "WEATHER ALERT - %s\n\n", strings.ToUpper(string(alert.Severity)))
	fmt.Fprintf(&b, "Hi %s,\n\n", owner)
	fmt.Fprintf(&b, "%s\n\n%s\n\n", alert.Title, alert.Description)

	b.WriteString("ALERT DETAILS:\n--------------\n")
	fmt.Fprintf(&b, "Location: %s\n", alert.Location)
	fmt.Fprintf(&b, "Severity: %s\n", strings.ToUpper(string(alert.Severity)))
	fmt.Fprintf(&b, "Type: %s\n", typeLabel(alert.Type))
	fmt.Fprintf(&b, "Detected: %s\n", alert.DetectedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	if alert.Temperature != 0 || alert.WindSpeed != 0 || alert.Precipitation != 0 || alert.Humidity != 0 {
		b.WriteString("\nWEATHER CONDITIONS:\n-------------------\n")
		fmt.Fprintf(&b, "Temperature: %.1f°C\n", alert.Temperature)
		fmt.Fprintf(&b, "Wind Speed: %.1f km/h\n", alert.WindSpeed)
		fmt.Fprintf(&b, "Precipitation: %.1f mm\n", alert.Precipitation)
		fmt.Fprintf(&b, "Humidity: %.1f%%\n", alert.Humidity)
	}

	b.WriteString(`
SAFETY RECOMMENDATIONS:
-----------------------
* Stay indoors and away from windows
* Monitor local news and weather updates
* Have emergency supplies ready
* Follow instructions from local authorities

Stay safe,
Stormline Advisory Team
`)
	return b.String()
}

// RenderSMS builds a compact message for length-limited channels.
func RenderSMS(alert domain.Alert) string {
	return fmt.Sprintf("%s ALERT for %s: %s. Detected %s UTC.",
		strings.ToUpper(string(alert.Severity)), alert.Location, alert.Title,
		alert.DetectedAt.UTC().Format("15:04"))
}

// typeLabel turns an alert type like "heavy_rain" into "Heavy Rain".
func typeLabel(t domain.AlertType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
