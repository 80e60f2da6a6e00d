package notify

import (
	"strings"

	"github.com/stormline/advisory/internal/domain"
)

// Match returns the subscriptions that should be notified about the alert:
// active, opted in to the alert's severity, and textually overlapping the
// alert's location.
func Match(alert domain.Alert, subs []domain.Subscription) []domain.Subscription {
	var matched []domain.Subscription
	for _, sub := range subs {
		if !sub.IsActive || !sub.WantsSeverity(alert.Severity) {
			continue
		}
		if locationsOverlap(alert, sub) {
			matched = append(matched, sub)
		}
	}
	return matched
}

// locationsOverlap compares the alert's location descriptor against the
// subscription's. Matching is case-insensitive substring containment in
// either direction, so "Chennai" matches both "Chennai, India" and "chennai".
func locationsOverlap(alert domain.Alert, sub domain.Subscription) bool {
	alertFields := []string{alert.Location, alert.City, alert.State}
	subFields := []string{sub.Location, sub.City, sub.State}

	for _, a := range alertFields {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		for _, s := range subFields {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if strings.Contains(a, s) || strings.Contains(s, a) {
				return true
			}
		}
	}
	return false
}
