package domain

import "time"

// Channel is a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Subscription is a standing request to be notified about alerts for a
// location. Matching is textual overlap on the location fields; radius
// geofencing is recorded but not yet used for matching.
type Subscription struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`

	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`

	Location string  `json:"location"`
	City     string  `json:"city,omitempty"`
	State    string  `json:"state,omitempty"`
	Country  string  `json:"country,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	RadiusKm float64 `json:"radius_km,omitempty"`

	EmailEnabled bool `json:"email_enabled"`
	PushEnabled  bool `json:"push_enabled"`

	NotifyOnLow      bool `json:"notify_on_low"`
	NotifyOnMedium   bool `json:"notify_on_medium"`
	NotifyOnHigh     bool `json:"notify_on_high"`
	NotifyOnCritical bool `json:"notify_on_critical"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// WantsSeverity reports whether the subscriber opted in to alerts of the
// given severity.
func (s Subscription) WantsSeverity(sev Severity) bool {
	switch sev {
	case SeverityLow:
		return s.NotifyOnLow
	case SeverityMedium:
		return s.NotifyOnMedium
	case SeverityHigh:
		return s.NotifyOnHigh
	case SeverityCritical:
		return s.NotifyOnCritical
	default:
		return false
	}
}

// Channels returns the delivery channels the subscriber enabled.
func (s Subscription) Channels() []Channel {
	var out []Channel
	if s.EmailEnabled && s.Email != "" {
		out = append(out, ChannelEmail)
	}
	if s.PushEnabled {
		out = append(out, ChannelPush)
	}
	return out
}
