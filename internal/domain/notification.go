package domain

import "time"

// NotificationStatus tracks a notification through its delivery lifecycle.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationFailed    NotificationStatus = "failed"
)

// NotificationRecord is the audit entry for one (subscriber, channel)
// dispatch attempt. Exactly one record per attempt; two attempts never
// share a record.
type NotificationRecord struct {
	ID      string  `json:"id"`
	Owner   string  `json:"owner"`
	AlertID string  `json:"alert_id"`
	Channel Channel `json:"channel"`

	Status       NotificationStatus `json:"status"`
	Recipient    string             `json:"recipient"`
	Subject      string             `json:"subject,omitempty"`
	Body         string             `json:"body"`
	ErrorMessage string             `json:"error_message,omitempty"`

	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
