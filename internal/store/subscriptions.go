package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stormline/advisory/internal/domain"
)

const subscriptionColumns = `id, owner, email, phone_number,
	location, city, state, country, lat, lon, radius_km,
	email_enabled, push_enabled,
	notify_on_low, notify_on_medium, notify_on_high, notify_on_critical,
	is_active, created_at`

// SaveSubscription inserts or updates a subscription. A blank ID gets a
// generated one; the (possibly updated) subscription is returned.
func (s *Store) SaveSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.clock.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			email = excluded.email,
			phone_number = excluded.phone_number,
			location = excluded.location,
			city = excluded.city,
			state = excluded.state,
			country = excluded.country,
			lat = excluded.lat,
			lon = excluded.lon,
			radius_km = excluded.radius_km,
			email_enabled = excluded.email_enabled,
			push_enabled = excluded.push_enabled,
			notify_on_low = excluded.notify_on_low,
			notify_on_medium = excluded.notify_on_medium,
			notify_on_high = excluded.notify_on_high,
			notify_on_critical = excluded.notify_on_critical,
			is_active = excluded.is_active`,
		sub.ID, sub.Owner, sub.Email, sub.PhoneNumber,
		sub.Location, sub.City, sub.State, sub.Country, sub.Lat, sub.Lon, sub.RadiusKm,
		boolToInt(sub.EmailEnabled), boolToInt(sub.PushEnabled),
		boolToInt(sub.NotifyOnLow), boolToInt(sub.NotifyOnMedium), boolToInt(sub.NotifyOnHigh), boolToInt(sub.NotifyOnCritical),
		boolToInt(sub.IsActive), sub.CreatedAt.Unix())
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}
	return sub, nil
}

// ListActiveSubscriptions returns all active subscriptions.
func (s *Store) ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE is_active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var (
			sub                                    domain.Subscription
			emailOn, pushOn                        int
			onLow, onMedium, onHigh, onCritical    int
			isActive                               int
			createdAt                              int64
		)
		err := rows.Scan(&sub.ID, &sub.Owner, &sub.Email, &sub.PhoneNumber,
			&sub.Location, &sub.City, &sub.State, &sub.Country, &sub.Lat, &sub.Lon, &sub.RadiusKm,
			&emailOn, &pushOn,
			&onLow, &onMedium, &onHigh, &onCritical,
			&isActive, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.EmailEnabled = emailOn != 0
		sub.PushEnabled = pushOn != 0
		sub.NotifyOnLow = onLow != 0
		sub.NotifyOnMedium = onMedium != 0
		sub.NotifyOnHigh = onHigh != 0
		sub.NotifyOnCritical = onCritical != 0
		sub.IsActive = isActive != 0
		sub.CreatedAt = time.Unix(createdAt, 0).UTC()
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeleteSubscription removes a subscription by ID. Unknown IDs are
// domain.ErrNotFound.
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subscription %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
