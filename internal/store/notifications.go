package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stormline/advisory/internal/domain"
)

const notificationColumns = `id, owner, alert_id, channel, status,
	recipient, subject, body, error_message, sent_at, created_at`

// AppendNotification writes one dispatch audit record. A blank ID gets a
// generated one; records are append-only.
func (s *Store) AppendNotification(ctx context.Context, rec domain.NotificationRecord) (domain.NotificationRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.AlertID, string(rec.Channel), string(rec.Status),
		rec.Recipient, rec.Subject, rec.Body, rec.ErrorMessage,
		nullableTime(rec.SentAt), rec.CreatedAt.Unix())
	if err != nil {
		return domain.NotificationRecord{}, fmt.Errorf("append notification: %w", err)
	}
	return rec, nil
}

// ListNotificationsForAlert returns all dispatch records for one alert in
// creation order.
func (s *Store) ListNotificationsForAlert(ctx context.Context, alertID string) ([]domain.NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE alert_id = ? ORDER BY created_at, id`, alertID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ListNotificationsForOwner returns a subscriber's dispatch history, newest
// first.
func (s *Store) ListNotificationsForOwner(ctx context.Context, owner string) ([]domain.NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE owner = ? ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func scanNotifications(rows *sql.Rows) ([]domain.NotificationRecord, error) {
	var records []domain.NotificationRecord
	for rows.Next() {
		var (
			rec             domain.NotificationRecord
			channel, status string
			sentAt          sql.NullInt64
			createdAt       int64
		)
		err := rows.Scan(&rec.ID, &rec.Owner, &rec.AlertID, &channel, &status,
			&rec.Recipient, &rec.Subject, &rec.Body, &rec.ErrorMessage,
			&sentAt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.Channel = domain.Channel(channel)
		rec.Status = domain.NotificationStatus(status)
		if sentAt.Valid {
			t := time.Unix(sentAt.Int64, 0).UTC()
			rec.SentAt = &t
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
