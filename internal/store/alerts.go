package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stormline/advisory/internal/domain"
)

const alertColumns = `id, type, severity, title, description,
	location, city, state, country, lat, lon,
	temperature, wind_speed, precipitation, humidity,
	is_active, is_sent, detected_at, expires_at, sent_at`

// CreateIfAbsent persists a candidate alert unless an active alert for the
// same (location, type) was detected within the dedup window. The returned
// alert is always usable: the existing one on a dedup hit, the candidate
// otherwise. created reports which case occurred.
func (s *Store) CreateIfAbsent(ctx context.Context, candidate domain.Alert) (domain.Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	windowStart := s.clock.Now().UTC().Add(-domain.DedupWindow).Unix()
	row := tx.QueryRowContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE location = ? AND type = ? AND is_active = 1 AND detected_at >= ?
		ORDER BY detected_at DESC
		LIMIT 1`,
		candidate.Location, string(candidate.Type), windowStart)

	existing, err := scanAlert(row)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return domain.Alert{}, false, fmt.Errorf("dedup lookup: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		candidate.ID, string(candidate.Type), string(candidate.Severity), candidate.Title, candidate.Description,
		candidate.Location, candidate.City, candidate.State, candidate.Country, candidate.Lat, candidate.Lon,
		candidate.Temperature, candidate.WindSpeed, candidate.Precipitation, candidate.Humidity,
		boolToInt(candidate.IsActive), boolToInt(candidate.IsSent),
		candidate.DetectedAt.Unix(), candidate.ExpiresAt.Unix(), nullableTime(candidate.SentAt))
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("insert alert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Alert{}, false, fmt.Errorf("commit: %w", err)
	}
	return candidate, true, nil
}

// GetAlert fetches one alert by ID. A miss is domain.ErrNotFound.
func (s *Store) GetAlert(ctx context.Context, id string) (domain.Alert, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return domain.Alert{}, fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Alert{}, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

// MarkSent flags an alert as dispatched. Calling it again on an already-sent
// alert keeps the original sent timestamp; calling it on an unknown ID is
// domain.ErrNotFound.
func (s *Store) MarkSent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE alerts
		SET is_sent = 1, sent_at = COALESCE(sent_at, ?)
		WHERE id = ?`,
		s.clock.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark sent %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListActive returns unexpired active alerts, newest first, optionally
// filtered by a location substring and a minimum severity.
func (s *Store) ListActive(ctx context.Context, locationSubstr string, minSeverity domain.Severity) ([]domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE is_active = 1 AND expires_at > ?`
	args := []any{s.clock.Now().UTC().Unix()}

	if locationSubstr != "" {
		query += ` AND (location LIKE ? OR city LIKE ? OR state LIKE ?)`
		pattern := "%" + locationSubstr + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if minSeverity != "" {
		accepted := severitiesAtLeast(minSeverity)
		query += ` AND severity IN (` + placeholders(len(accepted)) + `)`
		for _, sev := range accepted {
			args = append(args, string(sev))
		}
	}
	query += ` ORDER BY detected_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// ExpireStale deactivates alerts past their expiry and returns how many
// were touched.
func (s *Store) ExpireStale(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET is_active = 0 WHERE is_active = 1 AND expires_at <= ?`,
		s.clock.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("expire alerts: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (domain.Alert, error) {
	var (
		a                    domain.Alert
		alertType, severity  string
		isActive, isSent     int
		detectedAt, expires  int64
		sentAt               sql.NullInt64
	)
	err := row.Scan(&a.ID, &alertType, &severity, &a.Title, &a.Description,
		&a.Location, &a.City, &a.State, &a.Country, &a.Lat, &a.Lon,
		&a.Temperature, &a.WindSpeed, &a.Precipitation, &a.Humidity,
		&isActive, &isSent, &detectedAt, &expires, &sentAt)
	if err != nil {
		return domain.Alert{}, err
	}
	a.Type = domain.AlertType(alertType)
	a.Severity = domain.Severity(severity)
	a.IsActive = isActive != 0
	a.IsSent = isSent != 0
	a.DetectedAt = time.Unix(detectedAt, 0).UTC()
	a.ExpiresAt = time.Unix(expires, 0).UTC()
	if sentAt.Valid {
		t := time.Unix(sentAt.Int64, 0).UTC()
		a.SentAt = &t
	}
	return a, nil
}

func severitiesAtLeast(min domain.Severity) []domain.Severity {
	var out []domain.Severity
	for _, sev := range domain.Severities() {
		if sev.AtLeast(min) {
			out = append(out, sev)
		}
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
