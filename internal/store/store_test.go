package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormline/advisory/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC))
	s, err := New(filepath.Join(t.TempDir(), "advisory.db"), clock, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func testAlert(clock clockwork.Clock, location string, alertType domain.AlertType, severity domain.Severity) domain.Alert {
	now := clock.Now().UTC()
	return domain.Alert{
		ID:          string(alertType) + "-" + location + "-" + now.Format("150405"),
		Type:        alertType,
		Severity:    severity,
		Title:       "Test Alert",
		Description: "test conditions",
		Location:    location,
		IsActive:    true,
		DetectedAt:  now,
		ExpiresAt:   now.Add(domain.AlertTTL),
	}
}

func TestCreateIfAbsent(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent within dedup window", func(t *testing.T) {
		s, clock := newTestStore(t)

		first, created, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.True(t, created)

		clock.Advance(3 * time.Hour)
		second, created, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("new alert after window passes", func(t *testing.T) {
		s, clock := newTestStore(t)

		first, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)

		clock.Advance(domain.DedupWindow + time.Second)
		second, created, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("different type is not deduplicated", func(t *testing.T) {
		s, clock := newTestStore(t)

		_, created, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.True(t, created)

		_, created, err = s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertStorm, domain.SeverityHigh))
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("different location is not deduplicated", func(t *testing.T) {
		s, clock := newTestStore(t)

		_, created, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.True(t, created)

		_, created, err = s.CreateIfAbsent(ctx, testAlert(clock, "mumbai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("inactive alerts do not block new ones", func(t *testing.T) {
		s, clock := newTestStore(t)

		alert := testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical)
		alert.ExpiresAt = clock.Now().UTC().Add(time.Hour)
		_, _, err := s.CreateIfAbsent(ctx, alert)
		require.NoError(t, err)

		clock.Advance(2 * time.Hour)
		_, err = s.ExpireStale(ctx)
		require.NoError(t, err)

		_, created, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		assert.True(t, created)
	})
}

func TestMarkSent(t *testing.T) {
	ctx := context.Background()

	t.Run("sets sent flag and timestamp", func(t *testing.T) {
		s, clock := newTestStore(t)
		alert, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)

		require.NoError(t, s.MarkSent(ctx, alert.ID))

		stored, err := s.GetAlert(ctx, alert.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsSent)
		require.NotNil(t, stored.SentAt)
		assert.Equal(t, clock.Now().UTC().Truncate(time.Second), *stored.SentAt)
	})

	t.Run("second call keeps original timestamp", func(t *testing.T) {
		s, clock := newTestStore(t)
		alert, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)

		require.NoError(t, s.MarkSent(ctx, alert.ID))
		firstSent := clock.Now().UTC().Truncate(time.Second)

		clock.Advance(time.Hour)
		require.NoError(t, s.MarkSent(ctx, alert.ID))

		stored, err := s.GetAlert(ctx, alert.ID)
		require.NoError(t, err)
		assert.Equal(t, firstSent, *stored.SentAt)
	})

	t.Run("unknown alert is an error", func(t *testing.T) {
		s, _ := newTestStore(t)
		err := s.MarkSent(ctx, "no-such-alert")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestListActive(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by location substring", func(t *testing.T) {
		s, clock := newTestStore(t)
		_, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		_, _, err = s.CreateIfAbsent(ctx, testAlert(clock, "mumbai", domain.AlertStorm, domain.SeverityHigh))
		require.NoError(t, err)

		alerts, err := s.ListActive(ctx, "chen", "")
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, "chennai", alerts[0].Location)
	})

	t.Run("filters by minimum severity", func(t *testing.T) {
		s, clock := newTestStore(t)
		_, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)
		_, _, err = s.CreateIfAbsent(ctx, testAlert(clock, "mumbai", domain.AlertStorm, domain.SeverityMedium))
		require.NoError(t, err)
		_, _, err = s.CreateIfAbsent(ctx, testAlert(clock, "delhi", domain.AlertHeatwave, domain.SeverityHigh))
		require.NoError(t, err)

		alerts, err := s.ListActive(ctx, "", domain.SeverityHigh)
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		for _, a := range alerts {
			assert.True(t, a.Severity.AtLeast(domain.SeverityHigh))
		}
	})

	t.Run("excludes expired alerts", func(t *testing.T) {
		s, clock := newTestStore(t)
		_, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
		require.NoError(t, err)

		clock.Advance(domain.AlertTTL + time.Minute)
		alerts, err := s.ListActive(ctx, "", "")
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestExpireStale(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	_, _, err := s.CreateIfAbsent(ctx, testAlert(clock, "chennai", domain.AlertFlood, domain.SeverityCritical))
	require.NoError(t, err)

	n, err := s.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.Advance(domain.AlertTTL + time.Minute)
	n, err = s.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()

	sub := domain.Subscription{
		Owner:            "asha",
		Email:            "asha@example.com",
		Location:         "chennai",
		City:             "Chennai",
		State:            "Tamil Nadu",
		EmailEnabled:     true,
		NotifyOnHigh:     true,
		NotifyOnCritical: true,
		IsActive:         true,
	}

	t.Run("save generates an ID and round-trips", func(t *testing.T) {
		s, _ := newTestStore(t)

		saved, err := s.SaveSubscription(ctx, sub)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())

		subs, err := s.ListActiveSubscriptions(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, saved.ID, subs[0].ID)
		assert.Equal(t, "asha", subs[0].Owner)
		assert.True(t, subs[0].EmailEnabled)
		assert.True(t, subs[0].NotifyOnCritical)
		assert.False(t, subs[0].NotifyOnLow)
	})

	t.Run("save with existing ID updates", func(t *testing.T) {
		s, _ := newTestStore(t)

		saved, err := s.SaveSubscription(ctx, sub)
		require.NoError(t, err)

		saved.City = "Madurai"
		_, err = s.SaveSubscription(ctx, saved)
		require.NoError(t, err)

		subs, err := s.ListActiveSubscriptions(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "Madurai", subs[0].City)
	})

	t.Run("inactive subscriptions are hidden", func(t *testing.T) {
		s, _ := newTestStore(t)

		inactive := sub
		inactive.IsActive = false
		_, err := s.SaveSubscription(ctx, inactive)
		require.NoError(t, err)

		subs, err := s.ListActiveSubscriptions(ctx)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("delete", func(t *testing.T) {
		s, _ := newTestStore(t)

		saved, err := s.SaveSubscription(ctx, sub)
		require.NoError(t, err)
		require.NoError(t, s.DeleteSubscription(ctx, saved.ID))

		err = s.DeleteSubscription(ctx, saved.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec := domain.NotificationRecord{
		Owner:     "asha",
		AlertID:   "flood-abc",
		Channel:   domain.ChannelEmail,
		Status:    domain.NotificationSent,
		Recipient: "asha@example.com",
		Subject:   "CRITICAL ALERT: Flash Flood Warning",
		Body:      "details",
	}

	saved, err := s.AppendNotification(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	failed := rec
	failed.Status = domain.NotificationFailed
	failed.ErrorMessage = "smtp timeout"
	_, err = s.AppendNotification(ctx, failed)
	require.NoError(t, err)

	t.Run("by alert", func(t *testing.T) {
		records, err := s.ListNotificationsForAlert(ctx, "flood-abc")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, domain.NotificationSent, records[0].Status)
		assert.Equal(t, "smtp timeout", records[1].ErrorMessage)
	})

	t.Run("by owner", func(t *testing.T) {
		records, err := s.ListNotificationsForOwner(ctx, "asha")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("unknown alert has no records", func(t *testing.T) {
		records, err := s.ListNotificationsForAlert(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestCheckReadiness(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.CheckReadiness(context.Background()))
}
