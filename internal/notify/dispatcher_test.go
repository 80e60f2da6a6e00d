package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormline/advisory/internal/domain"
	"github.com/stormline/advisory/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAlert() domain.Alert {
	return domain.Alert{
		ID:          "flood-abc123",
		Type:        domain.AlertFlood,
		Severity:    domain.SeverityHigh,
		Title:       "Flash Flood Warning",
		Description: "Extreme rainfall detected.",
		Location:    "Chennai, India",
		Temperature: 27.5, WindSpeed: 32, Precipitation: 62, Humidity: 95,
		DetectedAt: time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
	}
}

func newTestDispatcher(transports map[domain.Channel]Transport, records RecordStore) *Dispatcher {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC))
	return NewDispatcher(transports, records, 2, clock, discardLogger(), observability.NewMetricsForTesting())
}

func TestDispatch(t *testing.T) {
	subs := []domain.Subscription{
		{Owner: "asha", Email: "asha@example.com", EmailEnabled: true, PushEnabled: true, IsActive: true},
		{Owner: "vikram", Email: "vikram@example.com", EmailEnabled: true, IsActive: true},
		{Owner: "meena", PushEnabled: true, IsActive: true},
	}

	t.Run("one record per subscriber and channel", func(t *testing.T) {
		email := &fakeTransport{}
		push := &fakeTransport{}
		records := &fakeRecordStore{}
		d := newTestDispatcher(map[domain.Channel]Transport{
			domain.ChannelEmail: email,
			domain.ChannelPush:  push,
		}, records)

		result := d.Dispatch(context.Background(), testAlert(), subs)

		assert.Equal(t, Result{Sent: 4}, result)
		assert.Equal(t, 2, email.calls())
		assert.Equal(t, 2, push.calls())
		require.Len(t, records.all(), 4)
		for _, rec := range records.all() {
			assert.Equal(t, "flood-abc123", rec.AlertID)
			assert.Equal(t, domain.NotificationSent, rec.Status)
			require.NotNil(t, rec.SentAt)
			assert.NotEmpty(t, rec.Body)
		}
	})

	t.Run("one failing transport does not block the rest", func(t *testing.T) {
		email := &fakeTransport{err: errors.New("smtp connection refused")}
		push := &fakeTransport{}
		records := &fakeRecordStore{}
		d := newTestDispatcher(map[domain.Channel]Transport{
			domain.ChannelEmail: email,
			domain.ChannelPush:  push,
		}, records)

		result := d.Dispatch(context.Background(), testAlert(), subs)

		assert.Equal(t, Result{Sent: 2, Failed: 2}, result)
		require.Len(t, records.all(), 4)
		for _, rec := range records.all() {
			if rec.Channel == domain.ChannelEmail {
				assert.Equal(t, domain.NotificationFailed, rec.Status)
				assert.Equal(t, "smtp connection refused", rec.ErrorMessage)
				assert.Nil(t, rec.SentAt)
			} else {
				assert.Equal(t, domain.NotificationSent, rec.Status)
			}
		}
	})

	t.Run("missing transport skips the channel", func(t *testing.T) {
		records := &fakeRecordStore{}
		d := newTestDispatcher(map[domain.Channel]Transport{
			domain.ChannelEmail: &fakeTransport{},
		}, records)

		result := d.Dispatch(context.Background(), testAlert(), subs)

		assert.Equal(t, Result{Sent: 2, Skipped: 2}, result)
		assert.Len(t, records.all(), 2)
	})

	t.Run("no subscribers is a no-op", func(t *testing.T) {
		records := &fakeRecordStore{}
		d := newTestDispatcher(map[domain.Channel]Transport{domain.ChannelEmail: &fakeTransport{}}, records)

		result := d.Dispatch(context.Background(), testAlert(), nil)
		assert.Equal(t, Result{}, result)
		assert.Empty(t, records.all())
	})
}

func TestRenderEmail(t *testing.T) {
	body := RenderEmail("asha", testAlert())

	assert.Contains(t, body, "WEATHER ALERT - HIGH")
	assert.Contains(t, body, "Hi asha,")
	assert.Contains(t, body, "Flash Flood Warning")
	assert.Contains(t, body, "Location: Chennai, India")
	assert.Contains(t, body, "Type: Flood")
	assert.Contains(t, body, "Detected: 2026-08-26 09:30:00 UTC")
	assert.Contains(t, body, "Precipitation: 62.0 mm")
	assert.Contains(t, body, "Stay indoors")
}

func TestRenderEmailTypeLabel(t *testing.T) {
	alert := testAlert()
	alert.Type = domain.AlertHeavyRain
	assert.Contains(t, RenderEmail("x", alert), "Type: Heavy Rain")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "HIGH ALERT: Flash Flood Warning", Subject(testAlert()))
}

func TestRenderSMS(t *testing.T) {
	msg := RenderSMS(testAlert())
	assert.Contains(t, msg, "HIGH ALERT for Chennai, India")
	assert.Contains(t, msg, "Flash Flood Warning")
	assert.Contains(t, msg, "09:30 UTC")
}

type fakeTransport struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeTransport) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records []domain.NotificationRecord
}

func (f *fakeRecordStore) AppendNotification(_ context.Context, rec domain.NotificationRecord) (domain.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeRecordStore) all() []domain.NotificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NotificationRecord(nil), f.records...)
}
