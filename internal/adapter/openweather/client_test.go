package openweather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormline/advisory/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key", 5*time.Second, "IN", discardLogger())
	c.dataURL = serverURL
	c.geoURL = serverURL
	return c
}

func TestCurrentWeather(t *testing.T) {
	t.Run("converts units", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/weather", r.URL.Path)
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
			w.Write([]byte(`{
				"name": "Chennai",
				"weather": [{"main": "Rain", "description": "moderate rain"}],
				"main": {"temp": 29.4, "humidity": 83, "pressure": 1004},
				"wind": {"speed": 12.5},
				"clouds": {"all": 90},
				"rain": {"1h": 3.2}
			}`))
		}))
		defer server.Close()

		report, err := newTestClient(server.URL).CurrentWeather(context.Background(), 13.08, 80.27)
		require.NoError(t, err)

		assert.Equal(t, "Chennai", report.City)
		assert.Equal(t, "Rain", report.Condition)
		assert.Equal(t, "moderate rain", report.Description)
		assert.Equal(t, 29.4, report.Temperature)
		assert.InDelta(t, 45.0, report.WindSpeed, 0.001)
		assert.Equal(t, 83.0, report.Humidity)
		assert.Equal(t, 90.0, report.CloudCover)
		assert.Equal(t, 3.2, report.Precipitation)
	})

	t.Run("falls back to 3h rain", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"main": {"temp": 25}, "rain": {"3h": 9.6}}`))
		}))
		defer server.Close()

		report, err := newTestClient(server.URL).CurrentWeather(context.Background(), 13.08, 80.27)
		require.NoError(t, err)
		assert.Equal(t, 9.6, report.Precipitation)
	})

	t.Run("carries official alerts", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"main": {"temp": 25}, "alerts": [{"event": "Cyclone Warning", "sender_name": "IMD", "description": "Cyclone approaching"}]}`))
		}))
		defer server.Close()

		report, err := newTestClient(server.URL).CurrentWeather(context.Background(), 13.08, 80.27)
		require.NoError(t, err)
		require.Len(t, report.Alerts, 1)
		assert.Equal(t, "Cyclone Warning", report.Alerts[0].Event)
		assert.Equal(t, "IMD", report.Alerts[0].Sender)
	})

	t.Run("missing credential", func(t *testing.T) {
		c := NewClient("", time.Second, "IN", discardLogger())
		_, err := c.CurrentWeather(context.Background(), 13.08, 80.27)
		assert.ErrorIs(t, err, domain.ErrNoCredential)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).CurrentWeather(context.Background(), 13.08, 80.27)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})
}

func TestForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		w.Write([]byte(`{"list": [
			{"dt": 1756188000, "weather": [{"description": "heavy rain"}], "wind": {"speed": 20}, "rain": {"3h": 12}},
			{"dt": 1756198800, "weather": [{"description": "clear sky"}], "wind": {"speed": 5}}
		]}`))
	}))
	defer server.Close()

	entries, err := newTestClient(server.URL).Forecast(context.Background(), 13.08, 80.27)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, time.Unix(1756188000, 0).UTC(), entries[0].Time)
	assert.InDelta(t, 72.0, entries[0].WindSpeed, 0.001)
	assert.Equal(t, 12.0, entries[0].Precip3h)
	assert.Equal(t, "heavy rain", entries[0].Description)
	assert.Zero(t, entries[1].Precip3h)
}

func TestForwardGeocode(t *testing.T) {
	t.Run("prefers home country", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/direct", r.URL.Path)
			assert.Equal(t, "Salem", r.URL.Query().Get("q"))
			w.Write([]byte(`[
				{"name": "Salem", "lat": 42.52, "lon": -70.89, "country": "US", "state": "Massachusetts"},
				{"name": "Salem", "lat": 11.66, "lon": 78.15, "country": "IN", "state": "Tamil Nadu"}
			]`))
		}))
		defer server.Close()

		result, err := newTestClient(server.URL).ForwardGeocode(context.Background(), "Salem")
		require.NoError(t, err)
		assert.Equal(t, "IN", result.Country)
		assert.Equal(t, "Tamil Nadu", result.State)
		assert.Equal(t, 11.66, result.Lat)
	})

	t.Run("falls back to first candidate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"name": "Paris", "lat": 48.85, "lon": 2.35, "country": "FR"}]`))
		}))
		defer server.Close()

		result, err := newTestClient(server.URL).ForwardGeocode(context.Background(), "Paris")
		require.NoError(t, err)
		assert.Equal(t, "FR", result.Country)
	})

	t.Run("no match is ErrNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ForwardGeocode(context.Background(), "Nowhereville")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Contains(t, err.Error(), "Nowhereville")
	})
}

func TestReverseGeocode(t *testing.T) {
	t.Run("resolves nearest settlement", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reverse", r.URL.Path)
			w.Write([]byte(`[{"name": "Villupuram", "lat": 11.94, "lon": 79.49, "country": "IN", "state": "Tamil Nadu"}]`))
		}))
		defer server.Close()

		result, err := newTestClient(server.URL).ReverseGeocode(context.Background(), 11.94, 79.49)
		require.NoError(t, err)
		assert.Equal(t, "Villupuram", result.Name)
	})

	t.Run("no settlement is ErrNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ReverseGeocode(context.Background(), 0, 0)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
