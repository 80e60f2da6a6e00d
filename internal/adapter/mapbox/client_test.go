package mapbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
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
	c := NewClient("pk.test", 5*time.Second, discardLogger())
	c.baseURL = serverURL
	return c
}

func TestRoute(t *testing.T) {
	start := domain.Coordinate{Lat: 13.0827, Lon: 80.2707}
	end := domain.Coordinate{Lat: 10.7905, Lon: 78.7047}

	t.Run("returns ordered waypoints", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasPrefix(r.URL.Path, "/80.270700,13.082700;78.704700,10.790500"))
			assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
			assert.Equal(t, "full", r.URL.Query().Get("overview"))
			w.Write([]byte(`{"routes": [{"geometry": {"coordinates": [
				[80.2707, 13.0827],
				[79.8, 12.5],
				[78.7047, 10.7905]
			]}}]}`))
		}))
		defer server.Close()

		waypoints, err := newTestClient(server.URL).Route(context.Background(), start, end)
		require.NoError(t, err)
		require.Len(t, waypoints, 3)

		assert.Equal(t, domain.Coordinate{Lat: 13.0827, Lon: 80.2707}, waypoints[0])
		assert.Equal(t, domain.Coordinate{Lat: 12.5, Lon: 79.8}, waypoints[1])
		assert.Equal(t, domain.Coordinate{Lat: 10.7905, Lon: 78.7047}, waypoints[2])
	})

	t.Run("no route is ErrNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"routes": []}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Route(context.Background(), start, end)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("missing token", func(t *testing.T) {
		c := NewClient("", time.Second, discardLogger())
		_, err := c.Route(context.Background(), start, end)
		assert.ErrorIs(t, err, domain.ErrNoCredential)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Route(context.Background(), start, end)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})
}
