package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/stormline/advisory/internal/domain"
)

// Client implements domain.DirectionsProvider using the Mapbox Directions
// API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Mapbox directions client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/directions/v5/mapbox/driving",
		logger:  logger,
	}
}

// Route fetches the driving route between two coordinates and returns its
// full geometry as ordered waypoints. A missing route is domain.ErrNotFound.
func (c *Client) Route(ctx context.Context, start, end domain.Coordinate) ([]domain.Coordinate, error) {
	if c.token == "" {
		return nil, domain.ErrNoCredential
	}

	// Mapbox uses lon,lat order.
	coords := fmt.Sprintf("%.6f,%.6f;%.6f,%.6f", start.Lon, start.Lat, end.Lon, end.Lat)
	params := url.Values{
		"access_token": {c.token},
		"geometries":   {"geojson"},
		"overview":     {"full"},
	}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, coords, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(payload.Routes) == 0 || len(payload.Routes[0].Geometry.Coordinates) == 0 {
		return nil, fmt.Errorf("route %s: %w", coords, domain.ErrNotFound)
	}

	geometry := payload.Routes[0].Geometry.Coordinates
	waypoints := make([]domain.Coordinate, 0, len(geometry))
	for _, pair := range geometry {
		if len(pair) != 2 {
			continue
		}
		waypoints = append(waypoints, domain.Coordinate{Lat: pair[1], Lon: pair[0]})
	}
	return waypoints, nil
}

// Mapbox API response types.

type response struct {
	Routes []route `json:"routes"`
}

type route struct {
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
}
