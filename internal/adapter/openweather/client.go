package openweather

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

// Client implements domain.WeatherProvider and domain.Geocoder using the
// OpenWeatherMap current weather, 5-day forecast, and geocoding APIs.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	dataURL     string
	geoURL      string
	homeCountry string
	logger      *slog.Logger
}

// NewClient creates an OpenWeatherMap client. homeCountry is the ISO country
// code used to bias ambiguous forward geocode results.
func NewClient(apiKey string, timeout time.Duration, homeCountry string, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		dataURL:     "https://api.openweathermap.org/data/2.5",
		geoURL:      "https://api.openweathermap.org/geo/1.0",
		homeCountry: homeCountry,
		logger:      logger,
	}
}

// CurrentWeather fetches current conditions for a coordinate, converted to
// canonical units (°C, km/h, mm).
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
	if c.apiKey == "" {
		return domain.WeatherReport{}, domain.ErrNoCredential
	}

	params := url.Values{
		"lat":   {fmt.Sprintf("%.6f", lat)},
		"lon":   {fmt.Sprintf("%.6f", lon)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}

	var payload weatherResponse
	if err := c.doRequest(ctx, c.dataURL+"/weather?"+params.Encode(), "current weather", &payload); err != nil {
		return domain.WeatherReport{}, err
	}

	report := domain.WeatherReport{
		City:        payload.Name,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		// The metric API reports wind in m/s.
		WindSpeed:     payload.Wind.Speed * 3.6,
		CloudCover:    payload.Clouds.All,
		Precipitation: payload.Rain.OneHour,
	}
	if report.Precipitation == 0 {
		report.Precipitation = payload.Rain.ThreeHour
	}
	if len(payload.Weather) > 0 {
		report.Condition = payload.Weather[0].Main
		report.Description = payload.Weather[0].Description
	}
	for _, a := range payload.Alerts {
		report.Alerts = append(report.Alerts, domain.OfficialAlert{
			Event:       a.Event,
			Sender:      a.SenderName,
			Description: a.Description,
		})
	}
	return report, nil
}

// Forecast fetches the 5-day/3-hour forecast for a coordinate. Entries are
// returned in chronological order with wind converted to km/h.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]domain.ForecastEntry, error) {
	if c.apiKey == "" {
		return nil, domain.ErrNoCredential
	}

	params := url.Values{
		"lat":   {fmt.Sprintf("%.6f", lat)},
		"lon":   {fmt.Sprintf("%.6f", lon)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}

	var payload forecastResponse
	if err := c.doRequest(ctx, c.dataURL+"/forecast?"+params.Encode(), "forecast", &payload); err != nil {
		return nil, err
	}

	entries := make([]domain.ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		e := domain.ForecastEntry{
			Time:      time.Unix(item.Dt, 0).UTC(),
			WindSpeed: item.Wind.Speed * 3.6,
			Precip3h:  item.Rain.ThreeHour,
		}
		if len(item.Weather) > 0 {
			e.Description = item.Weather[0].Description
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ForwardGeocode resolves a location name to coordinates. When several
// candidates match, one in the home country wins; otherwise the first is
// taken. A miss is domain.ErrNotFound.
func (c *Client) ForwardGeocode(ctx context.Context, name string) (domain.GeocodingResult, error) {
	if c.apiKey == "" {
		return domain.GeocodingResult{}, domain.ErrNoCredential
	}

	params := url.Values{
		"q":     {name},
		"limit": {"5"},
		"appid": {c.apiKey},
	}

	var places []geoPlace
	if err := c.doRequest(ctx, c.geoURL+"/direct?"+params.Encode(), "forward geocode", &places); err != nil {
		return domain.GeocodingResult{}, err
	}
	if len(places) == 0 {
		return domain.GeocodingResult{}, fmt.Errorf("geocode %q: %w", name, domain.ErrNotFound)
	}

	chosen := places[0]
	for _, p := range places {
		if p.Country == c.homeCountry {
			chosen = p
			break
		}
	}
	return chosen.toResult(), nil
}

// ReverseGeocode resolves a coordinate to the nearest settlement. A miss is
// domain.ErrNotFound.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	if c.apiKey == "" {
		return domain.GeocodingResult{}, domain.ErrNoCredential
	}

	params := url.Values{
		"lat":   {fmt.Sprintf("%.6f", lat)},
		"lon":   {fmt.Sprintf("%.6f", lon)},
		"limit": {"1"},
		"appid": {c.apiKey},
	}

	var places []geoPlace
	if err := c.doRequest(ctx, c.geoURL+"/reverse?"+params.Encode(), "reverse geocode", &places); err != nil {
		return domain.GeocodingResult{}, err
	}
	if len(places) == 0 {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode %.4f,%.4f: %w", lat, lon, domain.ErrNotFound)
	}
	return places[0].toResult(), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, source string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", source, err)
	}
	return nil
}

// OpenWeatherMap API response types.

type weatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneHour   float64 `json:"1h"`
		ThreeHour float64 `json:"3h"`
	} `json:"rain"`
	Alerts []struct {
		Event       string `json:"event"`
		SenderName  string `json:"sender_name"`
		Description string `json:"description"`
	} `json:"alerts"`
}

type forecastResponse struct {
	List []struct {
		Dt      int64 `json:"dt"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

type geoPlace struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func (p geoPlace) toResult() domain.GeocodingResult {
	return domain.GeocodingResult{
		Lat:     p.Lat,
		Lon:     p.Lon,
		Name:    p.Name,
		State:   p.State,
		Country: p.Country,
	}
}
