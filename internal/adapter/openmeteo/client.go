// Package openmeteo fetches daily weather series from the Open-Meteo
// API: the forecast endpoint for recent days (past_days + short
// forecast) and the archive endpoint for backfill further into the
// past.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
)

// dailyVariables are the Open-Meteo daily aggregates the pipeline
// consumes, in the order they are requested.
const dailyVariables = "temperature_2m_max,temperature_2m_min,wind_speed_10m_max,precipitation_sum,snowfall_sum"

// Client talks to the Open-Meteo forecast and archive APIs.
type Client struct {
	httpClient  *http.Client
	forecastURL string
	archiveURL  string
	timezone    string
	logger      *slog.Logger
}

// NewClient creates an Open-Meteo client. The timezone selects the
// calendar-day boundaries the provider aggregates on.
func NewClient(forecastURL, archiveURL, timezone string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		forecastURL: forecastURL,
		archiveURL:  archiveURL,
		timezone:    timezone,
		logger:      logger,
	}
}

// FetchDaily retrieves the last pastDays days plus forecastDays
// short-range forecast days for one point from the forecast endpoint.
func (c *Client) FetchDaily(ctx context.Context, pt domain.RegionPoint, pastDays, forecastDays int) ([]domain.RawObservation, error) {
	params := c.baseParams(pt)
	params.Set("past_days", strconv.Itoa(pastDays))
	params.Set("forecast_days", strconv.Itoa(forecastDays))

	return c.doRequest(ctx, pt, c.forecastURL+"?"+params.Encode())
}

// FetchArchive retrieves the inclusive [startDate, endDate] span for
// one point from the historical archive endpoint. Recent days may come
// back as nulls because the archive lags a few days behind.
func (c *Client) FetchArchive(ctx context.Context, pt domain.RegionPoint, startDate, endDate string) ([]domain.RawObservation, error) {
	params := c.baseParams(pt)
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	return c.doRequest(ctx, pt, c.archiveURL+"?"+params.Encode())
}

func (c *Client) baseParams(pt domain.RegionPoint) url.Values {
	return url.Values{
		"latitude":  {formatCoord(pt.Lat)},
		"longitude": {formatCoord(pt.Lon)},
		"daily":     {dailyVariables},
		"timezone":  {c.timezone},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func (c *Client) doRequest(ctx context.Context, pt domain.RegionPoint, fullURL string) ([]domain.RawObservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request for %s/%s: %w", pt.RegionCode, pt.City, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("open-meteo API error for %s/%s: status %d: %s",
			pt.RegionCode, pt.City, resp.StatusCode, body)
	}

	var payload dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode open-meteo response: %w", err)
	}

	return payload.observations(pt), nil
}

// Open-Meteo response types. The daily block is parallel arrays keyed
// by the time array; individual entries are null when the provider has
// no value for that day.
type dailyResponse struct {
	Daily dailyBlock `json:"daily"`
}

type dailyBlock struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	WindSpeedMax     []*float64 `json:"wind_speed_10m_max"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	SnowfallSum      []*float64 `json:"snowfall_sum"`
}

// observations zips the parallel daily arrays into raw observation
// rows for the given point. Arrays shorter than the time axis yield
// nil metrics rather than a panic.
func (r dailyResponse) observations(pt domain.RegionPoint) []domain.RawObservation {
	rows := make([]domain.RawObservation, 0, len(r.Daily.Time))
	for i, date := range r.Daily.Time {
		rows = append(rows, domain.RawObservation{
			Date:       date,
			Country:    pt.Country,
			RegionID:   pt.RegionID,
			RegionCode: pt.RegionCode,
			City:       pt.City,
			TmaxC:      at(r.Daily.TemperatureMax, i),
			TminC:      at(r.Daily.TemperatureMin, i),
			WindMaxKmh: at(r.Daily.WindSpeedMax, i),
			RainMm:     at(r.Daily.PrecipitationSum, i),
			SnowfallMm: at(r.Daily.SnowfallSum, i),
		})
	}
	return rows
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
