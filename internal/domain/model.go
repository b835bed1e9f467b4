package domain

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-day layout used in every persisted file.
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// RegionPoint is a monitored coordinate representing an administrative
// region. A region is usually covered by its top few cities by
// population, so several points may share a region code.
type RegionPoint struct {
	Country    string  `json:"country"`
	RegionID   string  `json:"region_id"`
	RegionCode string  `json:"region_code"` // country + region id, e.g. "FR-11"
	City       string  `json:"city"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Population int     `json:"population"`
}

// RawObservation is one fetched day for one point. Metric fields are
// pointers because the provider returns null for days it has no data
// for; such entries are skipped during aggregation.
type RawObservation struct {
	Date       string   `json:"date"`
	Country    string   `json:"country"`
	RegionID   string   `json:"region_id"`
	RegionCode string   `json:"region_code"`
	City       string   `json:"city"`
	TmaxC      *float64 `json:"tmax_c"`
	TminC      *float64 `json:"tmin_c"`
	WindMaxKmh *float64 `json:"wind_max_kmh"`
	RainMm     *float64 `json:"rain_mm"`
	SnowfallMm *float64 `json:"snowfall_mm,omitempty"`
}

// RegionDay is the aggregate of all raw observations sharing a
// (date, region_code) key, classified into per-hazard severity levels.
type RegionDay struct {
	Date       string  `json:"date"`
	Country    string  `json:"country"`
	RegionCode string  `json:"region_code"`
	RegionID   string  `json:"region_id"`
	TmaxC      float64 `json:"tmax_c"`
	TminC      float64 `json:"tmin_c"`
	WindMaxKmh float64 `json:"wind_max_kmh"`
	RainMm     float64 `json:"rain_mm"`
	HeatLevel  int     `json:"heat_level"`
	ColdLevel  int     `json:"cold_level"`
	WindLevel  int     `json:"wind_level"`
	RainLevel  int     `json:"rain_level"`
}

// AlertEvent is one maximal run of consecutive hazardous days for one
// (region, hazard) pair. Exactly one of the peak fields is set,
// matching the hazard: the peak of a cold event is its lowest
// temperature, every other hazard peaks at its maximum.
type AlertEvent struct {
	Country    string `json:"country"`
	RegionCode string `json:"region_code"`
	Hazard     string `json:"hazard"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	NDays      int    `json:"n_days"`
	MaxLevel   int    `json:"max_level"`

	MaxTmaxC      *float64 `json:"max_tmax_c,omitempty"`
	MinTminC      *float64 `json:"min_tmin_c,omitempty"`
	MaxWindMaxKmh *float64 `json:"max_wind_max_kmh,omitempty"`
	MaxRainMm     *float64 `json:"max_rain_mm,omitempty"`
}

// Status summarizes one pipeline run for downstream consumers.
type Status struct {
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	WindowDays int    `json:"window_days"`
	NCountries int    `json:"n_countries"`
	NRegions   int    `json:"n_regions"`
	NRows      int    `json:"n_rows"`
	NAlerts    int    `json:"n_alerts"`
	FirstDate  string `json:"first_date,omitempty"`
	LastDate   string `json:"last_date,omitempty"`
}
