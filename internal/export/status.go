package export

import (
	"time"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
)

// BuildStatus summarizes one run over its final region-day and alert
// collections. Timestamps are RFC3339 UTC; first/last date reflect the
// calendar span present in the region-day store and stay empty when
// the store is empty.
func BuildStatus(days []domain.RegionDay, alerts []domain.AlertEvent,
	windowDays int, startedAt, finishedAt time.Time) domain.Status {
	countries := make(map[string]struct{})
	regions := make(map[string]struct{})

	var firstDate, lastDate string
	for _, day := range days {
		countries[day.Country] = struct{}{}
		regions[day.RegionCode] = struct{}{}
		if firstDate == "" || day.Date < firstDate {
			firstDate = day.Date
		}
		if day.Date > lastDate {
			lastDate = day.Date
		}
	}

	return domain.Status{
		StartedAt:  startedAt.UTC().Format(time.RFC3339),
		FinishedAt: finishedAt.UTC().Format(time.RFC3339),
		WindowDays: windowDays,
		NCountries: len(countries),
		NRegions:   len(regions),
		NRows:      len(days),
		NAlerts:    len(alerts),
		FirstDate:  firstDate,
		LastDate:   lastDate,
	}
}
