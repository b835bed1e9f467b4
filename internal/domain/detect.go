package domain

import (
	"fmt"
	"sort"
	"time"
)

// datedDay pairs a RegionDay with its parsed date so the scan can
// check calendar contiguity without reparsing.
type datedDay struct {
	day  RegionDay
	date time.Time
}

// DetectAlerts extracts alert events from the full region-day history.
// Detection runs independently per (region_code, hazard): each region's
// days are sorted by date ascending and scanned once per hazard.
// Output order is first-seen region order, then the [Hazards] table
// order, then chronological, so rerunning on identical input yields
// identical output.
func DetectAlerts(days []RegionDay) ([]AlertEvent, error) {
	byRegion := make(map[string][]datedDay)
	var order []string

	for _, day := range days {
		date, err := ParseDate(day.Date)
		if err != nil {
			return nil, fmt.Errorf("detect alerts: %w", err)
		}
		if _, seen := byRegion[day.RegionCode]; !seen {
			order = append(order, day.RegionCode)
		}
		byRegion[day.RegionCode] = append(byRegion[day.RegionCode], datedDay{day: day, date: date})
	}

	var alerts []AlertEvent
	for _, regionCode := range order {
		regionDays := byRegion[regionCode]
		sort.Slice(regionDays, func(i, j int) bool {
			return regionDays[i].date.Before(regionDays[j].date)
		})
		for _, cfg := range Hazards {
			alerts = append(alerts, detectRegionHazard(regionDays, cfg)...)
		}
	}
	return alerts, nil
}

// detectRegionHazard performs one linear run-length scan over a single
// region's chronologically sorted days. At most one run is open at a
// time. A qualifying day extends the open run only when it falls
// exactly one calendar day after the previously visited record; any
// gap in the date series breaks the run, because missing days cannot
// be assumed non-hazardous. The previous-date cursor advances on every
// record, so a gap following a non-qualifying day still breaks
// adjacency for the next qualifying one.
func detectRegionHazard(days []datedDay, cfg HazardConfig) []AlertEvent {
	var events []AlertEvent
	var run []datedDay
	var prevDate time.Time

	flush := func() {
		if len(run) >= cfg.MinDuration {
			events = append(events, summarizeRun(run, cfg.Kind))
		}
	}

	for _, d := range days {
		if cfg.Level(d.day) >= cfg.MinLevel {
			if len(run) > 0 && d.date.Equal(prevDate.AddDate(0, 0, 1)) {
				run = append(run, d)
			} else {
				flush()
				run = []datedDay{d}
			}
		} else {
			flush()
			run = nil
		}
		prevDate = d.date
	}
	flush()

	return events
}

// summarizeRun folds a closed run into a single event. The run is
// non-empty and chronologically ordered. The peak field depends on the
// hazard: cold events peak at their lowest tmin, the others at their
// highest value; rain peaks at the wettest single day, not the run total.
func summarizeRun(run []datedDay, kind HazardKind) AlertEvent {
	first := run[0].day
	last := run[len(run)-1].day

	event := AlertEvent{
		Country:    first.Country,
		RegionCode: first.RegionCode,
		Hazard:     string(kind),
		StartDate:  first.Date,
		EndDate:    last.Date,
		NDays:      len(run),
	}

	switch kind {
	case HazardHeat:
		peak := first.TmaxC
		for _, d := range run {
			event.MaxLevel = max(event.MaxLevel, d.day.HeatLevel)
			peak = max(peak, d.day.TmaxC)
		}
		event.MaxTmaxC = &peak
	case HazardCold:
		peak := first.TminC
		for _, d := range run {
			event.MaxLevel = max(event.MaxLevel, d.day.ColdLevel)
			peak = min(peak, d.day.TminC)
		}
		event.MinTminC = &peak
	case HazardWind:
		peak := first.WindMaxKmh
		for _, d := range run {
			event.MaxLevel = max(event.MaxLevel, d.day.WindLevel)
			peak = max(peak, d.day.WindMaxKmh)
		}
		event.MaxWindMaxKmh = &peak
	case HazardRain:
		peak := first.RainMm
		for _, d := range run {
			event.MaxLevel = max(event.MaxLevel, d.day.RainLevel)
			peak = max(peak, d.day.RainMm)
		}
		event.MaxRainMm = &peak
	}

	return event
}
