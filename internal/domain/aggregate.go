package domain

import (
	"fmt"
	"math"
)

// regionDayKey groups raw observations that describe the same region
// on the same calendar day.
type regionDayKey struct {
	date       string
	regionCode string
}

// AggregateRegionDays collapses raw observations into one classified
// RegionDay per (date, region_code) group: max tmax, min tmin, max
// wind, and summed precipitation across the group's cities. Entries
// with a nil or non-finite value are skipped per metric; a group with
// no valid value for any one metric is dropped entirely rather than
// partially aggregated. Aggregation is order-independent.
func AggregateRegionDays(rows []RawObservation) ([]RegionDay, error) {
	groups := make(map[regionDayKey][]RawObservation)
	var order []regionDayKey

	for _, row := range rows {
		key := regionDayKey{date: row.Date, regionCode: row.RegionCode}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	days := make([]RegionDay, 0, len(order))
	for _, key := range order {
		grp := groups[key]

		tmaxVals := validValues(grp, func(r RawObservation) *float64 { return r.TmaxC })
		tminVals := validValues(grp, func(r RawObservation) *float64 { return r.TminC })
		windVals := validValues(grp, func(r RawObservation) *float64 { return r.WindMaxKmh })
		rainVals := validValues(grp, func(r RawObservation) *float64 { return r.RainMm })

		// No usable data for one of the metrics means no RegionDay at all.
		if len(tmaxVals) == 0 || len(tminVals) == 0 || len(windVals) == 0 || len(rainVals) == 0 {
			continue
		}

		day := RegionDay{
			Date:       key.date,
			Country:    grp[0].Country,
			RegionCode: key.regionCode,
			RegionID:   grp[0].RegionID,
			TmaxC:      maxOf(tmaxVals),
			TminC:      minOf(tminVals),
			WindMaxKmh: maxOf(windVals),
			RainMm:     sumOf(rainVals),
		}

		levels, err := ClassifyLevels(day.TmaxC, day.TminC, day.WindMaxKmh, day.RainMm)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s/%s: %w", key.regionCode, key.date, err)
		}
		day.HeatLevel = levels.Heat
		day.ColdLevel = levels.Cold
		day.WindLevel = levels.Wind
		day.RainLevel = levels.Rain

		days = append(days, day)
	}

	return days, nil
}

// validValues extracts the finite values of one metric from a group.
func validValues(grp []RawObservation, metric func(RawObservation) *float64) []float64 {
	values := make([]float64, 0, len(grp))
	for _, row := range grp {
		v := metric(row)
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		values = append(values, *v)
	}
	return values
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func sumOf(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
