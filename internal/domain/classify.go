package domain

import (
	"fmt"
	"math"
)

// SeverityLevels holds the four independent hazard levels for one day.
type SeverityLevels struct {
	Heat int
	Cold int
	Wind int
	Rain int
}

// ClassifyLevels maps a day's four metrics to severity levels, one
// inclusive step-function ladder per hazard. All four metrics must be
// finite numbers; there is no default substitution for bad input.
func ClassifyLevels(tmaxC, tminC, windMaxKmh, rainMm float64) (SeverityLevels, error) {
	for _, m := range []struct {
		name  string
		value float64
	}{
		{"tmax_c", tmaxC},
		{"tmin_c", tminC},
		{"wind_max_kmh", windMaxKmh},
		{"rain_mm", rainMm},
	} {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return SeverityLevels{}, fmt.Errorf("classify levels: %s is not a finite number (%v)", m.name, m.value)
		}
	}

	return SeverityLevels{
		Heat: heatLevel(tmaxC),
		Cold: coldLevel(tminC),
		Wind: windLevel(windMaxKmh),
		Rain: rainLevel(rainMm),
	}, nil
}

func heatLevel(tmaxC float64) int {
	switch {
	case tmaxC >= 40:
		return 3
	case tmaxC >= 35:
		return 2
	case tmaxC >= 30:
		return 1
	default:
		return 0
	}
}

// coldLevel increases as the minimum temperature drops.
func coldLevel(tminC float64) int {
	switch {
	case tminC <= -10:
		return 3
	case tminC <= -5:
		return 2
	case tminC <= 0:
		return 1
	default:
		return 0
	}
}

func windLevel(windMaxKmh float64) int {
	switch {
	case windMaxKmh >= 90:
		return 3
	case windMaxKmh >= 70:
		return 2
	case windMaxKmh >= 50:
		return 1
	default:
		return 0
	}
}

func rainLevel(rainMm float64) int {
	switch {
	case rainMm >= 60:
		return 3
	case rainMm >= 40:
		return 2
	case rainMm >= 20:
		return 1
	default:
		return 0
	}
}
