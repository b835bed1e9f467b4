// Package domain models daily regional weather hazards.
//
// # Data flow
//
// Raw observations arrive as one row per (date, region, city): several
// cities can represent the same administrative region, so the aggregator
// first collapses each (date, region_code) group into a single RegionDay
// (max tmax, min tmin, max wind, summed precipitation). The classifier
// then assigns each RegionDay four independent severity levels, and the
// detector run-length encodes each region's level series into multi-day
// AlertEvents.
//
// # Severity levels
//
// Levels are ordinal integers 0 (none) through 3 (most severe), one per
// hazard kind. Each ladder is evaluated from its most severe threshold
// down, boundary values belonging to the higher tier:
//
//	heat: tmax ≥ 40 → 3 | ≥ 35 → 2 | ≥ 30 → 1
//	cold: tmin ≤ -10 → 3 | ≤ -5 → 2 | ≤ 0 → 1
//	wind: gust ≥ 90 → 3 | ≥ 70 → 2 | ≥ 50 → 1
//	rain: sum  ≥ 60 → 3 | ≥ 40 → 2 | ≥ 20 → 1
//
// The ladders are independent: a single day can register both a heat and
// a wind level.
//
// # Alert detection
//
// An alert event is a maximal run of consecutive calendar days where a
// hazard's level stays at or above its minimum, lasting at least the
// hazard's minimum duration (2 days for heat/cold, 1 for wind/rain).
// The daily series is sparse: a missing date always breaks a run, even
// when the days on both sides qualify, because an absent day cannot be
// assumed non-hazardous.
//
// # Dates
//
// All dates are calendar-day strings in YYYY-MM-DD form with no
// time-of-day component. See [ParseDate] and [FormatDate].
package domain
