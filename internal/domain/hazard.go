package domain

// HazardKind identifies one of the four monitored hazards.
type HazardKind string

const (
	HazardHeat HazardKind = "heat"
	HazardCold HazardKind = "cold"
	HazardWind HazardKind = "wind"
	HazardRain HazardKind = "rain"
)

// HazardConfig describes how one hazard is detected: which severity
// level a RegionDay carries for it, the minimum level that makes a day
// part of a run, and the minimum run length that yields an alert.
type HazardConfig struct {
	Kind        HazardKind
	MinLevel    int
	MinDuration int

	// Level reads this hazard's severity level from a classified day.
	Level func(RegionDay) int
}

// Hazards is the fixed detection table, in the order events are
// reported. Heat and cold require two consecutive qualifying days; a
// single gusty or rainy day is already worth an alert.
var Hazards = []HazardConfig{
	{Kind: HazardHeat, MinLevel: 1, MinDuration: 2, Level: func(d RegionDay) int { return d.HeatLevel }},
	{Kind: HazardCold, MinLevel: 1, MinDuration: 2, Level: func(d RegionDay) int { return d.ColdLevel }},
	{Kind: HazardWind, MinLevel: 1, MinDuration: 1, Level: func(d RegionDay) int { return d.WindLevel }},
	{Kind: HazardRain, MinLevel: 1, MinDuration: 1, Level: func(d RegionDay) int { return d.RainLevel }},
}
