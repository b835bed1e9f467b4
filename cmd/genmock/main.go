// Command genmock generates deterministic mock data fixtures: a small
// region catalog, a raw observation history with injected hazard
// episodes, and the derived daily and alert stores produced by the
// actual domain code. Useful for local development without hitting the
// weather provider, and for refreshing test fixtures.
//
// Usage:
//
//	go run ./cmd/genmock -days 30 -out data/mock
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
	"github.com/couchcryptid/weather-alert-pipeline/internal/store"
)

// Fixed end date so the fixture is reproducible.
var lastDay = time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC)

const randSeed = 20240609

// catalog is a tiny three-region, four-point catalog covering the
// multi-city aggregation case (two cities in FR-11).
var catalog = []domain.RegionPoint{
	{Country: "FR", RegionID: "11", RegionCode: "FR-11", City: "Paris", Lat: 48.8566, Lon: 2.3522, Population: 2138551},
	{Country: "FR", RegionID: "11", RegionCode: "FR-11", City: "Boulogne-Billancourt", Lat: 48.8397, Lon: 2.2399, Population: 120071},
	{Country: "ES", RegionID: "AN", RegionCode: "ES-AN", City: "Sevilla", Lat: 37.3891, Lon: -5.9845, Population: 684234},
	{Country: "DE", RegionID: "BY", RegionCode: "DE-BY", City: "Munich", Lat: 48.1374, Lon: 11.5755, Population: 1260391},
}

// episode overrides the baseline weather for a span of days at one
// region, producing a known hazard event.
type episode struct {
	regionCode string
	offset     int // days before the last day, inclusive start
	length     int
	tmax       float64
	tmin       float64
	wind       float64
	rain       float64
}

var episodes = []episode{
	{regionCode: "ES-AN", offset: 12, length: 3, tmax: 41, tmin: 24, wind: 15, rain: 0},  // level 3 heat wave
	{regionCode: "DE-BY", offset: 20, length: 2, tmax: -2, tmin: -12, wind: 30, rain: 0}, // level 3 cold snap
	{regionCode: "FR-11", offset: 5, length: 1, tmax: 18, tmin: 11, wind: 95, rain: 45},  // wind + rain storm day
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	days := flag.Int("days", 30, "number of history days to generate")
	outDir := flag.String("out", filepath.Join("data", "mock"), "output directory for fixture files")
	flag.Parse()

	if *days <= 0 {
		return fmt.Errorf("-days must be positive, got %d", *days)
	}

	rows := generateRaw(*days)
	log.Printf("generated %d raw observations over %d days", len(rows), *days)

	regionDays, err := domain.AggregateRegionDays(rows)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	alerts, err := domain.DetectAlerts(regionDays)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	outputs := []struct {
		name string
		v    any
	}{
		{"region_points.json", catalog},
		{"daily_region_raw.json", rows},
		{"regions_daily.json", regionDays},
		{"alerts.json", alerts},
	}
	for _, o := range outputs {
		path := filepath.Join(*outDir, o.name)
		if err := store.WriteDocument(path, o.v); err != nil {
			return fmt.Errorf("write %s: %w", o.name, err)
		}
		log.Printf("wrote %s", path)
	}

	printStats(regionDays, alerts)
	return nil
}

// generateRaw produces one row per catalog point per day: calm
// seasonal baseline weather plus the injected episodes.
func generateRaw(days int) []domain.RawObservation {
	rng := rand.New(rand.NewSource(randSeed))

	var rows []domain.RawObservation
	for d := days - 1; d >= 0; d-- {
		day := lastDay.AddDate(0, 0, -d)
		date := domain.FormatDate(day)
		for _, pt := range catalog {
			tmax := 20 + rng.Float64()*6 // 20..26, below every heat threshold
			tmin := 10 + rng.Float64()*4
			wind := 10 + rng.Float64()*20 // below the 50 km/h wind threshold
			rain := rng.Float64() * 5     // below the 20 mm rain threshold

			if ep, ok := episodeFor(pt.RegionCode, d); ok {
				tmax, tmin, wind, rain = ep.tmax, ep.tmin, ep.wind, ep.rain
			}

			rows = append(rows, domain.RawObservation{
				Date:       date,
				Country:    pt.Country,
				RegionID:   pt.RegionID,
				RegionCode: pt.RegionCode,
				City:       pt.City,
				TmaxC:      ptr(round1(tmax)),
				TminC:      ptr(round1(tmin)),
				WindMaxKmh: ptr(round1(wind)),
				RainMm:     ptr(round1(rain)),
			})
		}
	}
	return rows
}

func episodeFor(regionCode string, daysBack int) (episode, bool) {
	for _, ep := range episodes {
		if ep.regionCode == regionCode && daysBack <= ep.offset && daysBack > ep.offset-ep.length {
			return ep, true
		}
	}
	return episode{}, false
}

func ptr(v float64) *float64 { return &v }

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func printStats(days []domain.RegionDay, alerts []domain.AlertEvent) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Region days: %d\n", len(days))

	levelCounts := map[string]int{}
	for i := range days {
		d := &days[i]
		if d.HeatLevel > 0 {
			levelCounts["heat"]++
		}
		if d.ColdLevel > 0 {
			levelCounts["cold"]++
		}
		if d.WindLevel > 0 {
			levelCounts["wind"]++
		}
		if d.RainLevel > 0 {
			levelCounts["rain"]++
		}
	}
	fmt.Printf("Days at level >= 1: heat=%d, cold=%d, wind=%d, rain=%d\n",
		levelCounts["heat"], levelCounts["cold"], levelCounts["wind"], levelCounts["rain"])

	fmt.Printf("Alerts: %d\n", len(alerts))
	for _, a := range alerts {
		fmt.Printf("  %s %s %s..%s n_days=%d max_level=%d\n",
			a.RegionCode, a.Hazard, a.StartDate, a.EndDate, a.NDays, a.MaxLevel)
	}
}
