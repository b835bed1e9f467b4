// Command validate performs end-to-end data integrity checks across
// the pipeline's stores: the region catalog, the raw observation
// history, the derived daily and alert stores, and the status summary.
// It verifies field validity, internal consistency, and that the
// derived stores match a fresh re-derivation from the raw history.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing the pipeline stores")
	flag.Parse()

	if code := run(*dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string) int {
	fmt.Println("=== Weather Alert Store Validation ===")
	fmt.Println()

	points, err := loadJSON[domain.RegionPoint](filepath.Join(dataDir, "region_points.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load region catalog: %v\n", err)
		return 1
	}
	raws, err := loadJSON[domain.RawObservation](filepath.Join(dataDir, "daily_region_raw.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw store: %v\n", err)
		return 1
	}
	days, err := loadJSON[domain.RegionDay](filepath.Join(dataDir, "regions_daily.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load daily store: %v\n", err)
		return 1
	}
	alerts, err := loadJSON[domain.AlertEvent](filepath.Join(dataDir, "alerts.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load alerts store: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCatalog(points),
		validateRawStore(raws, points),
		validateDailyStore(days, raws),
		validateAlerts(alerts, days),
		validateStatus(filepath.Join(dataDir, "pipeline_status.json"), days, alerts),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d points, %d raw, %d daily, %d alerts\n",
		len(points), len(raws), len(days), len(alerts))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func validateCatalog(points []domain.RegionPoint) *phase {
	p := &phase{name: "Region catalog integrity"}
	if len(points) == 0 {
		p.errorf("catalog is empty")
		return p
	}
	seen := map[string]bool{}
	for i, pt := range points {
		if pt.Country == "" || pt.RegionID == "" || pt.City == "" {
			p.errorf("point %d: missing identity fields: %+v", i, pt)
		}
		if want := pt.Country + "-" + pt.RegionID; pt.RegionCode != want {
			p.errorf("point %d: region_code %q, want %q", i, pt.RegionCode, want)
		}
		if pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
			p.errorf("point %d (%s): coordinates out of range: %g, %g", i, pt.City, pt.Lat, pt.Lon)
		}
		key := pt.RegionCode + "|" + pt.City
		if seen[key] {
			p.errorf("duplicate catalog entry: %s", key)
		}
		seen[key] = true
	}
	return p
}

func validateRawStore(raws []domain.RawObservation, points []domain.RegionPoint) *phase {
	p := &phase{name: "Raw store integrity"}
	known := map[string]bool{}
	for _, pt := range points {
		known[pt.RegionCode] = true
	}
	seen := map[string]bool{}
	for i, r := range raws {
		if _, err := domain.ParseDate(r.Date); err != nil {
			p.errorf("row %d: bad date %q", i, r.Date)
		}
		if !known[r.RegionCode] {
			p.errorf("row %d: region %q not in catalog", i, r.RegionCode)
		}
		key := r.Date + "|" + r.RegionCode + "|" + r.City
		if seen[key] {
			p.errorf("duplicate raw row: %s", key)
		}
		seen[key] = true
	}
	return p
}

func validateDailyStore(days []domain.RegionDay, raws []domain.RawObservation) *phase {
	p := &phase{name: "Daily store derivation"}
	for i, d := range days {
		if _, err := domain.ParseDate(d.Date); err != nil {
			p.errorf("day %d: bad date %q", i, d.Date)
		}
		for _, lv := range []struct {
			name  string
			level int
		}{
			{"heat", d.HeatLevel}, {"cold", d.ColdLevel},
			{"wind", d.WindLevel}, {"rain", d.RainLevel},
		} {
			if lv.level < 0 || lv.level > 3 {
				p.errorf("day %d (%s %s): %s_level %d out of range", i, d.Date, d.RegionCode, lv.name, lv.level)
			}
		}
	}

	derived, err := domain.AggregateRegionDays(raws)
	if err != nil {
		p.errorf("re-derive daily store: %v", err)
		return p
	}
	if diff := cmp.Diff(derived, days, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("daily store does not match re-derivation from raw (-want +got):\n%s", diff)
	}
	return p
}

func validateAlerts(alerts []domain.AlertEvent, days []domain.RegionDay) *phase {
	p := &phase{name: "Alert store derivation"}
	for i, a := range alerts {
		start, err := domain.ParseDate(a.StartDate)
		if err != nil {
			p.errorf("alert %d: bad start_date %q", i, a.StartDate)
			continue
		}
		end, err := domain.ParseDate(a.EndDate)
		if err != nil {
			p.errorf("alert %d: bad end_date %q", i, a.EndDate)
			continue
		}
		if span := int(end.Sub(start).Hours()/24) + 1; span != a.NDays {
			p.errorf("alert %d (%s %s): n_days %d, date span %d", i, a.RegionCode, a.Hazard, a.NDays, span)
		}
		if a.MaxLevel < 1 || a.MaxLevel > 3 {
			p.errorf("alert %d (%s %s): max_level %d out of range", i, a.RegionCode, a.Hazard, a.MaxLevel)
		}
		if n := countPeaks(a); n != 1 {
			p.errorf("alert %d (%s %s): %d peak fields set, want exactly 1", i, a.RegionCode, a.Hazard, n)
		}
	}

	derived, err := domain.DetectAlerts(days)
	if err != nil {
		p.errorf("re-derive alerts: %v", err)
		return p
	}
	if diff := cmp.Diff(derived, alerts, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("alert store does not match re-derivation from daily (-want +got):\n%s", diff)
	}
	return p
}

func countPeaks(a domain.AlertEvent) int {
	n := 0
	for _, f := range []*float64{a.MaxTmaxC, a.MinTminC, a.MaxWindMaxKmh, a.MaxRainMm} {
		if f != nil {
			n++
		}
	}
	return n
}

func validateStatus(path string, days []domain.RegionDay, alerts []domain.AlertEvent) *phase {
	p := &phase{name: "Status summary consistency"}
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("load status: %v", err)
		return p
	}
	var st domain.Status
	if err := json.Unmarshal(data, &st); err != nil {
		p.errorf("parse status: %v", err)
		return p
	}

	for _, ts := range []struct{ name, v string }{
		{"started_at", st.StartedAt}, {"finished_at", st.FinishedAt},
	} {
		if _, err := time.Parse(time.RFC3339, ts.v); err != nil {
			p.errorf("%s %q is not RFC3339", ts.name, ts.v)
		}
	}

	if st.NRows != len(days) {
		p.errorf("n_rows %d, daily store has %d", st.NRows, len(days))
	}
	if st.NAlerts != len(alerts) {
		p.errorf("n_alerts %d, alert store has %d", st.NAlerts, len(alerts))
	}

	regions := map[string]bool{}
	countries := map[string]bool{}
	for _, d := range days {
		regions[d.RegionCode] = true
		countries[d.Country] = true
	}
	if st.NRegions != len(regions) {
		p.errorf("n_regions %d, daily store has %d distinct", st.NRegions, len(regions))
	}
	if st.NCountries != len(countries) {
		p.errorf("n_countries %d, daily store has %d distinct", st.NCountries, len(countries))
	}
	return p
}
