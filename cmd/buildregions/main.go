// Command buildregions generates the region point catalog the pipeline
// fetches weather for. It downloads the GeoNames cities15000 dataset,
// groups cities by admin1 region per country, and keeps the top-N
// cities by population in each region.
//
// Usage:
//
//	go run ./cmd/buildregions \
//	  -countries FR,ES,DE,IT,PT \
//	  -top 3 \
//	  -out data/region_points.json
package main

import (
	"archive/zip"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-alert-pipeline/internal/domain"
	"github.com/couchcryptid/weather-alert-pipeline/internal/store"
)

const (
	citiesURL = "https://download.geonames.org/export/dump/cities15000.zip"
	cacheDir  = "data"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	countries := flag.String("countries", "FR,ES,DE,IT,PT", "comma-separated ISO country codes")
	topN := flag.Int("top", 3, "cities kept per region, by population")
	out := flag.String("out", filepath.Join("data", "region_points.json"), "output path for the region catalog")
	flag.Parse()

	if *topN <= 0 {
		return fmt.Errorf("-top must be positive, got %d", *topN)
	}
	wanted := parseCountries(*countries)
	if len(wanted) == 0 {
		return fmt.Errorf("-countries is empty")
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	zipPath := filepath.Join(cacheDir, "cities15000.zip")
	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		log.Printf("downloading %s", citiesURL)
		if err := downloadFile(citiesURL, zipPath); err != nil {
			return fmt.Errorf("download cities dataset: %w", err)
		}
	} else {
		log.Printf("using cached %s", zipPath)
	}

	cities, err := readCities(zipPath, wanted)
	if err != nil {
		return fmt.Errorf("read cities dataset: %w", err)
	}
	log.Printf("parsed %d candidate cities", len(cities))

	points := buildCatalog(cities, wanted, *topN)

	if err := store.WriteDocument(*out, points); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	log.Printf("wrote %d region points to %s", len(points), *out)
	return nil
}

func parseCountries(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func downloadFile(url, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	_, err = io.Copy(out, resp.Body)
	return err
}

// readCities extracts the tab-separated cities table from the zip and
// parses the rows for the wanted countries. Malformed rows are skipped.
func readCities(zipPath string, wanted []string) ([]domain.RegionPoint, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return parseCities(rc, wanted)
		}
	}
	return nil, fmt.Errorf("no txt file found in %s", zipPath)
}

func parseCities(r io.Reader, wanted []string) ([]domain.RegionPoint, error) {
	wantedSet := make(map[string]bool, len(wanted))
	for _, c := range wanted {
		wantedSet[c] = true
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // geonames rows occasionally vary

	// cities15000.txt columns (no header row):
	// geonameid(0) name(1) asciiname(2) alternatenames(3) lat(4) lon(5)
	// featureclass(6) featurecode(7) countrycode(8) cc2(9) admin1(10)
	// admin2(11) admin3(12) admin4(13) population(14) ...
	var cities []domain.RegionPoint
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed lines
		}
		if len(record) < 15 {
			continue
		}

		country := strings.TrimSpace(record[8])
		if !wantedSet[country] {
			continue
		}
		admin1 := strings.TrimSpace(record[10])
		if admin1 == "" {
			continue
		}

		lat, lon, err := parseCoordinates(record[4], record[5])
		if err != nil {
			log.Printf("skipping %s: %v", record[1], err)
			continue
		}

		pop, err := strconv.Atoi(strings.TrimSpace(record[14]))
		if err != nil {
			pop = 0
		}

		cities = append(cities, domain.RegionPoint{
			Country:    country,
			RegionID:   admin1,
			RegionCode: country + "-" + admin1,
			City:       strings.TrimSpace(record[1]),
			Lat:        lat,
			Lon:        lon,
			Population: pop,
		})
	}
	return cities, nil
}

func parseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude out of range: %f", lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude out of range: %f", lon)
	}
	return lat, lon, nil
}

// buildCatalog keeps the topN most populous cities per region and
// orders the result deterministically: country in the order requested,
// then region code, then population descending.
func buildCatalog(cities []domain.RegionPoint, wanted []string, topN int) []domain.RegionPoint {
	byRegion := map[string][]domain.RegionPoint{}
	for _, c := range cities {
		byRegion[c.RegionCode] = append(byRegion[c.RegionCode], c)
	}

	countryRank := make(map[string]int, len(wanted))
	for i, c := range wanted {
		countryRank[c] = i
	}

	points := make([]domain.RegionPoint, 0, len(byRegion)*topN)
	for _, rows := range byRegion {
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Population != rows[j].Population {
				return rows[i].Population > rows[j].Population
			}
			return rows[i].City < rows[j].City
		})
		if len(rows) > topN {
			rows = rows[:topN]
		}
		points = append(points, rows...)
	}

	sort.Slice(points, func(i, j int) bool {
		if countryRank[points[i].Country] != countryRank[points[j].Country] {
			return countryRank[points[i].Country] < countryRank[points[j].Country]
		}
		if points[i].RegionCode != points[j].RegionCode {
			return points[i].RegionCode < points[j].RegionCode
		}
		if points[i].Population != points[j].Population {
			return points[i].Population > points[j].Population
		}
		return points[i].City < points[j].City
	})
	return points
}
