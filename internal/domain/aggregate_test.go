package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func obs(date, regionCode, city string, tmax, tmin, wind, rain float64) RawObservation {
	return RawObservation{
		Date:       date,
		Country:    regionCode[:2],
		RegionID:   regionCode[3:],
		RegionCode: regionCode,
		City:       city,
		TmaxC:      ptr(tmax),
		TminC:      ptr(tmin),
		WindMaxKmh: ptr(wind),
		RainMm:     ptr(rain),
	}
}

func TestAggregateRegionDays(t *testing.T) {
	t.Run("three cities collapse into one region day", func(t *testing.T) {
		rows := []RawObservation{
			obs("2024-06-01", "FR-11", "Paris", 36.2, 21.0, 42.0, 3.5),
			obs("2024-06-01", "FR-11", "Boulogne-Billancourt", 35.1, 19.4, 55.0, 1.0),
			obs("2024-06-01", "FR-11", "Saint-Denis", 34.8, 20.2, 47.0, 2.5),
		}

		days, err := AggregateRegionDays(rows)
		require.NoError(t, err)
		require.Len(t, days, 1)

		day := days[0]
		assert.Equal(t, "2024-06-01", day.Date)
		assert.Equal(t, "FR", day.Country)
		assert.Equal(t, "FR-11", day.RegionCode)
		assert.Equal(t, "11", day.RegionID)
		assert.Equal(t, 36.2, day.TmaxC, "tmax is the group maximum")
		assert.Equal(t, 19.4, day.TminC, "tmin is the group minimum")
		assert.Equal(t, 55.0, day.WindMaxKmh, "wind is the group maximum")
		assert.Equal(t, 7.0, day.RainMm, "rain is summed across cities")

		assert.Equal(t, 2, day.HeatLevel)
		assert.Equal(t, 0, day.ColdLevel)
		assert.Equal(t, 1, day.WindLevel)
		assert.Equal(t, 0, day.RainLevel)
	})

	t.Run("separate dates and regions stay separate", func(t *testing.T) {
		rows := []RawObservation{
			obs("2024-06-01", "FR-11", "Paris", 25, 15, 20, 0),
			obs("2024-06-02", "FR-11", "Paris", 26, 16, 22, 0),
			obs("2024-06-01", "DE-BY", "München", 24, 12, 18, 5),
		}

		days, err := AggregateRegionDays(rows)
		require.NoError(t, err)
		assert.Len(t, days, 3)
	})

	t.Run("nil metric entries are skipped per metric", func(t *testing.T) {
		withNilWind := obs("2024-06-01", "ES-MD", "Madrid", 33, 18, 0, 1)
		withNilWind.WindMaxKmh = nil
		rows := []RawObservation{
			withNilWind,
			obs("2024-06-01", "ES-MD", "Móstoles", 32, 17, 61, 0.5),
		}

		days, err := AggregateRegionDays(rows)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, 33.0, days[0].TmaxC)
		assert.Equal(t, 61.0, days[0].WindMaxKmh)
	})

	t.Run("non-finite metric entries are skipped per metric", func(t *testing.T) {
		bad := obs("2024-06-01", "ES-MD", "Madrid", 33, 18, 40, 1)
		bad.RainMm = ptr(math.NaN())
		rows := []RawObservation{
			bad,
			obs("2024-06-01", "ES-MD", "Móstoles", 32, 17, 35, 0.5),
		}

		days, err := AggregateRegionDays(rows)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, 0.5, days[0].RainMm)
	})

	t.Run("group missing one metric entirely is dropped", func(t *testing.T) {
		noRain := obs("2024-06-01", "PT-11", "Lisboa", 30, 18, 25, 0)
		noRain.RainMm = nil
		alsoNoRain := obs("2024-06-01", "PT-11", "Sintra", 29, 17, 30, 0)
		alsoNoRain.RainMm = nil
		rows := []RawObservation{
			noRain,
			alsoNoRain,
			obs("2024-06-02", "PT-11", "Lisboa", 31, 19, 28, 2),
		}

		days, err := AggregateRegionDays(rows)
		require.NoError(t, err)
		require.Len(t, days, 1, "the partial-metric group must not be emitted")
		assert.Equal(t, "2024-06-02", days[0].Date)
	})

	t.Run("empty input", func(t *testing.T) {
		days, err := AggregateRegionDays(nil)
		require.NoError(t, err)
		assert.Empty(t, days)
	})
}

// The aggregate of a group is invariant under permutation of its rows.
func TestAggregateRegionDays_Commutative(t *testing.T) {
	rows := []RawObservation{
		obs("2024-06-01", "IT-25", "Milano", 37.5, 22.1, 44, 12),
		obs("2024-06-01", "IT-25", "Brescia", 36.0, 20.8, 51, 8),
		obs("2024-06-01", "IT-25", "Bergamo", 35.2, 19.9, 39, 15),
		obs("2024-06-01", "IT-25", "Monza", 36.8, 21.5, 42, 0),
	}

	reference, err := AggregateRegionDays(rows)
	require.NoError(t, err)
	require.Len(t, reference, 1)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]RawObservation, len(rows))
		copy(shuffled, rows)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		days, err := AggregateRegionDays(shuffled)
		require.NoError(t, err)
		require.Len(t, days, 1)

		got := days[0]
		want := reference[0]
		// Country and region id come from an arbitrary first-seen member;
		// all members share them here, so the whole record must match.
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("aggregate changed under permutation %d (-want +got):\n%s", i, diff)
		}
	}
}
