package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// heatDay builds a classified region day whose heat level matches the
// given tmax; the other metrics stay benign.
func heatDay(regionCode, date string, tmax float64) RegionDay {
	return classifiedDay(regionCode, date, tmax, 10, 10, 0)
}

func classifiedDay(regionCode, date string, tmax, tmin, wind, rain float64) RegionDay {
	levels, err := ClassifyLevels(tmax, tmin, wind, rain)
	if err != nil {
		panic(err)
	}
	return RegionDay{
		Date:       date,
		Country:    regionCode[:2],
		RegionCode: regionCode,
		RegionID:   regionCode[3:],
		TmaxC:      tmax,
		TminC:      tmin,
		WindMaxKmh: wind,
		RainMm:     rain,
		HeatLevel:  levels.Heat,
		ColdLevel:  levels.Cold,
		WindLevel:  levels.Wind,
		RainLevel:  levels.Rain,
	}
}

// Daily heat levels 1,2,0,1,1,1 must yield exactly two events: the
// two-day run ending at the level-0 day and the three-day run after it.
func TestDetectAlerts_HeatRunExtraction(t *testing.T) {
	days := []RegionDay{
		heatDay("FR-11", "2024-06-01", 31), // level 1
		heatDay("FR-11", "2024-06-02", 36), // level 2
		heatDay("FR-11", "2024-06-03", 24), // level 0
		heatDay("FR-11", "2024-06-04", 32), // level 1
		heatDay("FR-11", "2024-06-05", 33), // level 1
		heatDay("FR-11", "2024-06-06", 30), // level 1
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)

	var heat []AlertEvent
	for _, a := range alerts {
		if a.Hazard == "heat" {
			heat = append(heat, a)
		}
	}
	require.Len(t, heat, 2)

	want := []AlertEvent{
		{
			Country: "FR", RegionCode: "FR-11", Hazard: "heat",
			StartDate: "2024-06-01", EndDate: "2024-06-02",
			NDays: 2, MaxLevel: 2, MaxTmaxC: ptr(36),
		},
		{
			Country: "FR", RegionCode: "FR-11", Hazard: "heat",
			StartDate: "2024-06-04", EndDate: "2024-06-06",
			NDays: 3, MaxLevel: 1, MaxTmaxC: ptr(33),
		},
	}
	if diff := cmp.Diff(want, heat); diff != "" {
		t.Fatalf("heat events mismatch (-want +got):\n%s", diff)
	}
}

// Removing the level-0 day entirely (a gap, not a calm day) must still
// split the run: non-contiguous dates never merge.
func TestDetectAlerts_GapBreaksContiguity(t *testing.T) {
	days := []RegionDay{
		heatDay("FR-11", "2024-06-01", 31),
		heatDay("FR-11", "2024-06-02", 36),
		// 2024-06-03 absent from the series
		heatDay("FR-11", "2024-06-04", 32),
		heatDay("FR-11", "2024-06-05", 33),
		heatDay("FR-11", "2024-06-06", 30),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "2024-06-01", alerts[0].StartDate)
	assert.Equal(t, "2024-06-02", alerts[0].EndDate)
	assert.Equal(t, 2, alerts[0].NDays)
	assert.Equal(t, "2024-06-04", alerts[1].StartDate)
	assert.Equal(t, "2024-06-06", alerts[1].EndDate)
	assert.Equal(t, 3, alerts[1].NDays)
}

// A gap right after a disqualifying day must also break adjacency: the
// previous-date cursor advances on every record, qualifying or not.
func TestDetectAlerts_GapAfterCalmDay(t *testing.T) {
	days := []RegionDay{
		heatDay("ES-MD", "2024-07-01", 32),
		heatDay("ES-MD", "2024-07-02", 20), // calm
		// 2024-07-03 absent
		heatDay("ES-MD", "2024-07-04", 33),
		heatDay("ES-MD", "2024-07-05", 34),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "2024-07-04", alerts[0].StartDate)
	assert.Equal(t, 2, alerts[0].NDays)
}

// An isolated hot day never becomes an event: heat needs two
// consecutive qualifying days.
func TestDetectAlerts_SingleHotDayInvisible(t *testing.T) {
	days := []RegionDay{
		heatDay("DE-BY", "2024-08-01", 25),
		heatDay("DE-BY", "2024-08-02", 41), // level 3, but alone
		heatDay("DE-BY", "2024-08-03", 24),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

// Wind and rain have a one-day minimum duration, so a lone qualifying
// day yields its own event.
func TestDetectAlerts_SingleDayWindAndRain(t *testing.T) {
	days := []RegionDay{
		classifiedDay("PT-11", "2024-02-10", 14, 8, 95, 62),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	wind := alerts[0]
	assert.Equal(t, "wind", wind.Hazard)
	assert.Equal(t, 1, wind.NDays)
	assert.Equal(t, 3, wind.MaxLevel)
	require.NotNil(t, wind.MaxWindMaxKmh)
	assert.Equal(t, 95.0, *wind.MaxWindMaxKmh)

	rain := alerts[1]
	assert.Equal(t, "rain", rain.Hazard)
	assert.Equal(t, 1, rain.NDays)
	assert.Equal(t, "2024-02-10", rain.StartDate)
	assert.Equal(t, "2024-02-10", rain.EndDate)
	require.NotNil(t, rain.MaxRainMm)
	assert.Equal(t, 62.0, *rain.MaxRainMm)
}

// A run of exactly the minimum duration qualifies.
func TestDetectAlerts_RunOfExactMinimumDuration(t *testing.T) {
	days := []RegionDay{
		heatDay("IT-25", "2024-06-10", 30),
		heatDay("IT-25", "2024-06-11", 30),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].NDays)
	assert.Equal(t, 1, alerts[0].MaxLevel)
}

// The peak of a cold event is its lowest temperature.
func TestDetectAlerts_ColdPeakIsMinimum(t *testing.T) {
	days := []RegionDay{
		classifiedDay("DE-BY", "2024-01-05", 2, -6, 10, 0),
		classifiedDay("DE-BY", "2024-01-06", 0, -12, 10, 0),
		classifiedDay("DE-BY", "2024-01-07", 1, -8, 10, 0),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	cold := alerts[0]
	assert.Equal(t, "cold", cold.Hazard)
	assert.Equal(t, 3, cold.NDays)
	assert.Equal(t, 3, cold.MaxLevel)
	require.NotNil(t, cold.MinTminC)
	assert.Equal(t, -12.0, *cold.MinTminC)
	assert.Nil(t, cold.MaxTmaxC)
}

// Input order must not matter: the detector sorts each region by date.
func TestDetectAlerts_UnsortedInput(t *testing.T) {
	days := []RegionDay{
		heatDay("FR-11", "2024-06-02", 36),
		heatDay("FR-11", "2024-06-01", 31),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "2024-06-01", alerts[0].StartDate)
	assert.Equal(t, "2024-06-02", alerts[0].EndDate)
}

// Regions never mix: identical dates in different regions stay separate.
func TestDetectAlerts_RegionsIndependent(t *testing.T) {
	days := []RegionDay{
		heatDay("FR-11", "2024-06-01", 31),
		heatDay("ES-MD", "2024-06-02", 31),
		heatDay("FR-11", "2024-06-02", 31),
		heatDay("ES-MD", "2024-06-01", 31),
	}

	alerts, err := DetectAlerts(days)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "FR-11", alerts[0].RegionCode)
	assert.Equal(t, "ES-MD", alerts[1].RegionCode)
}

// Running detection twice on identical input must serialize to
// byte-identical JSON.
func TestDetectAlerts_Idempotent(t *testing.T) {
	days := []RegionDay{
		classifiedDay("FR-11", "2024-06-01", 36, 12, 55, 25),
		classifiedDay("FR-11", "2024-06-02", 38, 14, 72, 0),
		classifiedDay("ES-MD", "2024-06-01", 41, 20, 30, 0),
		classifiedDay("ES-MD", "2024-06-02", 42, 21, 30, 0),
		classifiedDay("DE-BY", "2024-01-15", 1, -11, 95, 70),
	}

	first, err := DetectAlerts(days)
	require.NoError(t, err)
	second, err := DetectAlerts(days)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestDetectAlerts_BadDate(t *testing.T) {
	days := []RegionDay{heatDay("FR-11", "2024-06-01", 31)}
	days[0].Date = "June 1st"

	_, err := DetectAlerts(days)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse date")
}
