package weather

import (
	"fmt"
	"sort"
	"time"
)

// Condition represents a normalized high-level weather condition.
// Provider codes that do not map to one of these values become
// ConditionUnknown; parsing never fails on an unrecognized code.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Label returns the human-readable form shown on the panel.
func (c Condition) Label() string {
	switch c {
	case ConditionClear:
		return "Clear"
	case ConditionCloudy:
		return "Cloudy"
	case ConditionRain:
		return "Rain"
	case ConditionSnow:
		return "Snow"
	case ConditionStorm:
		return "Storm"
	case ConditionMist:
		return "Mist"
	default:
		return "Unknown"
	}
}

// Units selects the measurement system applied during normalization.
// The renderer never converts; values in a Snapshot are already in the
// system recorded here.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// TemperatureSuffix returns the degree suffix for this unit system.
func (u Units) TemperatureSuffix() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// WindSuffix returns the wind-speed suffix for this unit system.
func (u Units) WindSuffix() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "km/h"
}

// Location represents the place weather is tracked for. Name is the
// display label; Lat/Lon drive the provider query.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f:%.4f", l.Lat, l.Lon)
}

// CurrentConditions is the observed state at fetch time.
type CurrentConditions struct {
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      float64   `json:"humidityPercent"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirectionDeg"`
	Condition     Condition `json:"condition"`
}

// ForecastDay is one day of the multi-day forecast.
type ForecastDay struct {
	Date         time.Time `json:"date"` // midnight UTC
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Condition    Condition `json:"condition"`
	PrecipChance int       `json:"precipChancePercent"` // 0-100
}

// Snapshot is the normalized, immutable weather view for one location at
// one fetch time. Days is sorted by date ascending with no duplicates.
// Callers must not mutate a Snapshot once it has been returned to them;
// the next successful fetch supersedes it rather than updating it.
type Snapshot struct {
	Location Location          `json:"location"`
	Observed time.Time         `json:"observed"` // always UTC
	Units    Units             `json:"units"`
	Current  CurrentConditions `json:"current"`
	Days     []ForecastDay     `json:"forecast"`
}

// NewSnapshot builds a Snapshot and establishes its invariants: Observed
// in UTC, Days sorted by date ascending with duplicates dropped, and
// precipitation chances clamped to 0-100.
func NewSnapshot(loc Location, observed time.Time, units Units, current CurrentConditions, days []ForecastDay) Snapshot {
	days = sortDays(days)
	for i := range days {
		if days[i].PrecipChance < 0 {
			days[i].PrecipChance = 0
		} else if days[i].PrecipChance > 100 {
			days[i].PrecipChance = 100
		}
	}
	return Snapshot{
		Location: loc,
		Observed: observed.UTC(),
		Units:    units,
		Current:  current,
		Days:     days,
	}
}

// sortDays returns the days ordered chronologically with duplicate dates
// dropped, keeping the first entry seen for each date. The caller's slice
// is left untouched.
func sortDays(days []ForecastDay) []ForecastDay {
	sorted := make([]ForecastDay, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0]
	var prev time.Time
	for i, d := range sorted {
		if i > 0 && d.Date.Equal(prev) {
			continue
		}
		out = append(out, d)
		prev = d.Date
	}
	return out
}
