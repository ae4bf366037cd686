package panel

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

func snapshotWithDays(n int) weather.Snapshot {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	days := make([]weather.ForecastDay, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, weather.ForecastDay{
			Date:         base.AddDate(0, 0, i),
			High:         16 + float64(i),
			Low:          9,
			Condition:    weather.ConditionRain,
			PrecipChance: 80,
		})
	}
	return weather.Snapshot{
		Location: weather.Location{Name: "Sintra", Lat: 38.8029, Lon: -9.3817},
		Observed: base.Add(12 * time.Hour),
		Units:    weather.UnitsMetric,
		Current: weather.CurrentConditions{
			Temperature: 15.5,
			Condition:   weather.ConditionRain,
		},
		Days: days,
	}
}

func TestRenderRespectsGeometryBounds(t *testing.T) {
	geometries := []Geometry{
		{Columns: 3, Rows: 2},
		{Columns: 8, Rows: 3},
		{Columns: 20, Rows: 5},
		{Columns: 40, Rows: 6},
		{Columns: 120, Rows: 40},
	}

	for _, geo := range geometries {
		lines, err := Render(snapshotWithDays(5), geo)
		if err != nil {
			t.Fatalf("%dx%d: unexpected error: %v", geo.Columns, geo.Rows, err)
		}
		if len(lines) > geo.Rows {
			t.Errorf("%dx%d: %d lines exceed row limit", geo.Columns, geo.Rows, len(lines))
		}
		for i, line := range lines {
			if w := runewidth.StringWidth(line); w > geo.Columns {
				t.Errorf("%dx%d: line %d is %d cells wide: %q", geo.Columns, geo.Rows, i, w, line)
			}
		}
	}
}

func TestRenderFiveDaysIntoSixRows(t *testing.T) {
	lines, err := Render(snapshotWithDays(5), Geometry{Columns: 40, Rows: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 6 {
		t.Fatalf("expected header + 5 forecast lines, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Sintra") || !strings.Contains(lines[0], "Rain") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Fri 01") {
		t.Errorf("first forecast line should start with the date, got %q", lines[1])
	}
}

func TestRenderDropsTrailingDaysWhenRowsRunOut(t *testing.T) {
	lines, err := Render(snapshotWithDays(5), Geometry{Columns: 40, Rows: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	// Header plus the first four days; the fifth day is silently dropped.
	if !strings.HasPrefix(lines[4], "Mon 04") {
		t.Errorf("expected last line for Mon 04, got %q", lines[4])
	}
}

func TestRenderDropsLowPriorityFieldsFirst(t *testing.T) {
	snap := snapshotWithDays(1)

	// Wide enough for date and temperatures, not for glyph or precip.
	lines, err := Render(snap, Geometry{Columns: 17, Rows: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(lines[1], "°C") {
		t.Errorf("temperatures outrank later fields, got %q", lines[1])
	}
	if strings.Contains(lines[1], "%") || strings.Contains(lines[1], Glyph(weather.ConditionRain)) {
		t.Errorf("glyph and precip must be dropped at 17 columns, got %q", lines[1])
	}

	// Narrower still: only the date fits.
	lines, err = Render(snap, Geometry{Columns: 10, Rows: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[1] != "Fri 01" {
		t.Errorf("expected bare date at 10 columns, got %q", lines[1])
	}
}

func TestRenderTruncatesHeaderWithEllipsis(t *testing.T) {
	snap := snapshotWithDays(1)
	snap.Location.Name = "Vila Nova de Famalicão e Calendário"

	lines, err := Render(snap, Geometry{Columns: 20, Rows: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w := runewidth.StringWidth(lines[0]); w > 20 {
		t.Errorf("header is %d cells wide: %q", w, lines[0])
	}
	if !strings.HasSuffix(lines[0], "…") {
		t.Errorf("truncated header must end with an ellipsis, got %q", lines[0])
	}
}

func TestRenderRejectsGeometryBelowMinimum(t *testing.T) {
	for _, geo := range []Geometry{
		{Columns: 2, Rows: 10},
		{Columns: 10, Rows: 1},
		{Columns: 0, Rows: 0},
	} {
		if _, err := Render(snapshotWithDays(1), geo); !errors.Is(err, ErrLayout) {
			t.Errorf("%dx%d: expected ErrLayout, got %v", geo.Columns, geo.Rows, err)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	snap := snapshotWithDays(3)
	geo := Geometry{Columns: 32, Rows: 4}

	first, err := Render(snap, geo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := Render(snap, geo)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("render is not deterministic: %q vs %q", first[i], second[i])
		}
	}
}

func TestGlyphForUnknownCondition(t *testing.T) {
	if got := Glyph(weather.Condition("volcanic_ash")); got != "?" {
		t.Errorf("unrecognized condition must use the unknown glyph, got %q", got)
	}
	if got := Glyph(weather.ConditionSnow); got != "☃" {
		t.Errorf("expected snow glyph, got %q", got)
	}
}

func TestWindArrowSectors(t *testing.T) {
	cases := map[float64]string{
		0:     "↑ N",
		45:    "↗ NE",
		90:    "→ E",
		135:   "↘ SE",
		180:   "↓ S",
		225:   "↙ SW",
		270:   "← W",
		315:   "↖ NW",
		359:   "↑ N",
		360.5: "↑ N",
		-90:   "← W",
	}
	for deg, want := range cases {
		if got := WindArrow(deg); got != want {
			t.Errorf("%v°: expected %q, got %q", deg, want, got)
		}
	}
}

func TestStatusLine(t *testing.T) {
	if got := StatusLine("5s", nil); got != "updated 5s ago" {
		t.Errorf("unexpected ok status: %q", got)
	}
	stale := StatusLine("10m", weather.ErrNetwork)
	if !strings.HasPrefix(stale, "STALE (10m old):") {
		t.Errorf("unexpected stale status: %q", stale)
	}
	auth := StatusLine("1m", weather.ErrAuth)
	if !strings.Contains(auth, "UNAVAILABLE") {
		t.Errorf("auth failure should be surfaced prominently, got %q", auth)
	}
}
