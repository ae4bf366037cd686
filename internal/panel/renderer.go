// Package panel lays a weather snapshot out into a fixed character grid.
// Rendering is pure: no I/O, no hidden state, and the same snapshot and
// geometry always produce the same lines.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

// Geometry is the terminal area available for the panel.
type Geometry struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// Absolute floor below which no layout is possible. Configuration enforces
// a practical minimum well above this; the renderer only rejects geometry
// it cannot physically fill.
const (
	MinColumns = 3
	MinRows    = 2
)

// ErrLayout means the geometry is below the minimum supported size.
// Rendering never fails on data content, only on geometry.
var ErrLayout = errors.New("panel: geometry below minimum size")

const ellipsis = "…"

// Render lays snap out into at most geo.Rows lines of at most geo.Columns
// cells each: a header line, then one line per forecast day while rows
// remain. Trailing days that do not fit are silently omitted.
func Render(snap weather.Snapshot, geo Geometry) ([]string, error) {
	if geo.Columns < MinColumns || geo.Rows < MinRows {
		return nil, fmt.Errorf("%w: %dx%d", ErrLayout, geo.Columns, geo.Rows)
	}

	lines := make([]string, 0, geo.Rows)
	lines = append(lines, headerLine(snap, geo.Columns))

	for _, day := range snap.Days {
		if len(lines) >= geo.Rows {
			break
		}
		lines = append(lines, forecastLine(day, snap.Units, geo.Columns))
	}

	return lines, nil
}

// headerLine formats "<location> <temperature> <condition>", truncated
// with an ellipsis when it exceeds the available columns.
func headerLine(snap weather.Snapshot, columns int) string {
	name := snap.Location.Name
	if name == "" {
		name = snap.Location.Key()
	}
	s := fmt.Sprintf("%s %.1f%s %s",
		name,
		snap.Current.Temperature,
		snap.Units.TemperatureSuffix(),
		snap.Current.Condition.Label(),
	)
	return truncate(s, columns)
}

// forecastLine builds one day's line field by field in priority order:
// date, high/low, condition glyph, precipitation chance. A field that
// would push past the column limit is dropped along with every field
// after it, so lower-priority fields never displace higher-priority ones.
func forecastLine(day weather.ForecastDay, units weather.Units, columns int) string {
	fields := []string{
		day.Date.Format("Mon 02"),
		fmt.Sprintf("%3.0f%s/%.0f%s", day.High, units.TemperatureSuffix(), day.Low, units.TemperatureSuffix()),
		Glyph(day.Condition),
		fmt.Sprintf("%d%%", day.PrecipChance),
	}

	line := truncate(fields[0], columns)
	for _, f := range fields[1:] {
		candidate := line + " " + f
		if runewidth.StringWidth(candidate) > columns {
			break
		}
		line = candidate
	}
	return line
}

// truncate cuts s to at most columns cells, marking the cut with an
// ellipsis. Widths are measured in terminal cells, not runes.
func truncate(s string, columns int) string {
	if runewidth.StringWidth(s) <= columns {
		return s
	}
	return runewidth.Truncate(s, columns, ellipsis)
}

// StatusLine formats the annotation shown under the panel: the snapshot's
// age on success, the failure class when the last refresh failed while an
// older panel is still displayed. The writer prints it on its own reserved
// row, outside the panel grid.
func StatusLine(age string, fetchErr error) string {
	switch {
	case fetchErr == nil:
		return fmt.Sprintf("updated %s ago", age)
	case errors.Is(fetchErr, weather.ErrAuth):
		return "UNAVAILABLE: authentication rejected; check the API key"
	default:
		return fmt.Sprintf("STALE (%s old): %s", age, strings.TrimPrefix(fetchErr.Error(), "weather: "))
	}
}
