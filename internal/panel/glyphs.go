package panel

import "github.com/nasharino/weather-forecast-panel/internal/weather"

// conditionGlyphs maps each condition onto a single-cell panel glyph.
var conditionGlyphs = map[weather.Condition]string{
	weather.ConditionClear:  "☀",
	weather.ConditionCloudy: "☁",
	weather.ConditionRain:   "☂",
	weather.ConditionSnow:   "☃",
	weather.ConditionStorm:  "⚡",
	weather.ConditionMist:   "≈",
}

// Glyph returns the panel glyph for a condition. Conditions outside the
// table render the unknown marker.
func Glyph(c weather.Condition) string {
	if g, ok := conditionGlyphs[c]; ok {
		return g
	}
	return "?"
}

// WindArrow converts a wind direction in degrees to a compass arrow and
// label. 0°/360° is north, 90° east, 180° south, 270° west.
func WindArrow(degrees float64) string {
	deg := degrees - 360*float64(int(degrees/360))
	if deg < 0 {
		deg += 360
	}

	switch {
	case deg >= 337.5 || deg < 22.5:
		return "↑ N"
	case deg < 67.5:
		return "↗ NE"
	case deg < 112.5:
		return "→ E"
	case deg < 157.5:
		return "↘ SE"
	case deg < 202.5:
		return "↓ S"
	case deg < 247.5:
		return "↙ SW"
	case deg < 292.5:
		return "← W"
	default:
		return "↖ NW"
	}
}
