package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// currentFields and dailyFields are the Open-Meteo variable lists this
// provider consumes. Anything else in the payload is ignored.
const (
	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m,weather_code,wind_speed_10m,wind_direction_10m"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max"
)

// OpenMeteoProvider implements weather.Provider against the Open-Meteo
// forecast API. The free tier needs no API key; the commercial tier
// authenticates with an apikey query parameter.
type OpenMeteoProvider struct {
	name         string
	apiKey       string
	baseURL      string
	client       *http.Client
	units        weather.Units
	forecastDays int
}

// Option configures an OpenMeteoProvider.
type Option func(*OpenMeteoProvider)

// WithBaseURL overrides the API endpoint. Tests point this at an httptest
// server.
func WithBaseURL(u string) Option {
	return func(p *OpenMeteoProvider) { p.baseURL = u }
}

// WithAPIKey sets the commercial-tier API key.
func WithAPIKey(key string) Option {
	return func(p *OpenMeteoProvider) { p.apiKey = key }
}

// NewOpenMeteoProvider creates a provider that normalizes into the given
// unit system and requests forecastDays days of daily data.
func NewOpenMeteoProvider(client *http.Client, units weather.Units, forecastDays int, opts ...Option) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:         "openmeteo",
		baseURL:      defaultBaseURL,
		client:       client,
		units:        units,
		forecastDays: forecastDays,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// openMeteoPayload mirrors the subset of the response we consume. Pointer
// fields distinguish "absent" from zero values so structurally required
// blocks can be detected.
type openMeteoPayload struct {
	Current *struct {
		Time          string   `json:"time"`
		Temperature   *float64 `json:"temperature_2m"`
		FeelsLike     float64  `json:"apparent_temperature"`
		Humidity      float64  `json:"relative_humidity_2m"`
		WeatherCode   int      `json:"weather_code"`
		WindSpeed     float64  `json:"wind_speed_10m"`
		WindDirection float64  `json:"wind_direction_10m"`
	} `json:"current"`
	Daily *struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		PrecipProb  []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Fetch performs one GET against the forecast endpoint and normalizes the
// response. Retry policy belongs to the calling client, not here.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
	values.Set("current", currentFields)
	values.Set("daily", dailyFields)
	values.Set("timezone", "UTC")
	values.Set("forecast_days", strconv.Itoa(p.forecastDays))
	if p.apiKey != "" {
		values.Set("apikey", p.apiKey)
	}

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("%w: build request: %v", weather.ErrNetwork, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return weather.Snapshot{}, fmt.Errorf("%w: status %d", weather.ErrAuth, resp.StatusCode)
	case resp.StatusCode >= 500:
		return weather.Snapshot{}, fmt.Errorf("%w: server status %d", weather.ErrNetwork, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return weather.Snapshot{}, fmt.Errorf("%w: unexpected status %d", weather.ErrNetwork, resp.StatusCode)
	}

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("%w: decode body: %v", weather.ErrParse, err)
	}

	return p.normalize(loc, payload)
}

// normalize turns the raw payload into a Snapshot, converting units
// exactly once. The current block and a consistent daily block are
// structurally required; the forecast may be shorter than requested.
func (p *OpenMeteoProvider) normalize(loc weather.Location, payload openMeteoPayload) (weather.Snapshot, error) {
	cur := payload.Current
	if cur == nil || cur.Temperature == nil {
		return weather.Snapshot{}, fmt.Errorf("%w: missing current block", weather.ErrParse)
	}

	observed, err := time.Parse("2006-01-02T15:04", cur.Time)
	if err != nil {
		// Some deployments return full RFC3339 timestamps.
		observed, err = time.Parse(time.RFC3339, cur.Time)
		if err != nil {
			return weather.Snapshot{}, fmt.Errorf("%w: current time %q: %v", weather.ErrParse, cur.Time, err)
		}
	}

	current := weather.CurrentConditions{
		Temperature:   p.temperature(*cur.Temperature),
		FeelsLike:     p.temperature(cur.FeelsLike),
		Humidity:      cur.Humidity,
		WindSpeed:     p.windSpeed(cur.WindSpeed),
		WindDirection: cur.WindDirection,
		Condition:     mapWeatherCode(cur.WeatherCode),
	}

	daily := payload.Daily
	if daily == nil {
		return weather.Snapshot{}, fmt.Errorf("%w: missing daily block", weather.ErrParse)
	}
	n := len(daily.Time)
	if len(daily.TempMax) != n || len(daily.TempMin) != n || len(daily.WeatherCode) != n {
		return weather.Snapshot{}, fmt.Errorf("%w: inconsistent daily arrays", weather.ErrParse)
	}

	days := make([]weather.ForecastDay, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.Parse("2006-01-02", daily.Time[i])
		if err != nil {
			return weather.Snapshot{}, fmt.Errorf("%w: daily date %q: %v", weather.ErrParse, daily.Time[i], err)
		}
		day := weather.ForecastDay{
			Date:      date,
			High:      p.temperature(daily.TempMax[i]),
			Low:       p.temperature(daily.TempMin[i]),
			Condition: mapWeatherCode(daily.WeatherCode[i]),
		}
		// precipitation_probability_max is null outside the probability
		// horizon; the decoder leaves missing tail entries at zero.
		if i < len(daily.PrecipProb) {
			day.PrecipChance = int(daily.PrecipProb[i])
		}
		days = append(days, day)
	}

	return weather.NewSnapshot(loc, observed, p.units, current, days), nil
}

// temperature converts from the API's Celsius into the configured system.
func (p *OpenMeteoProvider) temperature(c float64) float64 {
	if p.units == weather.UnitsImperial {
		return c*9/5 + 32
	}
	return c
}

// windSpeed converts from the API's km/h into the configured system.
func (p *OpenMeteoProvider) windSpeed(kmh float64) float64 {
	if p.units == weather.UnitsImperial {
		return kmh / 1.609344
	}
	return kmh
}

// mapWeatherCode maps WMO weather interpretation codes onto the closed
// condition enumeration. Codes outside the table become unknown.
func mapWeatherCode(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95 && code <= 99:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}
