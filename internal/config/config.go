package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

var validate = validator.New()

// AppConfig is the immutable configuration the core consumes. It is built
// once at startup; nothing mutates it afterwards.
type AppConfig struct {
	// Provider settings. The API key is optional: the free Open-Meteo
	// tier does not use one.
	APIKey  string
	BaseURL string `validate:"omitempty,url"`

	// The single tracked location.
	LocationName string
	Lat          float64 `validate:"gte=-90,lte=90"`
	Lon          float64 `validate:"gte=-180,lte=180"`

	Units weather.Units `validate:"oneof=metric imperial"`

	// Refresh loop and retry policy. The cache TTL equals the refresh
	// interval so an early tick never triggers a redundant network call.
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	MaxAttempts     int `validate:"min=1,max=10"`
	BaseBackoff     time.Duration

	ForecastDays int `validate:"min=1,max=7"`

	// Fallback panel geometry when the terminal size cannot be detected.
	PanelColumns int `validate:"min=20"`
	PanelRows    int `validate:"min=5"`

	// Outbound rate limit guarding the provider.
	RateRPS   float64 `validate:"gt=0"`
	RateBurst int     `validate:"min=1"`

	Port string
}

// CacheTTL returns the time-to-live for cached snapshots.
func (c *AppConfig) CacheTTL() time.Duration {
	return c.RefreshInterval
}

// TickTimeout bounds one whole refresh tick: every attempt's timeout plus
// the worst-case backoff between attempts.
func (c *AppConfig) TickTimeout() time.Duration {
	total := time.Duration(c.MaxAttempts) * c.RequestTimeout
	backoff := c.BaseBackoff
	for i := 1; i < c.MaxAttempts; i++ {
		total += backoff
		backoff *= 2
	}
	return total + 5*time.Second
}

// Location returns the configured location value.
func (c *AppConfig) Location() weather.Location {
	return weather.Location{Name: c.LocationName, Lat: c.Lat, Lon: c.Lon}
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		APIKey:       os.Getenv("OPENMETEO_API_KEY"),
		BaseURL:      os.Getenv("OPENMETEO_BASE_URL"),
		LocationName: getenvDefault("LOCATION_NAME", "Sintra"),
		Units:        weather.Units(getenvDefault("UNITS", string(weather.UnitsMetric))),
		MaxAttempts:  getenvInt("MAX_RETRY_ATTEMPTS", 3),
		ForecastDays: getenvInt("FORECAST_DAYS", 5),
		PanelColumns: getenvInt("PANEL_COLUMNS", 48),
		PanelRows:    getenvInt("PANEL_ROWS", 8),
		RateBurst:    getenvInt("RATE_BURST", 2),
		Port:         getenvDefault("PORT", "8080"),
	}

	var err error
	if cfg.Lat, err = getenvFloat("LATITUDE", 38.8029); err != nil {
		return nil, err
	}
	if cfg.Lon, err = getenvFloat("LONGITUDE", -9.3817); err != nil {
		return nil, err
	}
	if cfg.RateRPS, err = getenvFloat("RATE_RPS", 1); err != nil {
		return nil, err
	}

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.BaseBackoff, err = getenvDuration("BASE_BACKOFF", 500*time.Millisecond); err != nil {
		return nil, err
	}

	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if cfg.BaseBackoff <= 0 {
		return nil, fmt.Errorf("BASE_BACKOFF must be positive")
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
