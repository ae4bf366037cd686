package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/nasharino/weather-forecast-panel/internal/api/http"
	"github.com/nasharino/weather-forecast-panel/internal/cache"
	"github.com/nasharino/weather-forecast-panel/internal/config"
	"github.com/nasharino/weather-forecast-panel/internal/panel"
	"github.com/nasharino/weather-forecast-panel/internal/scheduler"
	"github.com/nasharino/weather-forecast-panel/internal/term"
	"github.com/nasharino/weather-forecast-panel/internal/weather"
	"github.com/nasharino/weather-forecast-panel/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls; each attempt is
	// independently bounded by this timeout.
	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
	}

	var opts []providers.Option
	if cfg.BaseURL != "" {
		opts = append(opts, providers.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, providers.WithAPIKey(cfg.APIKey))
	}
	provider := providers.NewOpenMeteoProvider(httpClient, cfg.Units, cfg.ForecastDays, opts...)
	limited := weather.NewRateLimitedProvider(provider, cfg.RateRPS, cfg.RateBurst)

	forecastCache := cache.New(cfg.CacheTTL(), nil)
	client := weather.NewClient(limited, forecastCache, weather.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseBackoff: cfg.BaseBackoff,
	})

	fallback := panel.Geometry{Columns: cfg.PanelColumns, Rows: cfg.PanelRows}
	display := term.NewWriter(os.Stdout, fallback)

	sched := scheduler.New(cfg.Location(), cfg.RefreshInterval, cfg.TickTimeout(), client, display)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start refresh loop: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-forecast-panel",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Request logs go to stderr so they never scribble over the panel.
	app.Use(logger.New(logger.Config{Output: os.Stderr}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-forecast-panel",
		})
	})

	httpapi.RegisterRoutes(app, sched, fallback)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
