package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	httpapi "github.com/cangcimen/uv-index-api/internal/api/http"
	"github.com/cangcimen/uv-index-api/internal/config"
	"github.com/cangcimen/uv-index-api/internal/forecast"
	"github.com/cangcimen/uv-index-api/internal/geo"
	"github.com/cangcimen/uv-index-api/internal/inference"
	"github.com/cangcimen/uv-index-api/internal/scheduler"
	"github.com/cangcimen/uv-index-api/internal/store"
	"github.com/cangcimen/uv-index-api/internal/uvindex"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Model, scaler, and category artifacts are loaded once; a missing or
	// corrupt artifact is fatal at startup, never a per-request error.
	engine, err := inference.Load(cfg.ScalerPath, cfg.ModelPath, cfg.CategoriesPath)
	if err != nil {
		log.Fatalf("failed to load inference artifacts: %v", err)
	}

	// Shared HTTP client for outbound forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	resolver := geo.NewResolver(cfg.GeocoderAPIKey)
	client := forecast.NewClient(httpClient, cfg.ForecastBaseURL)
	cache := store.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheMaxAge)

	// Core service orchestrating the prediction pipeline.
	service := uvindex.NewService(resolver, client, engine, cache, cfg.WeatherAPIKey)

	// Scheduler that periodically prewarms the prediction cache.
	sched := scheduler.New(cfg.PrewarmCities, cfg.PrewarmInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "uv-index-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST",
		AllowHeaders: "Content-Type",
	}))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Request-ID", uuid.NewString())
		return c.Next()
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
