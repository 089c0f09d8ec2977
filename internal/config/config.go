package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// WeatherAPIKey is the env-provided upstream key, used when a realtime
	// request does not carry its own.
	WeatherAPIKey string

	// GeocoderAPIKey enables live coordinate lookup for cities missing from
	// the static table. Empty means unknown cities fail closed.
	GeocoderAPIKey string

	// Artifact paths, read once at startup.
	ScalerPath     string
	ModelPath      string
	CategoriesPath string

	// ForecastBaseURL is the upstream weather API root.
	ForecastBaseURL string

	// HTTPTimeout bounds outbound forecast calls.
	HTTPTimeout time.Duration

	// Prediction cache retention.
	CacheMaxEntries int
	CacheMaxAge     time.Duration

	// Cities whose daily prediction is prewarmed on a schedule.
	PrewarmCities   []string
	PrewarmInterval time.Duration

	// CORSOrigins is the comma-separated allow list for browser clients.
	CORSOrigins string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.ScalerPath = getenvDefault("SCALER_PATH", "artifacts/scaler.json")
	cfg.ModelPath = getenvDefault("MODEL_PATH", "artifacts/model.json")
	cfg.CategoriesPath = getenvDefault("CATEGORIES_PATH", "artifacts/uv_categories.txt")

	cfg.ForecastBaseURL = getenvDefault("FORECAST_BASE_URL", "https://api.worldweatheronline.com/premium/v1")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 512)

	maxAge, err := getenvDuration("CACHE_MAX_AGE", "12h")
	if err != nil {
		return nil, err
	}
	cfg.CacheMaxAge = maxAge

	if cities := os.Getenv("PREWARM_CITIES"); cities != "" {
		for _, c := range strings.Split(cities, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.PrewarmCities = append(cfg.PrewarmCities, c)
			}
		}
	}

	interval, err := getenvDuration("PREWARM_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}
	cfg.PrewarmInterval = interval

	cfg.CORSOrigins = getenvDefault("CORS_ORIGINS", "*")
	cfg.Port = getenvDefault("PORT", "8080")

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

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
