// fetch-weather pulls historical daily weather for a city from the upstream
// API, month by month, and writes the merged result to a JSON file. With
// -sqlite it also loads the daily rows into a local SQLite database for
// model retraining work.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cangcimen/uv-index-api/internal/features"
	"github.com/cangcimen/uv-index-api/internal/forecast"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	city := flag.String("city", "", "city name (e.g. Jakarta)")
	startStr := flag.String("start", "", "start date, YYYY-MM-DD")
	endStr := flag.String("end", "", "end date, YYYY-MM-DD")
	outDir := flag.String("out", ".", "output directory for the merged JSON file")
	sqlitePath := flag.String("sqlite", "", "optional SQLite database to load daily rows into")
	baseURL := flag.String("base-url", "https://api.worldweatheronline.com/premium/v1", "weather API root")
	flag.Parse()

	if *city == "" || *startStr == "" || *endStr == "" {
		flag.Usage()
		return fmt.Errorf("city, start, and end are required")
	}

	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("WEATHER_API_KEY is not set")
	}

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", *startStr, err)
	}
	end, err := time.Parse("2006-01-02", *endStr)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", *endStr, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date precedes start date")
	}

	client := forecast.NewClient(&http.Client{Timeout: 30 * time.Second}, *baseURL)

	merged, err := fetchRange(client, apiKey, *city, start, end)
	if err != nil {
		return err
	}
	if len(merged.Data.Weather) == 0 {
		return fmt.Errorf("no weather data retrieved for %s", *city)
	}

	outPath := filepath.Join(*outDir, fmt.Sprintf("%d-%d-daily-%s.json",
		start.Year(), end.Year(), strings.ReplaceAll(*city, " ", "-")))
	if err := writeJSON(outPath, merged); err != nil {
		return err
	}
	log.Printf("wrote %d day blocks to %s", len(merged.Data.Weather), outPath)

	if *sqlitePath != "" {
		n, err := loadSQLite(*sqlitePath, *city, merged)
		if err != nil {
			return err
		}
		log.Printf("loaded %d daily rows into %s", n, *sqlitePath)
	}

	return nil
}

// fetchRange pulls the range in calendar-month chunks and merges the
// responses, keeping the first-seen location and request blocks.
func fetchRange(client *forecast.Client, apiKey, city string, start, end time.Time) (*forecast.HistoryPayload, error) {
	merged := &forecast.HistoryPayload{}

	for _, r := range forecast.SplitMonths(start, end) {
		log.Printf("fetching %s from %s to %s", city,
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		chunk, err := client.FetchHistory(ctx, apiKey, city, r.Start, r.End)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("fetch %s..%s: %w",
				r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), err)
		}

		if len(merged.Data.Request) == 0 {
			merged.Data.Request = chunk.Data.Request
		}
		if len(merged.Data.NearestArea) == 0 {
			merged.Data.NearestArea = chunk.Data.NearestArea
		}
		merged.Data.Weather = append(merged.Data.Weather, chunk.Data.Weather...)
	}

	return merged, nil
}

func writeJSON(path string, payload *forecast.HistoryPayload) error {
	raw, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

const historySchema = `
CREATE TABLE IF NOT EXISTS weather_history (
	city         TEXT NOT NULL,
	date         TEXT NOT NULL,
	temp_c       REAL,
	wind_kph     REAL,
	humidity     REAL,
	cloud_cover  REAL,
	precip_mm    REAL,
	pressure_mb  REAL,
	visibility_km REAL,
	feels_like_c REAL,
	PRIMARY KEY (city, date)
);`

// loadSQLite inserts one row per day block. History responses use tp=24, so
// each day carries a single hourly entry covering the whole day.
func loadSQLite(path, city string, payload *forecast.HistoryPayload) (int, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return 0, fmt.Errorf("open sqlite db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(historySchema); err != nil {
		return 0, fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO weather_history
		(city, date, temp_c, wind_kph, humidity, cloud_cover, precip_mm, pressure_mb, visibility_km, feels_like_c)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, raw := range payload.Data.Weather {
		var day forecast.Day
		if err := json.Unmarshal(raw, &day); err != nil {
			return inserted, fmt.Errorf("%w: %v", forecast.ErrMalformed, err)
		}

		single := &forecast.Payload{}
		single.Data.Weather = []forecast.Day{day}
		observations, err := features.Observations(single)
		if err != nil {
			return inserted, err
		}

		o := observations[0]
		if _, err := stmt.Exec(city, day.Date, o.TempC, o.WindKph, o.Humidity,
			o.CloudCover, o.PrecipMM, o.PressureMb, o.VisibilityKm, o.FeelsLikeC); err != nil {
			return inserted, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, err
	}
	return inserted, nil
}
