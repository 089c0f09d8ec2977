// Package uvindex orchestrates the prediction pipeline: validate the
// request, resolve the city, obtain weather features, run the model, and
// shape the results. All reference data is read-only after startup, so a
// single Service instance serves concurrent requests without locking.
package uvindex

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cangcimen/uv-index-api/internal/features"
	"github.com/cangcimen/uv-index-api/internal/forecast"
	"github.com/cangcimen/uv-index-api/internal/geo"
	"github.com/cangcimen/uv-index-api/internal/inference"
)

// fortnightDays is the length of the batch prediction window.
const fortnightDays = 14

// dailyHour is the representative hour for calendar-date predictions.
const dailyHour = 12

// Service runs the prediction pipeline.
type Service struct {
	resolver *geo.Resolver
	client   *forecast.Client
	engine   *inference.Engine
	cache    Cache

	// apiKey is the env-provided upstream key used when a realtime request
	// does not carry its own.
	apiKey string

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(resolver *geo.Resolver, client *forecast.Client, engine *inference.Engine, cache Cache, apiKey string) *Service {
	return &Service{
		resolver: resolver,
		client:   client,
		engine:   engine,
		cache:    cache,
		apiKey:   apiKey,
		now:      time.Now,
	}
}

// Predict computes the UV index for a city on a calendar date.
func (s *Service) Predict(ctx context.Context, city, date string) (DailyResult, error) {
	day, err := s.validateDate(date)
	if err != nil {
		return DailyResult{}, err
	}
	coord, err := s.resolver.Resolve(city)
	if err != nil {
		return DailyResult{}, err
	}

	fc, err := s.predictDay(city, day)
	if err != nil {
		return DailyResult{}, err
	}
	return DailyResult{City: city, Coordinate: coord, Forecast: fc}, nil
}

// PredictFortnight computes 14 consecutive daily predictions starting at
// startDate. Days are computed concurrently; the result slice is indexed by
// day offset so output order stays strictly ascending by date.
func (s *Service) PredictFortnight(ctx context.Context, city, startDate string) (FortnightResult, error) {
	start, err := s.validateDate(startDate)
	if err != nil {
		return FortnightResult{}, err
	}
	coord, err := s.resolver.Resolve(city)
	if err != nil {
		return FortnightResult{}, err
	}

	days := make([]DayForecast, fortnightDays)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < fortnightDays; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			fc, err := s.predictDay(city, start.AddDate(0, 0, i))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			days[i] = fc
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return FortnightResult{}, firstErr
	}
	return FortnightResult{City: city, Coordinate: coord, Days: days}, nil
}

// PredictRealtime fetches the live 3-day hourly forecast for a city, runs
// the model per hour, and returns predictions at or after the current time
// in upstream order.
func (s *Service) PredictRealtime(ctx context.Context, apiKey, city string) ([]Prediction, error) {
	if _, err := s.resolver.Resolve(city); err != nil {
		return nil, err
	}

	key := apiKey
	if key == "" {
		key = s.apiKey
	}
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := s.client.Fetch(ctx, key, city)
	if err != nil {
		return nil, err
	}

	observations, err := features.Observations(payload)
	if err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(observations))
	for _, obs := range observations {
		uv, err := s.engine.Predict(features.FromObservation(obs))
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, Prediction{
			Timestamp: obs.Timestamp(),
			UVIndex:   round2(uv),
			RiskLevel: s.engine.Categorize(uv),
		})
	}

	return filterFuture(predictions, s.now().UTC()), nil
}

// predictDay computes (or serves from cache) one calendar-date prediction.
func (s *Service) predictDay(city string, day time.Time) (DayForecast, error) {
	if s.cache != nil {
		if fc, err := s.cache.Get(city, day); err == nil {
			return fc, nil
		}
	}

	uv, err := s.engine.Predict(features.ForDate(day, dailyHour))
	if err != nil {
		return DayForecast{}, err
	}

	fc := DayForecast{
		Date:      day,
		UVIndex:   round2(uv),
		RiskLevel: s.engine.Categorize(uv),
	}
	if s.cache != nil {
		s.cache.Put(city, day, fc)
	}
	return fc, nil
}

// validateDate enforces the exact YYYY-MM-DD format and rejects dates
// strictly before the current calendar date. Validation runs before any
// network or model work.
func (s *Service) validateDate(date string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil || day.Format("2006-01-02") != date {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, date)
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrDateInPast, date)
	}
	return day, nil
}

// filterFuture keeps predictions with timestamp at or after now, preserving
// input order. No dedup, no sort.
func filterFuture(predictions []Prediction, now time.Time) []Prediction {
	out := make([]Prediction, 0, len(predictions))
	for _, p := range predictions {
		if !p.Timestamp.Before(now) {
			out = append(out, p)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
