package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cangcimen/uv-index-api/internal/uvindex"
)

// ErrNotFound is returned when no cached forecast exists for a city/date.
var ErrNotFound = errors.New("no cached forecast for city and date")

type entry struct {
	forecast uvindex.DayForecast
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of daily UV forecasts,
// keyed by city and calendar date. Daily predictions are deterministic for a
// given model, so serving a cached entry never changes a response.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]entry

	// retention configuration
	maxEntries int           // max number of cached forecasts (0 = unlimited)
	maxAge     time.Duration // max entry age (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional limits.
// Non-positive limits are treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
}

func cacheKey(city string, date time.Time) string {
	return strings.ToLower(strings.TrimSpace(city)) + ":" + date.Format("2006-01-02")
}

// Put stores a forecast and enforces retention.
func (s *MemoryStore) Put(city string, date time.Time, f uvindex.DayForecast) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[cacheKey(city, date)] = entry{forecast: f, storedAt: time.Now()}

	// Enforce retention by count, dropping oldest entries first.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(s.data, oldestKey)
	}
}

// Get returns the cached forecast for a city/date, or ErrNotFound when the
// entry is absent or older than the retention window.
func (s *MemoryStore) Get(city string, date time.Time) (uvindex.DayForecast, error) {
	s.mu.RLock()
	e, ok := s.data[cacheKey(city, date)]
	s.mu.RUnlock()

	if !ok {
		return uvindex.DayForecast{}, ErrNotFound
	}
	if s.maxAge > 0 && time.Since(e.storedAt) > s.maxAge {
		s.mu.Lock()
		delete(s.data, cacheKey(city, date))
		s.mu.Unlock()
		return uvindex.DayForecast{}, ErrNotFound
	}
	return e.forecast, nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
