package uvindex

import (
	"errors"
	"time"

	"github.com/cangcimen/uv-index-api/internal/geo"
)

var (
	// ErrInvalidDateFormat is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")

	// ErrDateInPast is returned when a requested date precedes today.
	ErrDateInPast = errors.New("date must not be in the past")

	// ErrMissingAPIKey is returned when no upstream key is available for a
	// realtime prediction.
	ErrMissingAPIKey = errors.New("api_key is required")
)

// Prediction is one UV-index estimate for an absolute point in time.
// Never mutated after creation.
type Prediction struct {
	Timestamp time.Time
	UVIndex   float64
	RiskLevel string
}

// DayForecast is a per-calendar-date prediction, the unit stored in the
// cache and returned for daily and fortnight requests.
type DayForecast struct {
	Date      time.Time
	UVIndex   float64
	RiskLevel string
}

// DailyResult is the outcome of a single-day prediction request.
type DailyResult struct {
	City       string
	Coordinate geo.Coordinate
	Forecast   DayForecast
}

// FortnightResult is the outcome of a 14-day prediction request. Days are
// ordered by date, ascending, starting at the requested start date.
type FortnightResult struct {
	City       string
	Coordinate geo.Coordinate
	Days       []DayForecast
}

// Cache stores computed day forecasts. Any error from Get is treated as a
// miss. Implementations must be safe for concurrent use.
type Cache interface {
	Get(city string, date time.Time) (DayForecast, error)
	Put(city string, date time.Time, f DayForecast)
}
