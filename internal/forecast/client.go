package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// UpstreamError carries the upstream status and body for diagnostics.
// Status is zero for transport-level failures.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("weather api unreachable: %s", e.Body)
	}
	return fmt.Sprintf("weather api returned %d: %s", e.Status, e.Body)
}

// BackoffConfig controls retry behaviour for transient upstream failures.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client talks to a worldweatheronline-style forecast API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	circuit    *gobreaker.CircuitBreaker
	backoff    BackoffConfig
}

// NewClient creates a Client with resilience defaults: a circuit breaker,
// bounded exponential backoff on 429/5xx, and an outbound rate limiter
// so batch callers stay inside the upstream free-tier quota.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "forecast-api",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
		circuit:    cb,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}

// SetBackoff overrides the retry policy. Mainly used by tests and the
// archiver, which prefers longer intervals over burning quota.
func (c *Client) SetBackoff(b BackoffConfig) {
	c.backoff = b
}

// Fetch retrieves the 3-day hourly forecast for a city.
func (c *Client) Fetch(ctx context.Context, apiKey, city string) (*Payload, error) {
	values := url.Values{}
	values.Set("key", apiKey)
	values.Set("q", city)
	values.Set("format", "json")
	values.Set("num_of_days", "3")
	values.Set("tp", "1")

	body, err := c.get(ctx, c.baseURL+"/weather.ashx", values)
	if err != nil {
		return nil, err
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := payload.validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchHistory retrieves past daily weather for a date range. The upstream
// caps range length, so callers chunk long ranges with SplitMonths.
func (c *Client) FetchHistory(ctx context.Context, apiKey, city string, start, end time.Time) (*HistoryPayload, error) {
	values := url.Values{}
	values.Set("key", apiKey)
	values.Set("q", city)
	values.Set("format", "json")
	values.Set("date", start.Format("2006-01-02"))
	values.Set("enddate", end.Format("2006-01-02"))
	values.Set("includelocation", "yes")
	values.Set("tp", "24")

	body, err := c.get(ctx, c.baseURL+"/past-weather.ashx", values)
	if err != nil {
		return nil, err
	}

	var payload HistoryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(payload.Data.Error) > 0 {
		return nil, &UpstreamError{Body: payload.Data.Error[0].Msg}
	}
	return &payload, nil
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// get executes the request with rate limiting, retries with exponential
// backoff on transient failures, and a circuit breaker. Terminal failures
// come back as *UpstreamError.
func (c *Client) get(ctx context.Context, rawURL string, values url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, &UpstreamError{Body: execErr.Error()}
			}
			defer resp.Body.Close()

			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return nil, &UpstreamError{Body: readErr.Error()}
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, fmt.Errorf("%w: %s", errRateLimited, string(body))
			}
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: %d %s", errServerError, resp.StatusCode, string(body))
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				// Client errors are terminal; retrying a bad key or city burns quota.
				return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
			}
			return body, nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		// Terminal upstream errors and an open circuit propagate immediately.
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.Status != 0 {
			return nil, ue
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &UpstreamError{Body: fmt.Sprintf("%v: %v", errCircuitOpen, err)}
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			if errors.As(lastErr, &ue) {
				return nil, ue
			}
			return nil, &UpstreamError{Body: lastErr.Error()}
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// DateRange is an inclusive calendar interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SplitMonths chunks [start, end] into calendar-month-aligned ranges, the
// largest window the past-weather endpoint accepts per request.
func SplitMonths(start, end time.Time) []DateRange {
	var ranges []DateRange
	for !start.After(end) {
		nextMonth := time.Date(start.Year(), start.Month(), 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
		monthEnd := nextMonth.AddDate(0, 0, -nextMonth.Day())
		if monthEnd.After(end) {
			monthEnd = end
		}
		ranges = append(ranges, DateRange{Start: start, End: monthEnd})
		start = monthEnd.AddDate(0, 0, 1)
	}
	return ranges
}
