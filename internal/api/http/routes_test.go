package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cangcimen/uv-index-api/internal/features"
	"github.com/cangcimen/uv-index-api/internal/forecast"
	"github.com/cangcimen/uv-index-api/internal/geo"
	"github.com/cangcimen/uv-index-api/internal/inference"
	"github.com/cangcimen/uv-index-api/internal/store"
	"github.com/cangcimen/uv-index-api/internal/uvindex"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	scaler := &inference.Scaler{
		Mean:  make([]float64, features.Width),
		Scale: make([]float64, features.Width),
	}
	for i := range scaler.Scale {
		scaler.Scale[i] = 1
	}
	model := &inference.Model{Layers: []inference.Layer{{
		Weights:    [][]float64{make([]float64, features.Width)},
		Biases:     []float64{5.5},
		Activation: "linear",
	}}}

	engine, err := inference.NewEngine(scaler, model,
		inference.Categories{"Low", "Moderate", "High", "Very High", "Extreme"})
	if err != nil {
		t.Fatalf("failed to build test engine: %v", err)
	}

	client := forecast.NewClient(&http.Client{Timeout: time.Second}, "http://127.0.0.1:0")
	cache := store.NewMemoryStore(64, time.Hour)
	service := uvindex.NewService(geo.NewResolver(""), client, engine, cache, "")

	app := fiber.New()
	RegisterRoutes(app, service)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf(`status = %q, want "OK"`, body["status"])
	}
}

func TestPredictValidCity(t *testing.T) {
	app := newTestApp(t)
	date := tomorrow()

	resp := postJSON(t, app, "/predict",
		fmt.Sprintf(`{"city":"Jakarta","date":"%s"}`, date))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		Data   struct {
			City        string `json:"city"`
			Coordinates struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"coordinates"`
			Date             string  `json:"date"`
			PredictedUVIndex float64 `json:"predicted_uv_index"`
			UVRiskLevel      string  `json:"uv_risk_level"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Data.City != "Jakarta" {
		t.Errorf("city = %q, want Jakarta", body.Data.City)
	}
	if body.Data.PredictedUVIndex < 0 || body.Data.PredictedUVIndex > 20 {
		t.Errorf("predicted_uv_index = %v, want a value in [0, 20]", body.Data.PredictedUVIndex)
	}
	if body.Data.UVRiskLevel == "" {
		t.Error("missing uv_risk_level")
	}
	if body.Data.Date != date {
		t.Errorf("date = %q, want %q", body.Data.Date, date)
	}
}

func TestPredictUnknownCity(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/predict",
		fmt.Sprintf(`{"city":"Atlantis","date":"%s"}`, tomorrow()))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "unknown city") {
		t.Fatalf("expected an unknown city message, got %q", string(body))
	}
}

func TestPredictValidationFailures(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad date format", `{"city":"Jakarta","date":"2025/01/01"}`},
		{"past date", `{"city":"Jakarta","date":"2020-01-01"}`},
		{"missing fields", `{}`},
		{"not json", `city=Jakarta`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/predict", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
			}
		})
	}
}

func TestPredictFortnight(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/predict-fortnight",
		fmt.Sprintf(`{"city":"Jakarta","start_date":"%s"}`, tomorrow()))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Data struct {
			TotalDays   int `json:"total_days"`
			Predictions []struct {
				Date string `json:"date"`
			} `json:"predictions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Data.TotalDays != 14 || len(body.Data.Predictions) != 14 {
		t.Fatalf("expected 14 predictions, got total_days=%d len=%d",
			body.Data.TotalDays, len(body.Data.Predictions))
	}

	prev, err := time.Parse("2006-01-02", body.Data.Predictions[0].Date)
	if err != nil {
		t.Fatalf("bad first date: %v", err)
	}
	for i := 1; i < len(body.Data.Predictions); i++ {
		cur, err := time.Parse("2006-01-02", body.Data.Predictions[i].Date)
		if err != nil {
			t.Fatalf("bad date at %d: %v", i, err)
		}
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			t.Fatalf("dates not consecutive at %d: %s after %s",
				i, body.Data.Predictions[i].Date, body.Data.Predictions[i-1].Date)
		}
		prev = cur
	}
}

func TestPredictRealtimeMissingKey(t *testing.T) {
	app := newTestApp(t)

	resp := postJSON(t, app, "/predict-realtime", `{"city":"Jakarta"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRootMetadata(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Cities []string `json:"cities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Cities) == 0 {
		t.Fatal("expected the supported city list in metadata")
	}
}
