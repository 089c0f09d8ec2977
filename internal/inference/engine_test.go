package inference

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cangcimen/uv-index-api/internal/features"
)

var testCategories = Categories{"Low", "Moderate", "High", "Very High", "Extreme"}

// identityScaler returns a scaler that passes values through unchanged.
func identityScaler(width int) *Scaler {
	s := &Scaler{Mean: make([]float64, width), Scale: make([]float64, width)}
	for i := range s.Scale {
		s.Scale[i] = 1
	}
	return s
}

// constantModel always predicts the given value regardless of input.
func constantModel(width int, value float64) *Model {
	weights := make([][]float64, 1)
	weights[0] = make([]float64, width)
	return &Model{Layers: []Layer{{Weights: weights, Biases: []float64{value}, Activation: "linear"}}}
}

func TestScalerTransform(t *testing.T) {
	s := &Scaler{Mean: []float64{10, 0}, Scale: []float64{2, 5}}

	out, err := s.Transform([]float64{14, -10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 2 || out[1] != -2 {
		t.Fatalf("transform = %v, want [2 -2]", out)
	}
}

func TestScalerShapeMismatchIsExplicit(t *testing.T) {
	s := identityScaler(features.Width)

	_, err := s.Transform(make([]float64, features.Width-1))
	if !errors.Is(err, ErrFeatureShapeMismatch) {
		t.Fatalf("expected ErrFeatureShapeMismatch, got %v", err)
	}
}

func TestModelForwardPass(t *testing.T) {
	m := &Model{Layers: []Layer{
		{Weights: [][]float64{{1, 0}, {0, 1}}, Biases: []float64{0, 0}, Activation: "relu"},
		{Weights: [][]float64{{1, 1}}, Biases: []float64{0.5}, Activation: "linear"},
	}}

	got, err := m.Predict([]float64{2, -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// relu clamps -3 to 0, so the output is 2 + 0 + 0.5.
	if got != 2.5 {
		t.Fatalf("predict = %v, want 2.5", got)
	}
}

func TestCategorizeBoundaries(t *testing.T) {
	tests := []struct {
		uv   float64
		want string
	}{
		{0, "Low"},
		{2.0, "Low"},
		{2.01, "Moderate"},
		{5.0, "Moderate"},
		{5.01, "High"},
		{7.0, "High"},
		{7.01, "Very High"},
		{10.0, "Very High"},
		{10.01, "Extreme"},
		{15.5, "Extreme"},
	}

	for _, tt := range tests {
		if got := testCategories.Label(tt.uv); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.uv, got, tt.want)
		}
	}
}

func TestNewEngineRejectsWidthMismatch(t *testing.T) {
	if _, err := NewEngine(identityScaler(3), constantModel(3, 1), testCategories); err == nil {
		t.Fatal("expected an error for scaler width != feature schema width")
	}
	if _, err := NewEngine(identityScaler(features.Width), constantModel(features.Width-1, 1), testCategories); err == nil {
		t.Fatal("expected an error for model width != scaler width")
	}
}

func TestEnginePredict(t *testing.T) {
	engine, err := NewEngine(identityScaler(features.Width), constantModel(features.Width, 6.4), testCategories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uv, err := engine.Predict(features.Vector{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uv != 6.4 {
		t.Fatalf("predict = %v, want 6.4", uv)
	}
	if got := engine.Categorize(uv); got != "High" {
		t.Fatalf("categorize = %q, want High", got)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadScalerValidation(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "scaler.json", `{"mean":[1,2],"scale":[1]}`)
	if _, err := LoadScaler(path); err == nil {
		t.Fatal("expected an error for mean/scale length mismatch")
	}

	path = writeFile(t, dir, "zero.json", `{"mean":[1,2],"scale":[1,0]}`)
	if _, err := LoadScaler(path); err == nil {
		t.Fatal("expected an error for zero scale column")
	}
}

func TestLoadModelValidation(t *testing.T) {
	dir := t.TempDir()

	// Second layer expects 3 inputs but the first emits 2.
	path := writeFile(t, dir, "model.json", `{"layers":[
		{"weights":[[0.1],[0.2]],"biases":[0,0],"activation":"relu"},
		{"weights":[[1,1,1]],"biases":[0],"activation":"linear"}]}`)
	if _, err := LoadModel(path); err == nil {
		t.Fatal("expected an error for mismatched layer widths")
	}

	path = writeFile(t, dir, "multi.json", `{"layers":[{"weights":[[1],[1]],"biases":[0,0],"activation":"linear"}]}`)
	if _, err := LoadModel(path); err == nil {
		t.Fatal("expected an error for non-scalar output layer")
	}
}

func TestLoadCategoriesRequiresFiveLabels(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "short.txt", "Low\nModerate\nHigh\n")
	if _, err := LoadCategories(path); err == nil {
		t.Fatal("expected an error for too few labels")
	}

	path = writeFile(t, dir, "full.txt", "Low\nModerate\nHigh\nVery High\nExtreme\n\n")
	labels, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 5 {
		t.Fatalf("expected 5 labels, got %d", len(labels))
	}
}
