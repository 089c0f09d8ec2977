package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrFeatureShapeMismatch is returned when an input row's width disagrees
// with what the scaler was fitted on. The check is explicit so a schema
// drift fails loudly instead of surfacing as a bad prediction.
var ErrFeatureShapeMismatch = errors.New("feature shape mismatch")

// Scaler is a fitted standard-score normalizer: (x - mean) / scale per column.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads a scaler artifact from disk and validates it.
func LoadScaler(path string) (*Scaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}

	var s Scaler
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode scaler artifact %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scaler artifact %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scaler) validate() error {
	if len(s.Mean) == 0 {
		return errors.New("empty mean vector")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("mean length %d != scale length %d", len(s.Mean), len(s.Scale))
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("zero scale at column %d", i)
		}
	}
	return nil
}

// Width is the number of input columns the scaler was fitted on.
func (s *Scaler) Width() int {
	return len(s.Mean)
}

// Transform normalizes one row. The input width must match the fitted width.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("%w: got %d columns, scaler expects %d",
			ErrFeatureShapeMismatch, len(row), len(s.Mean))
	}

	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
