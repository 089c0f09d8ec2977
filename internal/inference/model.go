package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Layer is one dense layer of the exported regression network.
// Weights is indexed [output unit][input unit].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

// Model is a feed-forward regression network exported to JSON. It is an
// opaque artifact as far as the service is concerned; only its input width
// and single scalar output are part of the contract.
type Model struct {
	Layers []Layer `json:"layers"`
}

// LoadModel reads a model artifact from disk and validates its shape chain.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &m, nil
}

func (m *Model) validate() error {
	if len(m.Layers) == 0 {
		return errors.New("no layers")
	}

	prevOut := -1
	for li, layer := range m.Layers {
		if len(layer.Weights) == 0 {
			return fmt.Errorf("layer %d has no units", li)
		}
		if len(layer.Weights) != len(layer.Biases) {
			return fmt.Errorf("layer %d: %d units but %d biases", li, len(layer.Weights), len(layer.Biases))
		}

		in := len(layer.Weights[0])
		for ui, unit := range layer.Weights {
			if len(unit) != in {
				return fmt.Errorf("layer %d unit %d: ragged weights", li, ui)
			}
		}
		if prevOut >= 0 && in != prevOut {
			return fmt.Errorf("layer %d expects %d inputs but previous layer emits %d", li, in, prevOut)
		}
		prevOut = len(layer.Weights)

		switch layer.Activation {
		case "relu", "linear":
		default:
			return fmt.Errorf("layer %d: unsupported activation %q", li, layer.Activation)
		}
	}

	if prevOut != 1 {
		return fmt.Errorf("output layer emits %d values, want 1", prevOut)
	}
	return nil
}

// InputWidth is the number of features the first layer consumes.
func (m *Model) InputWidth() int {
	return len(m.Layers[0].Weights[0])
}

// Predict runs a single forward pass over one scaled row.
func (m *Model) Predict(row []float64) (float64, error) {
	if len(row) != m.InputWidth() {
		return 0, fmt.Errorf("%w: got %d columns, model expects %d",
			ErrFeatureShapeMismatch, len(row), m.InputWidth())
	}

	current := row
	for _, layer := range m.Layers {
		next := make([]float64, len(layer.Weights))
		for ui, unit := range layer.Weights {
			sum := layer.Biases[ui]
			for i, w := range unit {
				sum += w * current[i]
			}
			if layer.Activation == "relu" && sum < 0 {
				sum = 0
			}
			next[ui] = sum
		}
		current = next
	}

	return current[0], nil
}
