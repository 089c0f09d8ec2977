// Package inference owns the pre-trained regression artifacts: the feature
// scaler, the model, and the risk category table. All three are loaded once
// at startup into an immutable Engine that request handlers share; nothing
// here mutates after construction, so concurrent use needs no locking.
package inference

import (
	"fmt"

	"github.com/cangcimen/uv-index-api/internal/features"
)

// Engine bundles the scaler, model, and category table behind a single
// prediction entry point.
type Engine struct {
	scaler     *Scaler
	model      *Model
	categories Categories
}

// NewEngine cross-validates artifact dimensions against the feature schema.
// A mismatch means the artifacts were fitted on a different layout and must
// not serve traffic.
func NewEngine(scaler *Scaler, model *Model, categories Categories) (*Engine, error) {
	if scaler.Width() != features.Width {
		return nil, fmt.Errorf("scaler fitted on %d columns but feature schema v%d has %d",
			scaler.Width(), features.SchemaVersion, features.Width)
	}
	if model.InputWidth() != scaler.Width() {
		return nil, fmt.Errorf("model expects %d inputs but scaler emits %d",
			model.InputWidth(), scaler.Width())
	}
	return &Engine{scaler: scaler, model: model, categories: categories}, nil
}

// Load reads all three artifacts from disk and builds an Engine.
func Load(scalerPath, modelPath, categoriesPath string) (*Engine, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, err
	}
	categories, err := LoadCategories(categoriesPath)
	if err != nil {
		return nil, err
	}
	return NewEngine(scaler, model, categories)
}

// Predict scales one feature row and runs a single model pass.
func (e *Engine) Predict(vec features.Vector) (float64, error) {
	scaled, err := e.scaler.Transform(vec.Values())
	if err != nil {
		return 0, err
	}
	return e.model.Predict(scaled)
}

// Categorize maps a UV index to its risk label.
func (e *Engine) Categorize(uv float64) string {
	return e.categories.Label(uv)
}
