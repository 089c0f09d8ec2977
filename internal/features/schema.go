package features

// Field indexes into a Vector. The order is load-bearing: it must match the
// column order the scaler and model were fitted on. Any change here requires
// new artifacts and a SchemaVersion bump.
const (
	FieldMonth = iota
	FieldDay
	FieldWeekday
	FieldHour
	FieldTemperature
	FieldWindSpeed
	FieldHumidity
	FieldCloudCover
	FieldPrecipitation
	FieldPressure
	FieldVisibility
	FieldFeelsLike
	FieldIsDaylight
	FieldDaylightHours

	// Width is the number of features per vector.
	Width
)

// SchemaVersion identifies the feature layout. Artifacts fitted against a
// different layout must be rejected at load time, not at inference time.
const SchemaVersion = 1

// Vector is one fixed-order feature row for the UV model.
type Vector [Width]float64

// Values returns the vector as a slice in schema order.
func (v Vector) Values() []float64 {
	out := make([]float64, Width)
	copy(out, v[:])
	return out
}
