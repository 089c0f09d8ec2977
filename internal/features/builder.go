package features

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cangcimen/uv-index-api/internal/forecast"
)

const (
	daylightStartHour = 6
	daylightEndHour   = 18

	// Equatorial day length assumed by the training data.
	daylightHours = 12.0
)

// Observation is one hourly forecast tick with numeric weather values.
// Immutable once built.
type Observation struct {
	Date         time.Time // calendar date at midnight UTC
	Hour         int       // 0-23
	TempC        float64
	WindKph      float64
	Humidity     float64
	CloudCover   float64
	PrecipMM     float64
	PressureMb   float64
	VisibilityKm float64
	FeelsLikeC   float64
}

// Timestamp reconstructs the absolute time of the observation.
func (o Observation) Timestamp() time.Time {
	return o.Date.Add(time.Duration(o.Hour) * time.Hour)
}

// Observations flattens a forecast payload into one row per hourly entry,
// preserving upstream (date, hour) order. A missing or unparsable value
// fails the whole payload; partial rows are never returned.
func Observations(p *forecast.Payload) ([]Observation, error) {
	var out []Observation

	for _, day := range p.Data.Weather {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", forecast.ErrMalformed, day.Date)
		}
		if len(day.Hourly) == 0 {
			return nil, fmt.Errorf("%w: no hourly entries for %s", forecast.ErrMalformed, day.Date)
		}

		for _, h := range day.Hourly {
			obs, err := parseHour(date, h)
			if err != nil {
				return nil, err
			}
			out = append(out, obs)
		}
	}

	return out, nil
}

func parseHour(date time.Time, h forecast.HourEntry) (Observation, error) {
	hhmm, err := strconv.Atoi(h.Time)
	if err != nil {
		return Observation{}, fmt.Errorf("%w: bad hour %q", forecast.ErrMalformed, h.Time)
	}
	hour := hhmm / 100
	if hour < 0 || hour > 23 {
		return Observation{}, fmt.Errorf("%w: hour %d out of range", forecast.ErrMalformed, hour)
	}

	obs := Observation{Date: date, Hour: hour}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"tempC", h.TempC, &obs.TempC},
		{"windspeedKmph", h.WindspeedKmph, &obs.WindKph},
		{"humidity", h.Humidity, &obs.Humidity},
		{"cloudcover", h.CloudCover, &obs.CloudCover},
		{"precipMM", h.PrecipMM, &obs.PrecipMM},
		{"pressure", h.Pressure, &obs.PressureMb},
		{"visibility", h.Visibility, &obs.VisibilityKm},
		{"FeelsLikeC", h.FeelsLikeC, &obs.FeelsLikeC},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return Observation{}, fmt.Errorf("%w: bad %s %q", forecast.ErrMalformed, f.name, f.raw)
		}
		*f.dst = v
	}

	return obs, nil
}

// FromObservation derives the model feature row for one observation.
func FromObservation(o Observation) Vector {
	var v Vector
	v[FieldMonth] = float64(o.Date.Month())
	v[FieldDay] = float64(o.Date.Day())
	v[FieldWeekday] = float64(weekdayMondayZero(o.Date))
	v[FieldHour] = float64(o.Hour)
	v[FieldTemperature] = o.TempC
	v[FieldWindSpeed] = o.WindKph
	v[FieldHumidity] = o.Humidity
	v[FieldCloudCover] = o.CloudCover
	v[FieldPrecipitation] = o.PrecipMM
	v[FieldPressure] = o.PressureMb
	v[FieldVisibility] = o.VisibilityKm
	v[FieldFeelsLike] = o.FeelsLikeC
	if o.Hour >= daylightStartHour && o.Hour <= daylightEndHour {
		v[FieldIsDaylight] = 1
	}
	v[FieldDaylightHours] = daylightHours
	return v
}

// Climatological defaults used when predicting for a calendar date without
// live weather, matching the values the model was exposed to in training.
var defaultWeather = Observation{
	TempC:        25.0,
	WindKph:      10.0,
	Humidity:     70.0,
	CloudCover:   50.0,
	PrecipMM:     0.0,
	PressureMb:   1013.25,
	VisibilityKm: 10.0,
	FeelsLikeC:   27.0,
}

// ForDate builds a single feature row for a calendar date using default
// weather values. Daily predictions use noon as the representative hour.
func ForDate(date time.Time, hour int) Vector {
	o := defaultWeather
	o.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	o.Hour = hour
	return FromObservation(o)
}

// weekdayMondayZero converts Go's Sunday-based weekday to Monday=0.
func weekdayMondayZero(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
