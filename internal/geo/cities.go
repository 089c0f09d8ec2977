package geo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kelvins/geocoder"
)

// ErrUnknownCity is returned when a city is not in the lookup table and no
// geocoder fallback is configured.
var ErrUnknownCity = errors.New("unknown city")

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// cities is the static lookup table the model was trained against.
// Keys are lowercase.
var cities = map[string]Coordinate{
	"jakarta":    {-6.2088, 106.8456},
	"surabaya":   {-7.2575, 112.7521},
	"bandung":    {-6.9175, 107.6191},
	"medan":      {3.5952, 98.6722},
	"semarang":   {-6.9667, 110.4167},
	"makassar":   {-5.1477, 119.4327},
	"palembang":  {-2.9761, 104.7754},
	"denpasar":   {-8.6500, 115.2167},
	"yogyakarta": {-7.7956, 110.3695},
	"pontianak":  {-0.0263, 109.3425},
}

// Resolver maps city names to coordinates. When a Google geocoding key is
// configured, names missing from the static table fall back to a live
// lookup; otherwise resolution fails closed.
type Resolver struct {
	geocoderKey string
}

// NewResolver creates a Resolver. geocoderKey may be empty.
func NewResolver(geocoderKey string) *Resolver {
	if geocoderKey != "" {
		geocoder.ApiKey = geocoderKey
	}
	return &Resolver{geocoderKey: geocoderKey}
}

// Resolve returns the coordinates for a city, case-insensitively.
func (r *Resolver) Resolve(city string) (Coordinate, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if coord, ok := cities[key]; ok {
		return coord, nil
	}

	if r.geocoderKey != "" {
		loc, err := geocoder.Geocoding(geocoder.Address{City: city})
		if err == nil {
			return Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
		}
	}

	return Coordinate{}, fmt.Errorf("%w: %s", ErrUnknownCity, city)
}

// Cities lists the static table's city names, sorted, with canonical casing.
func Cities() []string {
	out := make([]string, 0, len(cities))
	for name := range cities {
		out = append(out, strings.ToUpper(name[:1])+name[1:])
	}
	sort.Strings(out)
	return out
}
