package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed indicates the upstream payload could not be interpreted as a
// forecast. Callers must not emit partial rows when this is returned.
var ErrMalformed = errors.New("malformed forecast payload")

// Payload is the decoded forecast response from the weather API.
// Hourly values arrive as strings and are parsed downstream.
type Payload struct {
	Data struct {
		Error   []ErrorEntry `json:"error,omitempty"`
		Weather []Day        `json:"weather"`
	} `json:"data"`
}

// ErrorEntry is the upstream's in-band error shape, returned with HTTP 200.
type ErrorEntry struct {
	Msg string `json:"msg"`
}

// Day is one date block containing hourly forecast entries.
type Day struct {
	Date   string      `json:"date"`
	Hourly []HourEntry `json:"hourly"`
}

// HourEntry is one forecast tick. Time is encoded as HHMM without leading
// zeros ("0", "300", "2300"); hour-of-day is the value divided by 100.
type HourEntry struct {
	Time          string `json:"time"`
	TempC         string `json:"tempC"`
	WindspeedKmph string `json:"windspeedKmph"`
	Humidity      string `json:"humidity"`
	CloudCover    string `json:"cloudcover"`
	PrecipMM      string `json:"precipMM"`
	Pressure      string `json:"pressure"`
	Visibility    string `json:"visibility"`
	FeelsLikeC    string `json:"FeelsLikeC"`
}

// HistoryPayload preserves upstream blocks verbatim so the archiver can merge
// multiple responses without re-encoding fields it does not understand.
type HistoryPayload struct {
	Data struct {
		Error       []ErrorEntry      `json:"error,omitempty"`
		Request     []json.RawMessage `json:"request,omitempty"`
		NearestArea []json.RawMessage `json:"nearest_area,omitempty"`
		Weather     []json.RawMessage `json:"weather,omitempty"`
	} `json:"data"`
}

func (p *Payload) validate() error {
	if len(p.Data.Error) > 0 {
		return &UpstreamError{Body: p.Data.Error[0].Msg}
	}
	if len(p.Data.Weather) == 0 {
		return fmt.Errorf("%w: no weather blocks", ErrMalformed)
	}
	return nil
}
