package models

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of every record's date key. Keys are always rendered in JST.
const DateKeyLayout = "2006/01/02 15:04:05"

// JST is the fixed UTC+9 zone used for civil dates and date keys, independent of the host zone.
var JST = time.FixedZone("Asia/Tokyo", 9*60*60)

// Record is a normalized record that can be merged into a store by its date key.
type Record interface {
	DateKey() string
}

// ObservationRecord is one station's entry from an AMeDAS snapshot.
// Each sample field carries the upstream [value, quality] pair verbatim; nulls are kept.
type ObservationRecord struct {
	Timestamp        string     `json:"timestamp"`
	Pressure         []*float64 `json:"pressure,omitempty"`
	SeaLevelPressure []*float64 `json:"seaLevelPressure,omitempty"`
	Temperature      []*float64 `json:"temperature,omitempty"`
	Humidity         []*float64 `json:"humidity,omitempty"`
	Sunshine10m      []*float64 `json:"sunshine10m,omitempty"`
	Sunshine1h       []*float64 `json:"sunshine1h,omitempty"`
	Precipitation10m []*float64 `json:"precipitation10m,omitempty"`
	Precipitation1h  []*float64 `json:"precipitation1h,omitempty"`
	Precipitation3h  []*float64 `json:"precipitation3h,omitempty"`
	Precipitation24h []*float64 `json:"precipitation24h,omitempty"`
	WindDirection    []*float64 `json:"windDirection,omitempty"`
	WindSpeed        []*float64 `json:"windSpeed,omitempty"`
}

// DateKey implements Record.
func (r ObservationRecord) DateKey() string {
	return r.Timestamp
}

// ForecastDayRecord summarizes one forecast day. Fields not found upstream stay empty.
type ForecastDayRecord struct {
	Date                        string `json:"date"`
	WeatherDescription          string `json:"weatherDescription"`
	MaxPrecipitationProbability string `json:"maxPrecipitationProbability"`
	MaxTemperature              string `json:"maxTemperature"`
	MinTemperature              string `json:"minTemperature"`
}

// DateKey implements Record.
func (r ForecastDayRecord) DateKey() string {
	return r.Date
}

// FormatDateKey renders t as a date key in JST.
func FormatDateKey(t time.Time) string {
	return t.In(JST).Format(DateKeyLayout)
}

// ParseDateKey parses a key produced by FormatDateKey.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, JST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return t, nil
}
