// Package jma models the JMA bosai documents the collector reads: the AMeDAS latest-time
// text, the AMeDAS map snapshot and the per-office forecast document.
package jma

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/jma-weather-collector/internal/models"
)

// ErrParseFailure is returned when an upstream document is malformed or has an unexpected shape.
var ErrParseFailure = errors.New("malformed upstream document")

// Forecast time series indexes inside the short-range group.
const (
	SeriesWeather = 0
	SeriesPops    = 1
	SeriesTemps   = 2
)

// Observation is one station entry of an AMeDAS map snapshot. Samples are [value, quality] pairs.
type Observation struct {
	Pressure         []*float64 `json:"pressure"`
	NormalPressure   []*float64 `json:"normalPressure"`
	Temp             []*float64 `json:"temp"`
	Humidity         []*float64 `json:"humidity"`
	Sun10m           []*float64 `json:"sun10m"`
	Sun1h            []*float64 `json:"sun1h"`
	Precipitation10m []*float64 `json:"precipitation10m"`
	Precipitation1h  []*float64 `json:"precipitation1h"`
	Precipitation3h  []*float64 `json:"precipitation3h"`
	Precipitation24h []*float64 `json:"precipitation24h"`
	WindDirection    []*float64 `json:"windDirection"`
	Wind             []*float64 `json:"wind"`
}

// Record maps the upstream entry onto the normalized record shape, stamped with timestamp.
func (o Observation) Record(timestamp string) models.ObservationRecord {
	return models.ObservationRecord{
		Timestamp:        timestamp,
		Pressure:         o.Pressure,
		SeaLevelPressure: o.NormalPressure,
		Temperature:      o.Temp,
		Humidity:         o.Humidity,
		Sunshine10m:      o.Sun10m,
		Sunshine1h:       o.Sun1h,
		Precipitation10m: o.Precipitation10m,
		Precipitation1h:  o.Precipitation1h,
		Precipitation3h:  o.Precipitation3h,
		Precipitation24h: o.Precipitation24h,
		WindDirection:    o.WindDirection,
		WindSpeed:        o.Wind,
	}
}

// Snapshot is an AMeDAS map snapshot keyed by station id. A station may map to null.
type Snapshot map[string]*Observation

// Station returns the entry for stationID. ok is false when the station is absent or null.
func (s Snapshot) Station(stationID int) (Observation, bool) {
	o := s[strconv.Itoa(stationID)]
	if o == nil {
		return Observation{}, false
	}
	return *o, true
}

// ForecastDocument is the per-office forecast: group 0 is short range, group 1 is weekly.
type ForecastDocument []ForecastGroup

// ForecastGroup is one forecast horizon published by an office.
type ForecastGroup struct {
	PublishingOffice string       `json:"publishingOffice"`
	ReportDatetime   time.Time    `json:"reportDatetime"`
	TimeSeries       []TimeSeries `json:"timeSeries"`
}

// TimeSeries pairs a list of instants with per-area value arrays indexed the same way.
type TimeSeries struct {
	TimeDefines []time.Time  `json:"timeDefines"`
	Areas       []AreaSeries `json:"areas"`
}

// AreaSeries holds the values for one area. Only the arrays relevant to the series are set.
type AreaSeries struct {
	Area         Area     `json:"area"`
	WeatherCodes []string `json:"weatherCodes,omitempty"`
	Weathers     []string `json:"weathers,omitempty"`
	Winds        []string `json:"winds,omitempty"`
	Waves        []string `json:"waves,omitempty"`
	Pops         []string `json:"pops,omitempty"`
	Temps        []string `json:"temps,omitempty"`
}

// Area identifies a forecast sub-region.
type Area struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// MatchesCode reports whether the area code equals code numerically ("051106" matches 51106).
func (a Area) MatchesCode(code int) bool {
	n, err := strconv.Atoi(strings.TrimSpace(a.Code))
	if err != nil {
		return false
	}
	return n == code
}

// Series returns the time series at index i of the short-range group.
func (d ForecastDocument) Series(i int) (TimeSeries, bool) {
	if len(d) == 0 || i < 0 || i >= len(d[0].TimeSeries) {
		return TimeSeries{}, false
	}
	return d[0].TimeSeries[i], true
}

// AreasMatching returns every area entry whose code equals code, in document order.
func (ts TimeSeries) AreasMatching(code int) []AreaSeries {
	var out []AreaSeries
	for _, a := range ts.Areas {
		if a.Area.MatchesCode(code) {
			out = append(out, a)
		}
	}
	return out
}

// ParseForecastDocument decodes a forecast document. The short-range group must be present.
func ParseForecastDocument(data []byte) (ForecastDocument, error) {
	var doc ForecastDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: forecast: %v", ErrParseFailure, err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: forecast: no forecast groups", ErrParseFailure)
	}
	return doc, nil
}

// ParseSnapshot decodes an AMeDAS map snapshot.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: snapshot: %v", ErrParseFailure, err)
	}
	return s, nil
}

// ParseLatestTime parses the body of latest_time.txt, e.g. "2024-03-02T00:10:00+09:00".
func ParseLatestTime(data []byte) (time.Time, error) {
	s := strings.TrimSpace(string(data))
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: latest time %q: %v", ErrParseFailure, s, err)
	}
	return t, nil
}
