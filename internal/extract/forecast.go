package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kjstillabower/jma-weather-collector/internal/jma"
	"github.com/kjstillabower/jma-weather-collector/internal/models"
)

// Hours on the JST clock that carry the daily minimum and maximum in the temperature series.
const (
	minTempHour = 0
	maxTempHour = 9
)

// Section names reported as missing by Summarize.
const (
	SectionTemperature   = "temperature"
	SectionPrecipitation = "precipitation"
	SectionWeather       = "weather"
)

// Summarize builds the day record for target from the short-range group of doc.
// A section whose series block or area is absent keeps its fields empty and is listed in missing.
func Summarize(doc jma.ForecastDocument, target time.Time, tempAreaCode, weatherAreaCode int) (rec models.ForecastDayRecord, missing []string) {
	rec.Date = models.FormatDateKey(target)

	if !temperaturePass(doc, target, tempAreaCode, &rec) {
		missing = append(missing, SectionTemperature)
	}
	if !precipitationPass(doc, target, weatherAreaCode, &rec) {
		missing = append(missing, SectionPrecipitation)
	}
	if !weatherPass(doc, target, weatherAreaCode, &rec) {
		missing = append(missing, SectionWeather)
	}
	return rec, missing
}

func temperaturePass(doc jma.ForecastDocument, target time.Time, areaCode int, rec *models.ForecastDayRecord) bool {
	ts, ok := doc.Series(jma.SeriesTemps)
	if !ok {
		return false
	}
	areas := ts.AreasMatching(areaCode)
	for _, area := range areas {
		for j, at := range ts.TimeDefines {
			if j >= len(area.Temps) || !jma.SameCivilDay(at, target) {
				continue
			}
			v, ok := normalizeInteger(area.Temps[j])
			if !ok {
				continue
			}
			switch jma.HourJST(at) {
			case minTempHour:
				rec.MinTemperature = v
			case maxTempHour:
				rec.MaxTemperature = v
			}
		}
	}
	return len(areas) > 0
}

func precipitationPass(doc jma.ForecastDocument, target time.Time, areaCode int, rec *models.ForecastDayRecord) bool {
	ts, ok := doc.Series(jma.SeriesPops)
	if !ok {
		return false
	}
	areas := ts.AreasMatching(areaCode)
	var values []string
	for _, area := range areas {
		for j, at := range ts.TimeDefines {
			if j >= len(area.Pops) || !jma.SameCivilDay(at, target) {
				continue
			}
			// 00h slot is not part of the daily maximum.
			if jma.HourJST(at) == 0 {
				continue
			}
			values = append(values, area.Pops[j])
		}
	}
	rec.MaxPrecipitationProbability = maxDecimal(values)
	return len(areas) > 0
}

func weatherPass(doc jma.ForecastDocument, target time.Time, areaCode int, rec *models.ForecastDayRecord) bool {
	ts, ok := doc.Series(jma.SeriesWeather)
	if !ok {
		return false
	}
	areas := ts.AreasMatching(areaCode)
	for _, area := range areas {
		for j, at := range ts.TimeDefines {
			if j >= len(area.Weathers) || !jma.SameCivilDay(at, target) {
				continue
			}
			rec.WeatherDescription = area.Weathers[j]
		}
	}
	return len(areas) > 0
}

// normalizeInteger parses a numeric token and renders its integer part ("07" -> "7", "12.8" -> "12").
func normalizeInteger(s string) (string, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return d.Truncate(0).String(), true
}

// maxDecimal returns the largest numeric token as a string. Non-numeric tokens, including
// the empty placeholders JMA publishes for elapsed slots, are rejected. No numeric token yields "".
func maxDecimal(tokens []string) string {
	var max decimal.Decimal
	have := false
	for _, tok := range tokens {
		d, err := decimal.NewFromString(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		if !have || d.GreaterThan(max) {
			max = d
			have = true
		}
	}
	if !have {
		return ""
	}
	return max.String()
}
