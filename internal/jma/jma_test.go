package jma

import (
	"errors"
	"testing"
	"time"

	"github.com/kjstillabower/jma-weather-collector/internal/models"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", s, err)
	}
	return v
}

// TestSameCivilDay compares instants by their UTC+9 calendar date, including the
// boundary where a UTC evening is already the next day in Japan.
func TestSameCivilDay(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"utc evening equals next jst morning", "2024-03-01T23:30:00Z", "2024-03-02T00:10:00+09:00", true},
		{"utc afternoon is still previous jst day", "2024-03-01T14:59:00Z", "2024-03-02T00:00:00+09:00", false},
		{"jst midnight and jst 23:59", "2024-03-02T00:00:00+09:00", "2024-03-02T23:59:59+09:00", true},
		{"foreign offset normalized", "2024-03-01T10:00:00-05:00", "2024-03-02T05:00:00+09:00", true},
		{"different days", "2024-03-02T00:00:00+09:00", "2024-03-03T00:00:00+09:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SameCivilDay(mustParse(t, tt.a), mustParse(t, tt.b))
			if got != tt.want {
				t.Errorf("SameCivilDay(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestTomorrow verifies that the target day is JST midnight of the next JST date,
// including month rollover and a UTC instant that is already "tomorrow" in Japan.
func TestTomorrow(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want time.Time
	}{
		{"mid day", "2024-03-02T12:00:00+09:00", time.Date(2024, 3, 3, 0, 0, 0, 0, models.JST)},
		{"month end", "2024-02-29T23:59:00+09:00", time.Date(2024, 3, 1, 0, 0, 0, 0, models.JST)},
		{"utc evening", "2024-03-01T20:00:00Z", time.Date(2024, 3, 3, 0, 0, 0, 0, models.JST)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tomorrow(mustParse(t, tt.now))
			if !got.Equal(tt.want) {
				t.Errorf("Tomorrow(%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

// TestSnapshotStamp verifies the JST YYYYMMDDhhmmss rendering used in snapshot URLs.
func TestSnapshotStamp(t *testing.T) {
	got := SnapshotStamp(mustParse(t, "2023-02-07T13:20:00Z"))
	if got != "20230207222000" {
		t.Errorf("SnapshotStamp() = %q, want %q", got, "20230207222000")
	}
}

// TestParseLatestTime verifies trimming of the text body and ErrParseFailure on garbage.
func TestParseLatestTime(t *testing.T) {
	got, err := ParseLatestTime([]byte("2024-03-02T00:10:00+09:00\n"))
	if err != nil {
		t.Fatalf("ParseLatestTime() error = %v", err)
	}
	if HourJST(got) != 0 || got.Minute() != 10 {
		t.Errorf("ParseLatestTime() = %v, want 00:10 JST", got)
	}

	_, err = ParseLatestTime([]byte("<html>maintenance</html>"))
	if !errors.Is(err, ErrParseFailure) {
		t.Errorf("ParseLatestTime() error = %v, want ErrParseFailure", err)
	}
}

// TestParseForecastDocument_Errors verifies that malformed and empty documents are
// reported as ErrParseFailure.
func TestParseForecastDocument_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"object instead of array", `{"timeSeries":[]}`},
		{"empty array", `[]`},
		{"bad time define", `[{"timeSeries":[{"timeDefines":["yesterday"],"areas":[]}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseForecastDocument([]byte(tt.data))
			if !errors.Is(err, ErrParseFailure) {
				t.Errorf("ParseForecastDocument() error = %v, want ErrParseFailure", err)
			}
		})
	}
}

// TestForecastDocument_Series verifies bounds checking on the short-range group.
func TestForecastDocument_Series(t *testing.T) {
	doc, err := ParseForecastDocument([]byte(`[{"timeSeries":[{"timeDefines":[],"areas":[]}]}]`))
	if err != nil {
		t.Fatalf("ParseForecastDocument() error = %v", err)
	}
	if _, ok := doc.Series(SeriesWeather); !ok {
		t.Error("Series(SeriesWeather) ok = false, want true")
	}
	if _, ok := doc.Series(SeriesTemps); ok {
		t.Error("Series(SeriesTemps) ok = true, want false for missing block")
	}
}

// TestArea_MatchesCode verifies numeric comparison of upstream area codes.
func TestArea_MatchesCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"51106", true},
		{"051106", true},
		{" 51106 ", true},
		{"51107", false},
		{"", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := (Area{Code: tt.code}).MatchesCode(51106); got != tt.want {
			t.Errorf("MatchesCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

// TestSnapshot_Station verifies lookup by numeric station id and field mapping.
func TestSnapshot_Station(t *testing.T) {
	s, err := ParseSnapshot([]byte(`{"51106":{"temp":[21.3,0],"normalPressure":[1012.1,0],"wind":[null,5]}}`))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	o, ok := s.Station(51106)
	if !ok {
		t.Fatal("Station(51106) ok = false, want true")
	}
	rec := o.Record("2024/03/02 00:10:00")
	if len(rec.Temperature) != 2 || *rec.Temperature[0] != 21.3 {
		t.Errorf("Temperature = %v, want [21.3 0]", rec.Temperature)
	}
	if len(rec.SeaLevelPressure) != 2 || *rec.SeaLevelPressure[0] != 1012.1 {
		t.Errorf("SeaLevelPressure = %v, want [1012.1 0]", rec.SeaLevelPressure)
	}
	if len(rec.WindSpeed) != 2 || rec.WindSpeed[0] != nil {
		t.Errorf("WindSpeed = %v, want leading null kept", rec.WindSpeed)
	}
	if _, ok := s.Station(99999); ok {
		t.Error("Station(99999) ok = true, want false")
	}
}

// TestSnapshot_NullStation verifies a station present with a null entry is reported as absent.
func TestSnapshot_NullStation(t *testing.T) {
	s, err := ParseSnapshot([]byte(`{"51106":null,"51216":{"temp":[9.9,0]}}`))
	if err != nil {
		t.Fatalf("ParseSnapshot() error = %v", err)
	}
	if _, ok := s.Station(51106); ok {
		t.Error("Station(51106) ok = true for null entry, want false")
	}
	if _, ok := s.Station(51216); !ok {
		t.Error("Station(51216) ok = false, want true")
	}
}
