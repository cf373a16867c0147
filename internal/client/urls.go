package client

import (
	"strconv"
	"strings"
)

// DefaultBaseURL is the public JMA bosai root.
const DefaultBaseURL = "https://www.jma.go.jp/bosai"

// URLs builds JMA bosai resource URLs under a base URL.
type URLs struct {
	Base string
}

// NewURLs trims any trailing slash from base; an empty base selects DefaultBaseURL.
func NewURLs(base string) URLs {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return URLs{Base: base}
}

// LatestTime is the plain-text timestamp of the newest AMeDAS snapshot.
func (u URLs) LatestTime() string {
	return u.Base + "/amedas/data/latest_time.txt"
}

// Snapshot is the nationwide AMeDAS snapshot for a YYYYMMDDhhmmss stamp.
func (u URLs) Snapshot(stamp string) string {
	return u.Base + "/amedas/data/map/" + stamp + ".json"
}

// Forecast is the multi-day forecast document of an office.
func (u URLs) Forecast(officeCode int) string {
	return u.Base + "/forecast/data/forecast/" + strconv.Itoa(officeCode) + ".json"
}
