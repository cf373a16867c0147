package jma

import (
	"time"

	"github.com/kjstillabower/jma-weather-collector/internal/models"
)

const snapshotStampLayout = "20060102150405"

// SameCivilDay reports whether a and b fall on the same calendar day in UTC+9,
// whatever zone either value carries.
func SameCivilDay(a, b time.Time) bool {
	ay, am, ad := a.In(models.JST).Date()
	by, bm, bd := b.In(models.JST).Date()
	return ay == by && am == bm && ad == bd
}

// Tomorrow returns JST midnight of the day after now's JST date.
func Tomorrow(now time.Time) time.Time {
	y, m, d := now.In(models.JST).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, models.JST)
}

// HourJST returns the hour of t on the JST clock.
func HourJST(t time.Time) int {
	return t.In(models.JST).Hour()
}

// SnapshotStamp renders t as the YYYYMMDDhhmmss name of an AMeDAS map snapshot.
func SnapshotStamp(t time.Time) string {
	return t.In(models.JST).Format(snapshotStampLayout)
}
