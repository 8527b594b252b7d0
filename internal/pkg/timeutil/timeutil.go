// Package timeutil centralizes facility-local time handling. All day
// bucketing uses the mine's civil calendar (UTC+5, Asia/Tashkent), never the
// host timezone.
package timeutil

import (
	"fmt"
	"time"
)

// FacilityZone is the mine's fixed offset. The facility does not observe DST,
// so a fixed zone is equivalent to the IANA zone and needs no tzdata.
var FacilityZone = time.FixedZone("UTC+5", 5*60*60)

// CurrentLocalDay returns today's date formatted Y-M-D in the facility zone.
func CurrentLocalDay(now time.Time) string {
	return now.In(FacilityZone).Format("2006-01-02")
}

// LocalDayBounds returns [start, end) of the given day in the facility zone.
func LocalDayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(FacilityZone)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, FacilityZone)
	return start, start.AddDate(0, 0, 1)
}

// ParseLocalDay parses a YYYY-MM-DD string as a facility-local date.
func ParseLocalDay(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, FacilityZone)
}

// FormatMinutes renders integer minutes as "{h}h {m}m", truncating only.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
