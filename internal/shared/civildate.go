// Package shared holds small utilities used across domain packages.
package shared

import (
	"fmt"
	"time"
)

// Ulaanbaatar is the fixed UTC+8 offset used for all calendar bucketing.
// The business operates in a single timezone; a fixed zone keeps bucketing
// independent of the server's locale and of tzdata availability.
var Ulaanbaatar = time.FixedZone("Asia/Ulaanbaatar", 8*60*60)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CivilDate returns the calendar date containing t after shifting to UTC+8.
func CivilDate(t time.Time) string {
	return t.In(Ulaanbaatar).Format(DateLayout)
}

// DayBounds returns the half-open interval [start, end) covering the UTC+8
// civil day that contains t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(Ulaanbaatar)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Ulaanbaatar)
	return start, start.AddDate(0, 0, 1)
}

// RollingWindow returns the half-open interval covering today plus the
// previous days-1 civil days in UTC+8.
func RollingWindow(now time.Time, days int) (time.Time, time.Time) {
	start, end := DayBounds(now)
	if days > 1 {
		start = start.AddDate(0, 0, -(days - 1))
	}
	return start, end
}

// ParseDate parses a YYYY-MM-DD string as a UTC+8 civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Ulaanbaatar)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// RangeBounds converts an inclusive calendar date range into the half-open
// timestamp interval [start 00:00, end+1d 00:00) in UTC+8.
func RangeBounds(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}
	return start, end.AddDate(0, 0, 1), nil
}
