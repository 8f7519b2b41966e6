package meter

import (
	"fmt"
	"strconv"
	"time"
)

// Window is a half-open UTC interval [StartMs, EndMs) covering either a
// calendar month or a full calendar year.
type Window struct {
	Year    int
	StartMs int64
	EndMs   int64
}

// ResolveWindow converts the optional year/month query selectors into a UTC
// window. An unparseable or empty year defaults to the current UTC year; a
// month outside 1..12 (or empty) widens the window to the whole year.
// time.Date normalizes month 13, so the year upper bound needs no special
// case.
func ResolveWindow(yearStr, monthStr string, now time.Time) Window {
	year := now.UTC().Year()
	if y, err := strconv.Atoi(yearStr); err == nil {
		year = y
	}

	month := 0
	if m, err := strconv.Atoi(monthStr); err == nil && m >= 1 && m <= 12 {
		month = m
	}

	var start, end time.Time
	if month == 0 {
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	}

	return Window{
		Year:    year,
		StartMs: start.UnixMilli(),
		EndMs:   end.UnixMilli(),
	}
}

// PeriodLabel formats the window start as the "YYYY-MM" key used for monthly
// aggregate rows.
func (w Window) PeriodLabel() string {
	t := time.UnixMilli(w.StartMs).UTC()
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// PeriodOf returns the "YYYY-MM" aggregate key for a reading timestamp.
func PeriodOf(timestampMs int64) string {
	t := time.UnixMilli(timestampMs).UTC()
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}
