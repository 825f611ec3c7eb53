package massimport

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order; the first that parses wins. Day-first forms
// come before month-first so "05/01/2026" is the 5th of January.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05Z07:00",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"1/2/2006",
}

const (
	minSpreadsheetSerial = 1
	maxSpreadsheetSerial = 2958465 // 9999-12-31
)

// spreadsheetEpoch is day zero of the 1900 date system, shifted for the
// phantom 1900-02-29.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a raw cell value into a calendar date. The result is
// midnight UTC of that calendar day. Values carrying a zone are first moved
// into loc.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		return calendarDate(t.In(loc)), true
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		whole := math.Floor(serial)
		if whole >= minSpreadsheetSerial && whole <= maxSpreadsheetSerial {
			return spreadsheetEpoch.AddDate(0, 0, int(whole)), true
		}
	}
	return time.Time{}, false
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// today returns the current calendar day in loc, as midnight UTC.
func today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return calendarDate(now.In(loc))
}

// FormatDate renders a calendar date the way it is echoed in reports.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
