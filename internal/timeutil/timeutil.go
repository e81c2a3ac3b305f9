// Package timeutil is the single timezone-normalization boundary:
// every timestamp the system stores or compares is produced here, in
// the process's local timezone.
package timeutil

import (
	"fmt"
	"time"
)

// TimestampLayout matches the stored check-in timestamps: ISO-8601,
// millisecond precision, no zone suffix, lexicographically sortable.
const TimestampLayout = "2006-01-02T15:04:05.000"

// DateLayout is the calendar-day form of the same.
const DateLayout = "2006-01-02"

// Timestamp formats an instant as a local-time stored timestamp.
func Timestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// Today returns the current local calendar day.
func Today() string {
	return time.Now().Local().Format(DateLayout)
}

// Date returns the local calendar day of an instant.
func Date(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// SeasonStart returns the start of the current reporting season:
// September 1 once the school year has started, January 1 in the
// spring semester.
func SeasonStart(t time.Time) string {
	t = t.Local()
	month := "01"
	if t.Month() >= time.September {
		month = "09"
	}
	return fmt.Sprintf("%04d-%s-01", t.Year(), month)
}

// NextDay returns the calendar day after the given date. Used to turn
// an inclusive day range into a half-open timestamp range.
func NextDay(date string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format(DateLayout), nil
}

// CSVFilename builds a timestamped export filename,
// prefix-YYYYMMDDHHMMSS.csv.
func CSVFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, t.Local().Format("20060102150405"))
}
