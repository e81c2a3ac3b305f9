package report

import (
	"fmt"
	"sort"
	"time"
)

// DayAttendance is one student's presence on one calendar day:
// first/last swipe, whether the gap between them counts as a
// checkout, and the resulting duration. Computed fresh per query,
// never persisted.
type DayAttendance struct {
	Date          string
	IDNumber      string
	FirstSeen     string
	LastSeen      string
	HasCheckout   bool
	DurationHours float64
}

// aggregateDays groups events into one DayAttendance row per
// (date, idNumber) pair. A single-swipe day has FirstSeen == LastSeen,
// no checkout, and duration 0. Rows come back sorted by (date,
// idNumber) for deterministic downstream output.
func aggregateDays(events []Event, minCheckout time.Duration) ([]DayAttendance, error) {
	type key struct{ date, id string }
	byDay := make(map[key]*DayAttendance)
	for _, evt := range events {
		k := key{evt.Date(), evt.IDNumber}
		row, ok := byDay[k]
		if !ok {
			byDay[k] = &DayAttendance{
				Date:      k.date,
				IDNumber:  k.id,
				FirstSeen: evt.Timestamp,
				LastSeen:  evt.Timestamp,
			}
			continue
		}
		// Timestamps sort lexicographically, so min/max is a string
		// comparison.
		if evt.Timestamp < row.FirstSeen {
			row.FirstSeen = evt.Timestamp
		}
		if evt.Timestamp > row.LastSeen {
			row.LastSeen = evt.Timestamp
		}
	}

	rows := make([]DayAttendance, 0, len(byDay))
	for _, row := range byDay {
		first, err := epochSeconds(row.FirstSeen)
		if err != nil {
			return nil, err
		}
		last, err := epochSeconds(row.LastSeen)
		if err != nil {
			return nil, err
		}
		gap := last - first
		if gap >= int64(minCheckout/time.Second) {
			row.HasCheckout = true
			row.DurationHours = float64(gap) / 3600.0
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].IDNumber < rows[j].IDNumber
	})
	return rows, nil
}

// epochSeconds converts a stored timestamp to unix seconds. Sub-second
// precision is deliberately dropped so durations match whole-second
// arithmetic on the stored strings.
func epochSeconds(ts string) (int64, error) {
	const secondsLayout = "2006-01-02T15:04:05"
	if len(ts) < len(secondsLayout) {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	t, err := time.ParseInLocation(secondsLayout, ts[:len(secondsLayout)], time.Local)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q: %w", ts, err)
	}
	return t.Unix(), nil
}

// meetingDays returns the calendar days whose distinct-attendee count
// meets the threshold. With threshold 1 every day with any activity
// qualifies. Membership is re-evaluated per query; it shifts if new
// events land for a day.
func meetingDays(days []DayAttendance, threshold int) map[string]bool {
	attendees := make(map[string]int)
	for _, row := range days {
		attendees[row.Date]++
	}
	qualifying := make(map[string]bool)
	for date, n := range attendees {
		if n >= threshold {
			qualifying[date] = true
		}
	}
	return qualifying
}
