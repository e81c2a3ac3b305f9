package report

import "context"

// Stats is the live single-day summary shown on the kiosk: distinct
// students seen, how many of them checked out, and the checkout rate.
// It ignores the meeting threshold since it reports raw daily
// activity.
type Stats struct {
	NumCheckins         int     `json:"num_checkins"`
	NumCheckouts        int     `json:"num_checkouts"`
	CheckoutRatePercent float64 `json:"checkout_rate_percent"`
}

// StatsForDate computes the snapshot for one calendar day. A day with
// no events yields all zeros; the rate is zero-guarded.
func (e *Engine) StatsForDate(ctx context.Context, date string) (Stats, error) {
	if err := validateDate(date); err != nil {
		return Stats{}, err
	}
	events, err := e.eventsInRange(ctx, Range{Start: date, End: date})
	if err != nil {
		return Stats{}, err
	}
	days, err := aggregateDays(events, e.minCheckout)
	if err != nil {
		return Stats{}, &StoreError{Op: "aggregate", Err: err}
	}

	var stats Stats
	for _, day := range days {
		stats.NumCheckins++
		if day.HasCheckout {
			stats.NumCheckouts++
		}
	}
	if stats.NumCheckins > 0 {
		stats.CheckoutRatePercent = float64(stats.NumCheckouts) / float64(stats.NumCheckins) * 100
	}
	return stats, nil
}

// IsMeetingDate reports whether the day's distinct-attendee count
// meets the threshold. Used to decide whether a scheduled report run
// should fire at all.
func (e *Engine) IsMeetingDate(ctx context.Context, date string, threshold int) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	if err := validateThreshold(threshold); err != nil {
		return false, err
	}
	n, err := e.store.CountDistinctAttendees(ctx, date)
	if err != nil {
		return false, &StoreError{Op: "count attendees", Err: err}
	}
	return n >= threshold, nil
}
