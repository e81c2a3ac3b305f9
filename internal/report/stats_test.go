package report

import (
	"errors"
	"testing"
)

func TestStatsForDateEmptyDay(t *testing.T) {
	eng := newTestEngine(nil, nil)
	stats, err := eng.StatsForDate(ctx, "2024-09-03")
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumCheckins != 0 || stats.NumCheckouts != 0 || stats.CheckoutRatePercent != 0 {
		t.Errorf("empty day stats = %+v, want zeros", stats)
	}
}

func TestStatsForDateCountsDistinctStudents(t *testing.T) {
	eng := newTestEngine([]Event{
		// One student with a checkout-length day, three swipes.
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T09:30:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T10:00:00.000", IDNumber: "111111111"},
		// One student with a single swipe.
		{Timestamp: "2024-09-03T09:15:00.000", IDNumber: "222222222"},
		// Another day entirely.
		{Timestamp: "2024-09-04T09:00:00.000", IDNumber: "333333333"},
	}, nil)

	stats, err := eng.StatsForDate(ctx, "2024-09-03")
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumCheckins != 2 {
		t.Errorf("NumCheckins = %d, want 2 (distinct students, not swipes)", stats.NumCheckins)
	}
	if stats.NumCheckouts != 1 {
		t.Errorf("NumCheckouts = %d, want 1", stats.NumCheckouts)
	}
	if stats.CheckoutRatePercent != 50 {
		t.Errorf("CheckoutRatePercent = %v, want 50", stats.CheckoutRatePercent)
	}
}

func TestStatsForDateIgnoresThreshold(t *testing.T) {
	// Stats report raw daily activity even for days no report would
	// classify as a meeting.
	eng := newTestEngine([]Event{
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
	}, nil)
	stats, err := eng.StatsForDate(ctx, "2024-09-03")
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumCheckins != 1 {
		t.Errorf("NumCheckins = %d, want 1", stats.NumCheckins)
	}
}

func TestStatsForDateInvalidDate(t *testing.T) {
	eng := newTestEngine(nil, nil)
	_, err := eng.StatsForDate(ctx, "not-a-date")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestIsMeetingDate(t *testing.T) {
	eng := newTestEngine([]Event{
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T09:01:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T09:02:00.000", IDNumber: "222222222"},
	}, nil)

	tests := []struct {
		threshold int
		want      bool
	}{
		{1, true},
		{2, true},
		{3, false},
	}
	for _, tt := range tests {
		got, err := eng.IsMeetingDate(ctx, "2024-09-03", tt.threshold)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("IsMeetingDate(threshold=%d) = %v, want %v", tt.threshold, got, tt.want)
		}
	}

	got, err := eng.IsMeetingDate(ctx, "2024-09-04", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("day with no events classified as meeting")
	}
}
