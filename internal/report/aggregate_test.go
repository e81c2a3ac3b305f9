package report

import (
	"testing"
	"time"
)

func TestAggregateDaysSingleEvent(t *testing.T) {
	rows, err := aggregateDays([]Event{
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
	}, MinCheckoutTime)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.FirstSeen != row.LastSeen {
		t.Errorf("single event: FirstSeen %s != LastSeen %s", row.FirstSeen, row.LastSeen)
	}
	if row.HasCheckout {
		t.Error("single event must not count as checkout")
	}
	if row.DurationHours != 0 {
		t.Errorf("DurationHours = %v, want 0", row.DurationHours)
	}
}

func TestAggregateDaysCheckoutBoundary(t *testing.T) {
	tests := []struct {
		name         string
		last         string
		wantCheckout bool
		wantHours    float64
	}{
		{"under threshold", "2024-09-03T09:29:59.000", false, 0},
		{"exactly threshold", "2024-09-03T09:30:00.000", true, 0.5},
		{"over threshold", "2024-09-03T09:45:00.000", true, 0.75},
	}
	for _, tt := range tests {
		rows, err := aggregateDays([]Event{
			{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
			{Timestamp: tt.last, IDNumber: "111111111"},
		}, MinCheckoutTime)
		if err != nil {
			t.Fatal(err)
		}
		row := rows[0]
		if row.HasCheckout != tt.wantCheckout {
			t.Errorf("%s: HasCheckout = %v, want %v", tt.name, row.HasCheckout, tt.wantCheckout)
		}
		if row.DurationHours != tt.wantHours {
			t.Errorf("%s: DurationHours = %v, want %v", tt.name, row.DurationHours, tt.wantHours)
		}
		if row.DurationHours < 0 {
			t.Errorf("%s: negative duration", tt.name)
		}
	}
}

func TestAggregateDaysGroupsByDayAndStudent(t *testing.T) {
	events := []Event{
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T12:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T09:10:00.000", IDNumber: "222222222"},
		{Timestamp: "2024-09-04T09:00:00.000", IDNumber: "111111111"},
	}
	rows, err := aggregateDays(events, MinCheckoutTime)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Sorted by (date, id).
	want := []struct {
		date, id string
	}{
		{"2024-09-03", "111111111"},
		{"2024-09-03", "222222222"},
		{"2024-09-04", "111111111"},
	}
	for i, w := range want {
		if rows[i].Date != w.date || rows[i].IDNumber != w.id {
			t.Errorf("row %d = (%s, %s), want (%s, %s)", i, rows[i].Date, rows[i].IDNumber, w.date, w.id)
		}
	}
	if !rows[0].HasCheckout {
		t.Error("three-hour day should have a checkout")
	}
	if rows[2].HasCheckout {
		t.Error("events on different days must not combine into a checkout")
	}
}

func TestAggregateDaysUnorderedInput(t *testing.T) {
	rows, err := aggregateDays([]Event{
		{Timestamp: "2024-09-03T12:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T10:30:00.000", IDNumber: "111111111"},
	}, MinCheckoutTime)
	if err != nil {
		t.Fatal(err)
	}
	row := rows[0]
	if row.FirstSeen != "2024-09-03T09:00:00.000" || row.LastSeen != "2024-09-03T12:00:00.000" {
		t.Errorf("first/last = %s/%s", row.FirstSeen, row.LastSeen)
	}
	if row.DurationHours != 3 {
		t.Errorf("DurationHours = %v, want 3", row.DurationHours)
	}
}

func TestAggregateDaysCustomMinCheckout(t *testing.T) {
	events := []Event{
		{Timestamp: "2024-09-03T09:00:00.000", IDNumber: "111111111"},
		{Timestamp: "2024-09-03T09:01:00.000", IDNumber: "111111111"},
	}
	rows, err := aggregateDays(events, 60*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !rows[0].HasCheckout {
		t.Error("60s gap with 60s policy should count as checkout")
	}
}

func TestAggregateDaysMalformedTimestamp(t *testing.T) {
	_, err := aggregateDays([]Event{{Timestamp: "garbage", IDNumber: "111111111"}}, MinCheckoutTime)
	if err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestMeetingDaysThresholdBoundary(t *testing.T) {
	days := []DayAttendance{
		{Date: "2024-09-03", IDNumber: "111111111"},
		{Date: "2024-09-03", IDNumber: "222222222"},
		{Date: "2024-09-04", IDNumber: "111111111"},
	}

	// Exactly at threshold qualifies, one short does not.
	q := meetingDays(days, 2)
	if !q["2024-09-03"] {
		t.Error("day with exactly threshold attendees must qualify")
	}
	if q["2024-09-04"] {
		t.Error("day below threshold must not qualify")
	}

	// Threshold 1: every active day is a meeting.
	q = meetingDays(days, 1)
	if len(q) != 2 {
		t.Errorf("threshold 1: got %d qualifying days, want 2", len(q))
	}

	// Threshold 3: nothing qualifies.
	q = meetingDays(days, 3)
	if len(q) != 0 {
		t.Errorf("threshold 3: got %d qualifying days, want 0", len(q))
	}
}
