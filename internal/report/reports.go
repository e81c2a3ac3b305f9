package report

import (
	"context"
	"sort"
)

// AttendanceRow is one student's aggregate over the qualifying
// meeting days of a range.
type AttendanceRow struct {
	IDNumber              string
	FirstName             string
	LastName              string
	NumCheckins           int
	AttendanceRatePercent float64
	NumCheckouts          int
	CheckoutRatePercent   float64
	TotalHours            float64
	AverageHours          float64
}

// AttendanceReport is the per-student projection over a range.
type AttendanceReport struct {
	Range         Range
	Threshold     int
	TotalMeetings int
	Rows          []AttendanceRow
}

// MeetingRow summarizes one qualifying meeting day.
type MeetingRow struct {
	Date                string
	NumCheckins         int
	NumCheckouts        int
	CheckoutRatePercent float64
}

// MeetingReport lists the days that met the threshold, date ascending.
// Days below threshold are omitted entirely, not annotated.
type MeetingReport struct {
	Range     Range
	Threshold int
	Rows      []MeetingRow
}

// CheckinRow is one (meeting day, student) detail record.
type CheckinRow struct {
	Date         string
	IDNumber     string
	FirstName    string
	LastName     string
	CheckinTime  string
	CheckoutTime string
	TotalHours   float64
}

// CheckinDetail is the per-swipe-day detail projection, ordered by
// check-in time ascending.
type CheckinDetail struct {
	Range     Range
	Threshold int
	Rows      []CheckinRow
}

// AttendanceReport builds the per-student report: check-in and
// checkout counts over qualifying days, attendance and checkout
// rates, and hours. Rows are ordered by NumCheckins descending with
// id number as the tie break.
func (e *Engine) AttendanceReport(ctx context.Context, r Range, threshold int) (*AttendanceReport, error) {
	days, qualifying, err := e.meetingDayAttendance(ctx, r, threshold)
	if err != nil {
		return nil, err
	}
	totalMeetings := len(qualifying)

	type acc struct {
		checkins  int
		checkouts int
		hours     float64
	}
	byStudent := make(map[string]*acc)
	for _, day := range days {
		if !qualifying[day.Date] {
			continue
		}
		a, ok := byStudent[day.IDNumber]
		if !ok {
			a = &acc{}
			byStudent[day.IDNumber] = a
		}
		a.checkins++
		if day.HasCheckout {
			a.checkouts++
			a.hours += day.DurationHours
		}
	}

	rows := make([]AttendanceRow, 0, len(byStudent))
	for id, a := range byStudent {
		st, err := e.lookupStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		row := AttendanceRow{
			IDNumber:     id,
			FirstName:    st.FirstName,
			LastName:     st.LastName,
			NumCheckins:  a.checkins,
			NumCheckouts: a.checkouts,
			TotalHours:   a.hours,
		}
		// A row only exists when the student attended at least one
		// qualifying day, so totalMeetings >= 1 here; the guard keeps
		// the arithmetic total anyway.
		if totalMeetings > 0 {
			row.AttendanceRatePercent = float64(a.checkins) / float64(totalMeetings) * 100
		}
		row.CheckoutRatePercent = float64(a.checkouts) / float64(a.checkins) * 100
		if a.checkouts > 0 {
			row.AverageHours = a.hours / float64(a.checkouts)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NumCheckins != rows[j].NumCheckins {
			return rows[i].NumCheckins > rows[j].NumCheckins
		}
		return rows[i].IDNumber < rows[j].IDNumber
	})

	return &AttendanceReport{Range: r, Threshold: threshold, TotalMeetings: totalMeetings, Rows: rows}, nil
}

// MeetingReport builds the per-day report over qualifying days only.
func (e *Engine) MeetingReport(ctx context.Context, r Range, threshold int) (*MeetingReport, error) {
	days, qualifying, err := e.meetingDayAttendance(ctx, r, threshold)
	if err != nil {
		return nil, err
	}

	type acc struct {
		checkins  int
		checkouts int
	}
	byDate := make(map[string]*acc)
	for _, day := range days {
		if !qualifying[day.Date] {
			continue
		}
		a, ok := byDate[day.Date]
		if !ok {
			a = &acc{}
			byDate[day.Date] = a
		}
		a.checkins++
		if day.HasCheckout {
			a.checkouts++
		}
	}

	rows := make([]MeetingRow, 0, len(byDate))
	for date, a := range byDate {
		rows = append(rows, MeetingRow{
			Date:                date,
			NumCheckins:         a.checkins,
			NumCheckouts:        a.checkouts,
			CheckoutRatePercent: float64(a.checkouts) / float64(a.checkins) * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	return &MeetingReport{Range: r, Threshold: threshold, Rows: rows}, nil
}

// CheckinDetail builds the per-(day, student) detail rows for
// qualifying days. CheckoutTime is empty when the day has no
// checkout.
func (e *Engine) CheckinDetail(ctx context.Context, r Range, threshold int) (*CheckinDetail, error) {
	days, qualifying, err := e.meetingDayAttendance(ctx, r, threshold)
	if err != nil {
		return nil, err
	}

	rows := make([]CheckinRow, 0, len(days))
	names := make(map[string]Student)
	for _, day := range days {
		if !qualifying[day.Date] {
			continue
		}
		st, ok := names[day.IDNumber]
		if !ok {
			st, err = e.lookupStudent(ctx, day.IDNumber)
			if err != nil {
				return nil, err
			}
			names[day.IDNumber] = st
		}
		row := CheckinRow{
			Date:        day.Date,
			IDNumber:    day.IDNumber,
			FirstName:   st.FirstName,
			LastName:    st.LastName,
			CheckinTime: day.FirstSeen,
		}
		if day.HasCheckout {
			row.CheckoutTime = day.LastSeen
			row.TotalHours = day.DurationHours
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CheckinTime != rows[j].CheckinTime {
			return rows[i].CheckinTime < rows[j].CheckinTime
		}
		return rows[i].IDNumber < rows[j].IDNumber
	})

	return &CheckinDetail{Range: r, Threshold: threshold, Rows: rows}, nil
}

// meetingDayAttendance is the shared first two passes of every
// builder: validate, fetch, aggregate per (day, student), classify
// meeting days.
func (e *Engine) meetingDayAttendance(ctx context.Context, r Range, threshold int) ([]DayAttendance, map[string]bool, error) {
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, nil, err
	}
	events, err := e.eventsInRange(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	days, err := aggregateDays(events, e.minCheckout)
	if err != nil {
		return nil, nil, &StoreError{Op: "aggregate", Err: err}
	}
	return days, meetingDays(days, threshold), nil
}
