package report

import (
	"fmt"
	"strconv"
	"strings"
)

// CSV rendering for the three report datasets. Output is plain UTF-8
// text: header row first, comma-separated fields, no quoting (field
// values are numeric or simple names), percentages with two decimals
// and a literal % suffix, hours with two decimals.

// CSV renders the attendance report.
func (r *AttendanceReport) CSV() string {
	var b strings.Builder
	b.WriteString("id_number,first_name,last_name,num_checkins,attendance_rate_percent,num_checkouts,checkout_rate_percent,total_hours,average_hours\n")
	for _, row := range r.Rows {
		b.WriteString(row.IDNumber)
		b.WriteByte(',')
		b.WriteString(row.FirstName)
		b.WriteByte(',')
		b.WriteString(row.LastName)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(row.NumCheckins))
		b.WriteByte(',')
		b.WriteString(percent(row.AttendanceRatePercent))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(row.NumCheckouts))
		b.WriteByte(',')
		b.WriteString(percent(row.CheckoutRatePercent))
		b.WriteByte(',')
		b.WriteString(hours(row.TotalHours))
		b.WriteByte(',')
		b.WriteString(hours(row.AverageHours))
		b.WriteByte('\n')
	}
	return b.String()
}

// CSV renders the meeting report.
func (r *MeetingReport) CSV() string {
	var b strings.Builder
	b.WriteString("date,num_checkins,num_checkouts,checkout_rate_percent\n")
	for _, row := range r.Rows {
		b.WriteString(row.Date)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(row.NumCheckins))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(row.NumCheckouts))
		b.WriteByte(',')
		b.WriteString(percent(row.CheckoutRatePercent))
		b.WriteByte('\n')
	}
	return b.String()
}

// CSV renders the check-in detail dataset.
func (r *CheckinDetail) CSV() string {
	var b strings.Builder
	b.WriteString("date,id_number,first_name,last_name,checkin_time,checkout_time,total_hours\n")
	for _, row := range r.Rows {
		b.WriteString(row.Date)
		b.WriteByte(',')
		b.WriteString(row.IDNumber)
		b.WriteByte(',')
		b.WriteString(row.FirstName)
		b.WriteByte(',')
		b.WriteString(row.LastName)
		b.WriteByte(',')
		b.WriteString(row.CheckinTime)
		b.WriteByte(',')
		b.WriteString(row.CheckoutTime)
		b.WriteByte(',')
		b.WriteString(hours(row.TotalHours))
		b.WriteByte('\n')
	}
	return b.String()
}

func percent(v float64) string { return fmt.Sprintf("%.2f%%", v) }

func hours(v float64) string { return fmt.Sprintf("%.2f", v) }
