package checkin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"attendance/internal/report"
	"attendance/internal/timeutil"
)

// Repository is the SQL adapter for the check-in log, the student
// roster, and kiosk registrations. It satisfies report.EventStore and
// report.StudentDirectory.
//
// The check-in table is append-only: nothing here updates or deletes
// events. Range queries compare the stored timestamp strings against
// calendar-day bounds computed in Go, so no database-specific date
// functions are involved.
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository creates a repo. driver selects the SQL placeholder
// style ("pgx" rebinds ? to $n).
func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// rebind converts ?-style placeholders to $n for Postgres.
func (r *Repository) rebind(query string) string {
	if r.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// InsertCheckin appends one scan to the log and returns the row id.
// The timestamp must already be local-normalized (timeutil.Timestamp).
func (r *Repository) InsertCheckin(ctx context.Context, timestamp, idNumber string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO checkin (id, timestamp, id_number)
		VALUES (?, ?, ?)
	`), id, timestamp, idNumber)
	if err != nil {
		return "", err
	}
	return id, nil
}

// EventsInRange returns all events whose date component falls in
// [start, end], ordered by timestamp. The inclusive day range becomes
// a half-open string range: "YYYY-MM-DD" sorts before any timestamp
// on that day, and the upper bound is the day after end.
func (r *Repository) EventsInRange(ctx context.Context, start, end string) ([]report.Event, error) {
	upper, err := timeutil.NextDay(end)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT timestamp, id_number
		FROM checkin
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp
	`), start, upper)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []report.Event
	for rows.Next() {
		var evt report.Event
		if err := rows.Scan(&evt.Timestamp, &evt.IDNumber); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// CountDistinctAttendees returns how many distinct id numbers have at
// least one event on the given date.
func (r *Repository) CountDistinctAttendees(ctx context.Context, date string) (int, error) {
	upper, err := timeutil.NextDay(date)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, r.rebind(`
		SELECT count(DISTINCT id_number)
		FROM checkin
		WHERE timestamp >= ? AND timestamp < ?
	`), date, upper).Scan(&n)
	return n, err
}

// LookupStudent returns nil when the id is not on the roster.
func (r *Repository) LookupStudent(ctx context.Context, idNumber string) (*report.Student, error) {
	var st report.Student
	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT first_name, last_name FROM student WHERE id_number = ?
	`), idNumber).Scan(&st.FirstName, &st.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpsertStudent creates or updates a roster entry.
func (r *Repository) UpsertStudent(ctx context.Context, idNumber, firstName, lastName string) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO student (id_number, first_name, last_name)
		VALUES (?, ?, ?)
		ON CONFLICT (id_number) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name
	`), idNumber, firstName, lastName)
	return err
}

// RegisterKiosk ensures a kiosk record exists.
func (r *Repository) RegisterKiosk(ctx context.Context, kioskID, createdAt string) error {
	_, err := r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO kiosk (kiosk_id, created_at)
		VALUES (?, ?)
		ON CONFLICT (kiosk_id) DO NOTHING
	`), kioskID, createdAt)
	return err
}
