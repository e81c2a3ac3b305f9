// Package report turns the raw check-in log into meeting
// classification, per-student attendance statistics, and exportable
// CSV datasets. Everything in this package is a pure projection over
// the event store: nothing here writes, caches, or retries.
package report

import (
	"context"
	"fmt"
	"time"
)

const (
	// MinCheckoutTime is the gap between a student's first and last
	// swipe of a day required to count as a checkout.
	MinCheckoutTime = 1800 * time.Second

	// DefaultMeetingThreshold is the distinct-attendee count used by
	// automated report jobs.
	DefaultMeetingThreshold = 20
)

// Event is a single swipe as stored in the check-in log. Timestamp is
// a local-timezone ISO-8601 string, sortable lexicographically.
type Event struct {
	Timestamp string
	IDNumber  string
}

// Date returns the calendar-day component of the event timestamp.
func (e Event) Date() string {
	if len(e.Timestamp) < len(DateLayout) {
		return e.Timestamp
	}
	return e.Timestamp[:len(DateLayout)]
}

// Student is the roster enrichment for a scanned id. Unknown ids are
// not an error; reports fall back to empty names.
type Student struct {
	FirstName string
	LastName  string
}

// EventStore is the read side of the check-in log.
type EventStore interface {
	// EventsInRange returns all events whose date component falls in
	// [start, end], ordered by timestamp ascending.
	EventsInRange(ctx context.Context, start, end string) ([]Event, error)

	// CountDistinctAttendees returns the number of distinct id numbers
	// with at least one event on the given date.
	CountDistinctAttendees(ctx context.Context, date string) (int, error)
}

// StudentDirectory resolves id numbers to roster names.
type StudentDirectory interface {
	// LookupStudent returns nil (not an error) when the id is unknown.
	LookupStudent(ctx context.Context, idNumber string) (*Student, error)
}

// Engine produces the derived attendance datasets.
type Engine struct {
	store       EventStore
	students    StudentDirectory
	minCheckout time.Duration
}

// NewEngine creates an engine over the given store and directory.
// minCheckout <= 0 selects the standard 30-minute policy.
func NewEngine(store EventStore, students StudentDirectory, minCheckout time.Duration) *Engine {
	if minCheckout <= 0 {
		minCheckout = MinCheckoutTime
	}
	return &Engine{store: store, students: students, minCheckout: minCheckout}
}

// DateLayout is the calendar-day format used across the engine.
const DateLayout = "2006-01-02"

// Range selects events by calendar day, both ends inclusive.
type Range struct {
	Start string
	End   string
}

// Validate rejects malformed dates and inverted ranges before any
// store query runs.
func (r Range) Validate() error {
	for _, d := range []string{r.Start, r.End} {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", d)}
		}
	}
	// Lexical comparison is valid for the fixed YYYY-MM-DD format.
	if r.Start > r.End {
		return &ValidationError{Reason: fmt.Sprintf("start date %s after end date %s", r.Start, r.End)}
	}
	return nil
}

func validateThreshold(threshold int) error {
	if threshold < 1 {
		return &ValidationError{Reason: fmt.Sprintf("meeting threshold must be >= 1, got %d", threshold)}
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)}
	}
	return nil
}

// ValidationError reports a rejected query parameter.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid report query: " + e.Reason }

// StoreError wraps a failure from the underlying event store or
// student directory. The cause is reachable through errors.Unwrap.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// eventsInRange queries the store and wraps failures.
func (e *Engine) eventsInRange(ctx context.Context, r Range) ([]Event, error) {
	events, err := e.store.EventsInRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, &StoreError{Op: "events in range", Err: err}
	}
	return events, nil
}

// lookupStudent tolerates a nil directory and unknown ids; both yield
// empty names.
func (e *Engine) lookupStudent(ctx context.Context, idNumber string) (Student, error) {
	if e.students == nil {
		return Student{}, nil
	}
	st, err := e.students.LookupStudent(ctx, idNumber)
	if err != nil {
		return Student{}, &StoreError{Op: "student lookup", Err: err}
	}
	if st == nil {
		return Student{}, nil
	}
	return *st, nil
}
