package report

import (
	"context"
	"errors"
	"sort"
	"testing"
)

// memStore is an in-memory EventStore for tests.
type memStore struct {
	events []Event
	err    error
}

func (m *memStore) EventsInRange(ctx context.Context, start, end string) ([]Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Event
	for _, e := range m.events {
		if d := e.Date(); d >= start && d <= end {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (m *memStore) CountDistinctAttendees(ctx context.Context, date string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	seen := make(map[string]bool)
	for _, e := range m.events {
		if e.Date() == date {
			seen[e.IDNumber] = true
		}
	}
	return len(seen), nil
}

// memDirectory is an in-memory StudentDirectory for tests.
type memDirectory map[string]Student

func (m memDirectory) LookupStudent(ctx context.Context, idNumber string) (*Student, error) {
	if st, ok := m[idNumber]; ok {
		return &st, nil
	}
	return nil, nil
}

func newTestEngine(events []Event, students memDirectory) *Engine {
	return NewEngine(&memStore{events: events}, students, 0)
}

func TestRangeValidate(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{"valid", Range{"2024-09-01", "2024-09-30"}, false},
		{"same day", Range{"2024-09-03", "2024-09-03"}, false},
		{"inverted", Range{"2024-09-30", "2024-09-01"}, true},
		{"bad start", Range{"09/01/2024", "2024-09-30"}, true},
		{"bad end", Range{"2024-09-01", "tomorrow"}, true},
		{"empty", Range{"", ""}, true},
	}
	for _, tt := range tests {
		err := tt.r.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("%s: error is %T, want *ValidationError", tt.name, err)
			}
		}
	}
}

func TestInvalidRangeRejectedBeforeQuery(t *testing.T) {
	st := &memStore{err: errors.New("store must not be reached")}
	eng := NewEngine(st, nil, 0)

	_, err := eng.AttendanceReport(context.Background(), Range{"2024-09-30", "2024-09-01"}, 1)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestThresholdValidation(t *testing.T) {
	eng := newTestEngine(nil, nil)
	for _, threshold := range []int{0, -1} {
		_, err := eng.MeetingReport(context.Background(), Range{"2024-09-01", "2024-09-30"}, threshold)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("threshold %d: got %v, want ValidationError", threshold, err)
		}
	}
}

func TestStoreErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	eng := NewEngine(&memStore{err: cause}, nil, 0)

	_, err := eng.CheckinDetail(context.Background(), Range{"2024-09-01", "2024-09-30"}, 1)
	var serr *StoreError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want StoreError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not reachable through Unwrap: %v", err)
	}
}

func TestEngineDefaultsMinCheckout(t *testing.T) {
	eng := NewEngine(&memStore{}, nil, 0)
	if eng.minCheckout != MinCheckoutTime {
		t.Errorf("minCheckout = %v, want %v", eng.minCheckout, MinCheckoutTime)
	}
}
