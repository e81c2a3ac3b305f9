package checkin

import (
	"context"
	"errors"
	"log"
	"time"

	"attendance/internal/queue"
	"attendance/internal/timeutil"
)

// ErrInvalidIDNumber rejects a scan that is not a 9- or 13-digit id.
var ErrInvalidIDNumber = errors.New("id number must be 9 or 13 digits")

// Checkin is one accepted scan.
type Checkin struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	IDNumber  string `json:"id_number"`
}

// Service validates scans, stamps them with the local-normalized
// timestamp, appends them to the log, and notifies the worker.
type Service struct {
	repo *Repository
	q    queue.Queue
	now  func() time.Time
}

// NewService creates a service backed by a repository. q may be nil
// when no worker is attached (tests, one-shot tools).
func NewService(repo *Repository, q queue.Queue) *Service {
	return &Service{repo: repo, q: q, now: time.Now}
}

// RecordCheckin appends one scan. Scans are append-only; repeated
// scans on the same day are what the checkout inference feeds on, so
// there is no deduplication here.
func (s *Service) RecordCheckin(ctx context.Context, idNumber string) (Checkin, error) {
	if !ValidIDNumber(idNumber) {
		return Checkin{}, ErrInvalidIDNumber
	}
	ts := timeutil.Timestamp(s.now())
	id, err := s.repo.InsertCheckin(ctx, ts, idNumber)
	if err != nil {
		return Checkin{}, err
	}
	checkinsRecorded.Inc()

	if s.q != nil {
		msg := queue.Message{Type: "checkin", Body: []byte(ts[:len(timeutil.DateLayout)])}
		if err := s.q.Publish(ctx, msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}
	return Checkin{ID: id, Timestamp: ts, IDNumber: idNumber}, nil
}

// RegisterKiosk validates and persists kiosk metadata.
func (s *Service) RegisterKiosk(ctx context.Context, kioskID string) error {
	if kioskID == "" {
		return errors.New("kiosk id required")
	}
	return s.repo.RegisterKiosk(ctx, kioskID, timeutil.Timestamp(s.now()))
}

// UpsertStudent updates the roster used to enrich reports.
func (s *Service) UpsertStudent(ctx context.Context, idNumber, firstName, lastName string) error {
	if !ValidIDNumber(idNumber) {
		return ErrInvalidIDNumber
	}
	return s.repo.UpsertStudent(ctx, idNumber, firstName, lastName)
}

// ValidIDNumber reports whether a scanned value looks like a student
// id: all digits, length 9 or 13 (OSIS number or barcode form).
func ValidIDNumber(id string) bool {
	if len(id) != 9 && len(id) != 13 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
