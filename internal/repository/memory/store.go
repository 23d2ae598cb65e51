// Package memory is the reference implementation of the persistence
// boundary. A single mutex covers requests, sessions, expenses and the
// slot occupancy set, so every operation is one atomic unit exactly as
// the postgres implementation achieves with a transaction.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

type Store struct {
	mu        sync.Mutex
	requests  map[string]*model.BookingRequest
	sessions  map[string]*model.Session
	expenses  map[string]*model.Expense
	slots     map[string]bool // slotKey -> occupied
	blackouts repository.BlackoutSource
}

// NewStore creates an empty store. The blackout source may be nil, in
// which case no date is ever blacked out.
func NewStore(blackouts repository.BlackoutSource) *Store {
	return &Store{
		requests:  make(map[string]*model.BookingRequest),
		sessions:  make(map[string]*model.Session),
		expenses:  make(map[string]*model.Expense),
		slots:     make(map[string]bool),
		blackouts: blackouts,
	}
}

// Requests returns the booking-request view of the store.
func (s *Store) Requests() repository.RequestStore {
	return &requestStore{s: s}
}

// Sessions returns the session view of the store.
func (s *Store) Sessions() repository.SessionStore {
	return &sessionStore{s: s}
}

// Expenses returns the expense view of the store.
func (s *Store) Expenses() repository.ExpenseStore {
	return &expenseStore{s: s}
}

// Ledger returns the availability view of the store.
func (s *Store) Ledger() repository.AvailabilityLedger {
	return s
}

func slotKey(date time.Time, clock string) string {
	return date.Format("2006-01-02") + " " + clock
}

// IsAvailable reports whether a (date, slot) pair is bookable: not
// blacked out and not occupied by a live session.
func (s *Store) IsAvailable(ctx context.Context, date time.Time, clock string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if blocked, err := s.blackedOut(ctx, date); err != nil {
		return false, err
	} else if blocked {
		return false, nil
	}
	return !s.slots[slotKey(date, clock)], nil
}

// Reserve marks a slot occupied. Exactly one of two concurrent Reserve
// calls for the same slot succeeds; the lock serializes them.
func (s *Store) Reserve(ctx context.Context, date time.Time, clock string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserveLocked(ctx, date, clock)
}

func (s *Store) reserveLocked(ctx context.Context, date time.Time, clock string) error {
	if blocked, err := s.blackedOut(ctx, date); err != nil {
		return err
	} else if blocked {
		return fmt.Errorf("date %s is blacked out: %w", date.Format("2006-01-02"), repository.ErrSlotUnavailable)
	}

	key := slotKey(date, clock)
	if s.slots[key] {
		return fmt.Errorf("slot %s: %w", key, repository.ErrSlotUnavailable)
	}
	s.slots[key] = true
	return nil
}

// Release frees a slot. Releasing an already-free slot is a no-op.
func (s *Store) Release(ctx context.Context, date time.Time, clock string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, slotKey(date, clock))
	return nil
}

func (s *Store) blackedOut(ctx context.Context, date time.Time) (bool, error) {
	if s.blackouts == nil {
		return false, nil
	}
	blocked, err := s.blackouts.Contains(ctx, date)
	if err != nil {
		return false, fmt.Errorf("consult blackout source: %w", err)
	}
	return blocked, nil
}

func copyRequest(r *model.BookingRequest) *model.BookingRequest {
	out := *r
	out.PartyNames = append([]string(nil), r.PartyNames...)
	out.RequestedTimeLabels = append([]string(nil), r.RequestedTimeLabels...)
	if r.SelectedTimeSlot != nil {
		v := *r.SelectedTimeSlot
		out.SelectedTimeSlot = &v
	}
	if r.BillTotalCents != nil {
		v := *r.BillTotalCents
		out.BillTotalCents = &v
	}
	if r.ApprovedSessionID != nil {
		v := *r.ApprovedSessionID
		out.ApprovedSessionID = &v
	}
	return &out
}

func copySession(s *model.Session) *model.Session {
	out := *s
	out.ClientNames = append([]string(nil), s.ClientNames...)
	if s.DeletedAt != nil {
		v := *s.DeletedAt
		out.DeletedAt = &v
	}
	return &out
}

func copyExpense(e *model.Expense) *model.Expense {
	out := *e
	out.Receipts = append([]model.Receipt(nil), e.Receipts...)
	if e.ParentExpenseID != nil {
		v := *e.ParentExpenseID
		out.ParentExpenseID = &v
	}
	if e.DeletedAt != nil {
		v := *e.DeletedAt
		out.DeletedAt = &v
	}
	return &out
}

var _ repository.AvailabilityLedger = (*Store)(nil)
