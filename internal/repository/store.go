// Package repository defines the persistence boundary. The lifecycle and
// the admin surface see only these interfaces; the postgres and memory
// packages provide the implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
)

var (
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotUnavailable marks a reservation that lost the availability
	// race or targets a blacked-out date.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrStorageUnavailable marks an infrastructure failure. Always
	// retryable by the caller; the core does not retry internally.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DecideParams carries a lifecycle decision into the store. For approve,
// SelectedClock and Session must both be set; deny and cancel ignore them.
type DecideParams struct {
	Action        lifecycle.Action
	SelectedClock *string
	Session       *model.SessionDraft
}

// RequestStore persists booking requests. Decide is the only path that
// changes status or the approved-session link, and it must be atomic:
// the legality check, the status compare-and-swap, the slot reservation
// and the session insert all commit together or not at all.
type RequestStore interface {
	Create(ctx context.Context, input model.CreateRequestInput) (*model.BookingRequest, error)
	Get(ctx context.Context, id string) (*model.BookingRequest, error)
	Update(ctx context.Context, id string, patch *model.RequestPatch) (*model.BookingRequest, error)
	List(ctx context.Context, filter model.ListFilter) ([]*model.BookingRequest, error)
	Decide(ctx context.Context, id string, params DecideParams) (*model.BookingRequest, *model.Session, error)
}

// SessionStore persists materialized sessions. Sessions are created only
// through RequestStore.Decide; this interface covers their later life.
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	ListRange(ctx context.Context, from, to time.Time) ([]*model.Session, error)
	UpdateLessonStatus(ctx context.Context, id string, status model.LessonStatus) (*model.Session, error)
	UpdatePayment(ctx context.Context, id string, paid, tip money.Cents) (*model.Session, error)
	SoftDelete(ctx context.Context, id string) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// AvailabilityLedger answers whether a (date, slot) pair is bookable and
// performs the side-effecting reservation used during approval. Every
// occupancy mutation goes through Reserve/Release, never direct writes.
type AvailabilityLedger interface {
	IsAvailable(ctx context.Context, date time.Time, clock string) (bool, error)
	Reserve(ctx context.Context, date time.Time, clock string) error
	// Release frees a slot. Idempotent: releasing a free slot is a no-op.
	Release(ctx context.Context, date time.Time, clock string) error
}

// BlackoutSource supplies closed dates. The data is owned by an external
// calendar-rule collaborator; the ledger only consults it.
type BlackoutSource interface {
	Contains(ctx context.Context, date time.Time) (bool, error)
}

// ExpenseStore persists finance-side expenses and their receipts.
type ExpenseStore interface {
	Create(ctx context.Context, expense *model.Expense) error
	Get(ctx context.Context, id string) (*model.Expense, error)
	List(ctx context.Context) ([]*model.Expense, error)
	AttachReceipt(ctx context.Context, receipt *model.Receipt) error
	SoftDelete(ctx context.Context, id string) error
}
