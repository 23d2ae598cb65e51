package model

import (
	"time"

	"github.com/driftwoodsurf/booking_server/internal/money"
)

type LessonStatus string

const (
	LessonStatusBooked                LessonStatus = "booked"
	LessonStatusCompleted             LessonStatus = "completed"
	LessonStatusCanceledWithRefund    LessonStatus = "canceled_with_refund"
	LessonStatusCanceledWithoutRefund LessonStatus = "canceled_without_refund"
)

// Session is the billable, calendar-bound record materialized when a
// booking request is approved. Its lifecycle is separate from the
// request's: a session can complete or be canceled with/without refund
// after the request itself is terminal.
type Session struct {
	ID           string       `json:"id"`
	ClientNames  []string     `json:"client_names"`
	SessionDate  time.Time    `json:"session_date"`  // date only
	SessionClock string       `json:"session_clock"` // "HH:MM:SS" on the booking grid
	SessionTime  time.Time    `json:"session_time"`  // date + clock combined
	GroupSize    int          `json:"group_size"`
	LessonStatus LessonStatus `json:"lesson_status"`
	PaidCents    money.Cents  `json:"paid_cents"`
	TipCents     money.Cents  `json:"tip_cents"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Occupies reports whether the session blocks its (date, slot) pair.
// Refunded or soft-deleted sessions do not hold inventory.
func (s *Session) Occupies() bool {
	if s.DeletedAt != nil {
		return false
	}
	return s.LessonStatus == LessonStatusBooked || s.LessonStatus == LessonStatusCompleted
}

// SessionDraft carries the fields the approve transition needs to
// materialize a Session; ids and timestamps are store-assigned.
type SessionDraft struct {
	ClientNames  []string
	SessionDate  time.Time
	SessionClock string
	SessionTime  time.Time
	GroupSize    int
}
