package model

import (
	"strings"
	"time"

	"github.com/driftwoodsurf/booking_server/internal/money"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusDenied   RequestStatus = "denied"
	RequestStatusCanceled RequestStatus = "canceled"
)

// Customer is the contact block captured at intake
type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type BookingRequest struct {
	ID                  string        `json:"id"`
	Customer            Customer      `json:"customer"`
	PartySize           int           `json:"party_size"`
	PartyNames          []string      `json:"party_names"`
	LessonTypeID        string        `json:"lesson_type_id"`
	RequestedDate       time.Time     `json:"requested_date"`       // date only, midnight wall clock
	RequestedTimeLabels []string      `json:"requested_time_labels"` // candidate labels from intake, display order
	SelectedTimeSlot    *string       `json:"selected_time_slot"`    // "HH:MM:SS", set by an admin
	Notes               string        `json:"notes"`
	Status              RequestStatus `json:"status"`
	ManualPricing       bool          `json:"manual_pricing"`
	BillTotalCents      *money.Cents  `json:"bill_total_cents"` // nil means "use catalog default"
	AmountPaidCents     money.Cents   `json:"amount_paid_cents"`
	ApprovedSessionID   *string       `json:"approved_session_id"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// IsPending checks if the request still awaits a decision
func (r *BookingRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsTerminal checks if the request has received its decision
func (r *BookingRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved ||
		r.Status == RequestStatusDenied ||
		r.Status == RequestStatusCanceled
}

// CreateRequestInput is the intake draft. Status is never accepted from
// the caller; create forces pending.
type CreateRequestInput struct {
	Customer            Customer  `json:"customer" validate:"required"`
	PartySize           int       `json:"party_size" validate:"required,min=1"`
	PartyNames          []string  `json:"party_names" validate:"omitempty,unique,dive,required"`
	LessonTypeID        string    `json:"lesson_type_id" validate:"required"`
	RequestedDate       time.Time `json:"requested_date" validate:"required"`
	RequestedTimeLabels []string  `json:"requested_time_labels" validate:"required,min=1,unique,dive,required"`
	Notes               string    `json:"notes"`
}

// ListFilter narrows an admin listing. Zero value means pending-only,
// the default review queue.
type ListFilter struct {
	Statuses  []RequestStatus // empty = pending only
	AllStates bool            // "show all" toggle, overrides Statuses
	DateFrom  *time.Time
	DateTo    *time.Time
	NameQuery string // case-insensitive substring on customer name
}

// Matches reports whether a request passes the filter. Ordering is the
// caller's concern; storage gives no guarantee.
func (f ListFilter) Matches(r *BookingRequest) bool {
	if !f.AllStates {
		statuses := f.Statuses
		if len(statuses) == 0 {
			statuses = []RequestStatus{RequestStatusPending}
		}
		found := false
		for _, s := range statuses {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DateFrom != nil && r.RequestedDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.RequestedDate.After(*f.DateTo) {
		return false
	}
	if f.NameQuery != "" && !containsFold(r.Customer.Name, f.NameQuery) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
