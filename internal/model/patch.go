package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/driftwoodsurf/booking_server/internal/money"
	"github.com/driftwoodsurf/booking_server/internal/timelabel"
)

// RequestPatch is the restricted field set an admin edit may touch.
// Status and the approved session link are deliberately absent; they
// change only through the decision path. Nil fields mean "leave as is".
type RequestPatch struct {
	CustomerName        *string      `json:"customer_name"`
	CustomerEmail       *string      `json:"customer_email"`
	CustomerPhone       *string      `json:"customer_phone"`
	PartySize           *int         `json:"party_size"`
	PartyNames          *[]string    `json:"party_names"`
	LessonTypeID        *string      `json:"lesson_type_id"`
	RequestedDate       *time.Time   `json:"requested_date"`
	RequestedTimeLabels *[]string    `json:"requested_time_labels"`
	SelectedTimeLabel   *string      `json:"selected_time_label"`
	Notes               *string      `json:"notes"`
	ManualPricing       *bool        `json:"manual_pricing"`
	BillTotalCents      *money.Cents `json:"bill_total_cents"`
	AmountPaidCents     *money.Cents `json:"amount_paid_cents"`
}

// protectedPatchKeys are fields a generic patch body must never smuggle
// in. They exist on the wire shape of BookingRequest, so a client echoing
// a full record back is a real hazard, not a hypothetical.
var protectedPatchKeys = []string{"status", "approved_session_id", "id", "created_at", "updated_at"}

// DecodePatch parses a raw JSON patch body and rejects protected fields
// before anything is applied.
func DecodePatch(data []byte) (*RequestPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Validationf("malformed patch body: %v", err)
	}
	for _, key := range protectedPatchKeys {
		if _, ok := raw[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrImmutableField, key)
		}
	}

	var patch RequestPatch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		return nil, Validationf("unrecognized patch field: %v", err)
	}
	return &patch, nil
}

// Apply writes the patch onto a copy of the request and re-establishes
// the pricing invariant: manual pricing off clears the override so a
// stale figure can never resurface, and manual pricing on demands a
// concrete figure. Status is untouched even on terminal records; editing
// a denied request is record-keeping, not reopening.
func (p *RequestPatch) Apply(r BookingRequest) (BookingRequest, error) {
	if p.CustomerName != nil {
		r.Customer.Name = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		r.Customer.Email = *p.CustomerEmail
	}
	if p.CustomerPhone != nil {
		r.Customer.Phone = *p.CustomerPhone
	}
	if p.PartySize != nil {
		if *p.PartySize < 1 {
			return r, Validationf("party_size must be at least 1")
		}
		r.PartySize = *p.PartySize
	}
	if p.PartyNames != nil {
		r.PartyNames = append([]string(nil), (*p.PartyNames)...)
	}
	if p.LessonTypeID != nil {
		r.LessonTypeID = *p.LessonTypeID
	}
	if p.RequestedDate != nil {
		r.RequestedDate = *p.RequestedDate
	}
	if p.RequestedTimeLabels != nil {
		if len(*p.RequestedTimeLabels) == 0 {
			return r, Validationf("requested_time_labels must not be empty")
		}
		r.RequestedTimeLabels = append([]string(nil), (*p.RequestedTimeLabels)...)
	}
	if p.SelectedTimeLabel != nil {
		clock, ok := timelabel.Parse(*p.SelectedTimeLabel)
		if !ok || !timelabel.OnGrid(clock) {
			return r, Validationf("selected_time_label %q is not on the booking grid", *p.SelectedTimeLabel)
		}
		r.SelectedTimeSlot = &clock
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.ManualPricing != nil {
		r.ManualPricing = *p.ManualPricing
	}
	if p.BillTotalCents != nil {
		if p.BillTotalCents.IsNegative() {
			return r, Validationf("bill_total_cents must not be negative")
		}
		total := *p.BillTotalCents
		r.BillTotalCents = &total
	}
	if p.AmountPaidCents != nil {
		if p.AmountPaidCents.IsNegative() {
			return r, Validationf("amount_paid_cents must not be negative")
		}
		r.AmountPaidCents = *p.AmountPaidCents
	}

	if !r.ManualPricing {
		r.BillTotalCents = nil
	} else if r.BillTotalCents == nil {
		return r, Validationf("manual_pricing requires bill_total_cents in the same update")
	}

	return r, nil
}
