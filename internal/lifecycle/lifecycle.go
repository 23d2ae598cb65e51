// Package lifecycle holds the decision state machine for booking
// requests. Transition legality lives here, in one place, so the stores
// and the admin surface share a single set of rules.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/driftwoodsurf/booking_server/internal/model"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
	ActionCancel  Action = "cancel"
)

// ErrInvalidTransition marks a decision attempted from a state that does
// not permit it. Always recoverable: the caller re-reads current status.
var ErrInvalidTransition = errors.New("invalid transition")

// ParseAction converts a wire action string to a known Action.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionApprove, ActionDeny, ActionCancel:
		return Action(s), true
	}
	return "", false
}

// Validate checks whether the action is legal for the request's current
// state. Pending requests accept any decision. Approved requests accept
// only cancel, and only when the approved session link exists. Denied and
// canceled are dead ends.
func Validate(r *model.BookingRequest, action Action) error {
	switch r.Status {
	case model.RequestStatusPending:
		return nil
	case model.RequestStatusApproved:
		if action == ActionCancel && r.ApprovedSessionID != nil {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s request in status %s", ErrInvalidTransition, action, r.Status)
}

// Target returns the status the action lands in.
func Target(action Action) model.RequestStatus {
	switch action {
	case ActionApprove:
		return model.RequestStatusApproved
	case ActionDeny:
		return model.RequestStatusDenied
	case ActionCancel:
		return model.RequestStatusCanceled
	}
	return ""
}
