package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
	"github.com/driftwoodsurf/booking_server/internal/timelabel"
)

type requestStore struct {
	s *Store
}

// Create stores a new booking request. Status is forced to pending no
// matter what the draft carried.
func (v *requestStore) Create(ctx context.Context, input model.CreateRequestInput) (*model.BookingRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	now := time.Now().UTC()
	req := &model.BookingRequest{
		ID:                  uuid.New().String(),
		Customer:            input.Customer,
		PartySize:           input.PartySize,
		PartyNames:          append([]string(nil), input.PartyNames...),
		LessonTypeID:        input.LessonTypeID,
		RequestedDate:       input.RequestedDate,
		RequestedTimeLabels: append([]string(nil), input.RequestedTimeLabels...),
		Notes:               input.Notes,
		Status:              model.RequestStatusPending,
		AmountPaidCents:     0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	v.s.requests[req.ID] = req

	return copyRequest(req), nil
}

func (v *requestStore) Get(ctx context.Context, id string) (*model.BookingRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	req, ok := v.s.requests[id]
	if !ok {
		return nil, fmt.Errorf("get request %s: %w", id, repository.ErrNotFound)
	}
	return copyRequest(req), nil
}

// Update applies a validated patch. Status and the session link are not
// reachable from the patch type, so a terminal record can be edited for
// record-keeping without being resurrected.
func (v *requestStore) Update(ctx context.Context, id string, patch *model.RequestPatch) (*model.BookingRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	req, ok := v.s.requests[id]
	if !ok {
		return nil, fmt.Errorf("update request %s: %w", id, repository.ErrNotFound)
	}

	updated, err := patch.Apply(*req)
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	v.s.requests[id] = &updated

	return copyRequest(&updated), nil
}

func (v *requestStore) List(ctx context.Context, filter model.ListFilter) ([]*model.BookingRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []*model.BookingRequest
	for _, req := range v.s.requests {
		if filter.Matches(req) {
			out = append(out, copyRequest(req))
		}
	}
	// Stable order for callers that do not re-sort. Not a contract.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Decide runs a lifecycle transition as one atomic unit: legality check,
// status compare-and-swap, slot reservation and session creation all
// happen under the same lock. A concurrent decision on the same request
// observes the new status and fails the legality check.
func (v *requestStore) Decide(ctx context.Context, id string, params repository.DecideParams) (*model.BookingRequest, *model.Session, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	req, ok := v.s.requests[id]
	if !ok {
		return nil, nil, fmt.Errorf("decide request %s: %w", id, repository.ErrNotFound)
	}
	if err := lifecycle.Validate(req, params.Action); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	switch params.Action {
	case lifecycle.ActionApprove:
		if params.SelectedClock == nil || params.Session == nil {
			return nil, nil, model.Validationf("approve requires a selected time slot")
		}
		if err := v.s.reserveLocked(ctx, req.RequestedDate, *params.SelectedClock); err != nil {
			return nil, nil, err
		}

		// The draft's date may predate a concurrent edit; the locked
		// record is authoritative so the session lands on the same
		// date the reservation above keyed on.
		sessionTime, err := timelabel.Combine(req.RequestedDate, *params.SelectedClock)
		if err != nil {
			return nil, nil, model.Validationf("combine session time: %v", err)
		}

		session := &model.Session{
			ID:           uuid.New().String(),
			ClientNames:  append([]string(nil), params.Session.ClientNames...),
			SessionDate:  req.RequestedDate,
			SessionClock: *params.SelectedClock,
			SessionTime:  sessionTime,
			GroupSize:    params.Session.GroupSize,
			LessonStatus: model.LessonStatusBooked,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		v.s.sessions[session.ID] = session

		clock := *params.SelectedClock
		req.SelectedTimeSlot = &clock
		req.ApprovedSessionID = &session.ID
		req.Status = model.RequestStatusApproved
		req.UpdatedAt = now
		return copyRequest(req), copySession(session), nil

	case lifecycle.ActionDeny:
		req.Status = model.RequestStatusDenied
		req.UpdatedAt = now
		return copyRequest(req), nil, nil

	case lifecycle.ActionCancel:
		req.Status = model.RequestStatusCanceled
		req.UpdatedAt = now
		var session *model.Session
		if req.ApprovedSessionID != nil {
			if existing, ok := v.s.sessions[*req.ApprovedSessionID]; ok {
				session = copySession(existing)
			}
		}
		return copyRequest(req), session, nil
	}

	return nil, nil, model.Validationf("unknown action %q", params.Action)
}
