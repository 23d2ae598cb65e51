package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
	"github.com/driftwoodsurf/booking_server/internal/repository"
	"github.com/driftwoodsurf/booking_server/internal/timelabel"
)

// ErrInvalidSelection marks an approve call whose time label does not
// parse or does not land on the booking grid.
var ErrInvalidSelection = errors.New("invalid time selection")

type BookingService struct {
	requests         repository.RequestStore
	sessions         repository.SessionStore
	ledger           repository.AvailabilityLedger
	validate         *validator.Validate
	logger           *zap.Logger
	freeSlotOnCancel bool
}

func NewBookingService(
	requests repository.RequestStore,
	sessions repository.SessionStore,
	ledger repository.AvailabilityLedger,
	logger *zap.Logger,
	freeSlotOnCancel bool,
) *BookingService {
	return &BookingService{
		requests:         requests,
		sessions:         sessions,
		ledger:           ledger,
		validate:         validator.New(),
		logger:           logger,
		freeSlotOnCancel: freeSlotOnCancel,
	}
}

// CreateRequest validates the intake draft and stores it as pending.
func (s *BookingService) CreateRequest(ctx context.Context, input model.CreateRequestInput) (*model.BookingRequest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	for _, label := range input.RequestedTimeLabels {
		if _, ok := timelabel.Parse(label); !ok {
			return nil, model.Validationf("requested time label %q does not parse", label)
		}
	}

	req, err := s.requests.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("Booking request created",
		zap.String("request_id", req.ID),
		zap.String("customer", req.Customer.Name),
		zap.Time("requested_date", req.RequestedDate),
		zap.Int("party_size", req.PartySize),
	)

	return req, nil
}

func (s *BookingService) GetRequest(ctx context.Context, id string) (*model.BookingRequest, error) {
	return s.requests.Get(ctx, id)
}

func (s *BookingService) ListRequests(ctx context.Context, filter model.ListFilter) ([]*model.BookingRequest, error) {
	return s.requests.List(ctx, filter)
}

// UpdateRequest applies an admin edit. Field edits never change status,
// even on terminal records.
func (s *BookingService) UpdateRequest(ctx context.Context, id string, patch *model.RequestPatch) (*model.BookingRequest, error) {
	req, err := s.requests.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	s.logger.Info("Booking request updated",
		zap.String("request_id", req.ID),
		zap.String("status", string(req.Status)),
	)

	return req, nil
}

// Decide runs an administrator decision. Approve resolves the selected
// label against the grid, reserves the slot and materializes the
// session; deny and cancel only move status. Cancel of an approved
// request handles the linked session per the slot-release policy.
func (s *BookingService) Decide(ctx context.Context, id string, action lifecycle.Action, selectedTimeLabel string, refund bool) (*model.BookingRequest, *model.Session, error) {
	params := repository.DecideParams{Action: action}

	if action == lifecycle.ActionApprove {
		clock, ok := timelabel.Parse(selectedTimeLabel)
		if !ok || !timelabel.OnGrid(clock) {
			return nil, nil, fmt.Errorf("%w: label %q", ErrInvalidSelection, selectedTimeLabel)
		}

		req, err := s.requests.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("decide: %w", err)
		}

		sessionTime, err := timelabel.Combine(req.RequestedDate, clock)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
		}

		clientNames := req.PartyNames
		if len(clientNames) == 0 {
			clientNames = []string{req.Customer.Name}
		}

		params.SelectedClock = &clock
		params.Session = &model.SessionDraft{
			ClientNames:  clientNames,
			SessionDate:  req.RequestedDate,
			SessionClock: clock,
			SessionTime:  sessionTime,
			GroupSize:    req.PartySize,
		}
	}

	req, session, err := s.requests.Decide(ctx, id, params)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Booking request decided",
		zap.String("request_id", req.ID),
		zap.String("action", string(action)),
		zap.String("status", string(req.Status)),
	)

	if action == lifecycle.ActionCancel && session != nil && s.freeSlotOnCancel {
		session, err = s.cancelSession(ctx, session, refund)
		if err != nil {
			return req, session, err
		}
	}

	return req, session, nil
}

// CompleteSession marks a lesson done. The slot stays occupied; a
// completed session is still billable inventory for its time.
func (s *BookingService) CompleteSession(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.sessions.UpdateLessonStatus(ctx, id, model.LessonStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	return session, nil
}

// CancelSession cancels a lesson and frees its slot. With refund the
// money is owed back and the session drops out of revenue; without
// refund the payment stands.
func (s *BookingService) CancelSession(ctx context.Context, id string, refund bool) (*model.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cancel session: %w", err)
	}
	return s.cancelSession(ctx, session, refund)
}

func (s *BookingService) cancelSession(ctx context.Context, session *model.Session, refund bool) (*model.Session, error) {
	status := model.LessonStatusCanceledWithoutRefund
	if refund {
		status = model.LessonStatusCanceledWithRefund
	}

	session, err := s.sessions.UpdateLessonStatus(ctx, session.ID, status)
	if err != nil {
		return nil, fmt.Errorf("cancel session: %w", err)
	}
	if err := s.ledger.Release(ctx, session.SessionDate, session.SessionClock); err != nil {
		return session, fmt.Errorf("release slot: %w", err)
	}

	s.logger.Info("Session canceled",
		zap.String("session_id", session.ID),
		zap.Bool("refund", refund),
	)

	return session, nil
}

func (s *BookingService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *BookingService) ListSessions(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	return s.sessions.ListRange(ctx, from, to)
}

// SetSessionPayment records what was actually collected for a session.
func (s *BookingService) SetSessionPayment(ctx context.Context, id string, paid, tip money.Cents) (*model.Session, error) {
	return s.sessions.UpdatePayment(ctx, id, paid, tip)
}

// DeleteSession soft-deletes a session and frees its slot.
func (s *BookingService) DeleteSession(ctx context.Context, id string) error {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.sessions.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.ledger.Release(ctx, session.SessionDate, session.SessionClock); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	s.logger.Info("Session deleted", zap.String("session_id", session.ID))
	return nil
}

// PurgeSessions hard-deletes sessions soft-deleted before the cutoff.
func (s *BookingService) PurgeSessions(ctx context.Context, cutoff time.Time) (int, error) {
	purged, err := s.sessions.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if purged > 0 {
		s.logger.Info("Purged deleted sessions", zap.Int("count", purged))
	}
	return purged, nil
}

// SlotAvailable answers the admin surface's pre-flight check before it
// offers a time in the approval dialog.
func (s *BookingService) SlotAvailable(ctx context.Context, date time.Time, label string) (bool, error) {
	clock, ok := timelabel.Parse(label)
	if !ok || !timelabel.OnGrid(clock) {
		return false, fmt.Errorf("%w: label %q", ErrInvalidSelection, label)
	}
	return s.ledger.IsAvailable(ctx, date, clock)
}
