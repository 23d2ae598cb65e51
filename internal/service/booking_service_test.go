package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
	"github.com/driftwoodsurf/booking_server/internal/repository/memory"
)

var lessonDate = time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T, freeSlotOnCancel bool) (*BookingService, *memory.Store) {
	t.Helper()
	store := memory.NewStore(nil)
	svc := NewBookingService(store.Requests(), store.Sessions(), store.Ledger(), zap.NewNop(), freeSlotOnCancel)
	return svc, store
}

func intakeInput() model.CreateRequestInput {
	return model.CreateRequestInput{
		Customer: model.Customer{
			Name:  "Kai Moana",
			Email: "kai@example.com",
			Phone: "808-555-0101",
		},
		PartySize:           2,
		PartyNames:          []string{"Kai", "Nalu"},
		LessonTypeID:        "semi-private",
		RequestedDate:       lessonDate,
		RequestedTimeLabels: []string{"9:00 AM", "10:30 AM"},
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	t.Run("valid intake", func(t *testing.T) {
		req, err := svc.CreateRequest(ctx, intakeInput())
		require.NoError(t, err)
		assert.Equal(t, model.RequestStatusPending, req.Status)
	})

	t.Run("missing customer email", func(t *testing.T) {
		input := intakeInput()
		input.Customer.Email = ""
		_, err := svc.CreateRequest(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("no requested labels", func(t *testing.T) {
		input := intakeInput()
		input.RequestedTimeLabels = nil
		_, err := svc.CreateRequest(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("unparseable label", func(t *testing.T) {
		input := intakeInput()
		input.RequestedTimeLabels = []string{"9 o'clock"}
		_, err := svc.CreateRequest(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("party size zero", func(t *testing.T) {
		input := intakeInput()
		input.PartySize = 0
		_, err := svc.CreateRequest(ctx, input)
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestApproveCreatesSession(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)

	req, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, model.RequestStatusApproved, req.Status)
	require.NotNil(t, req.ApprovedSessionID)
	assert.Equal(t, session.ID, *req.ApprovedSessionID)

	assert.Equal(t, model.LessonStatusBooked, session.LessonStatus)
	assert.Equal(t, []string{"Kai", "Nalu"}, session.ClientNames)
	assert.Equal(t, 2, session.GroupSize)
	assert.Equal(t, "09:00:00", session.SessionClock)
	assert.Equal(t, time.Date(2025, 7, 4, 9, 0, 0, 0, time.UTC), session.SessionTime)

	available, err := svc.SlotAvailable(ctx, lessonDate, "9:00 AM")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestApproveFallsBackToCustomerName(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	input := intakeInput()
	input.PartyNames = nil
	created, err := svc.CreateRequest(ctx, input)
	require.NoError(t, err)

	_, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kai Moana"}, session.ClientNames)
}

func TestApproveRejectsBadSelection(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)

	for _, label := range []string{"", "midnight", "6:00 AM", "4:00 PM", "9:15 AM", "0:30 PM"} {
		_, _, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, label, false)
		assert.ErrorIs(t, err, ErrInvalidSelection, "label %q", label)
	}

	got, err := svc.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, got.Status)
}

func TestApproveTakenSlot(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	first, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	second, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)

	_, _, err = svc.Decide(ctx, first.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)

	_, _, err = svc.Decide(ctx, second.ID, lifecycle.ActionApprove, "9:00 AM", false)
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
}

func TestDenyThenApprove(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)

	req, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionDeny, "", false)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, model.RequestStatusDenied, req.Status)

	_, _, err = svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestCancelApprovedFreesSlot(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	_, _, err = svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)

	req, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionCancel, "", true)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCanceled, req.Status)
	require.NotNil(t, session)
	assert.Equal(t, model.LessonStatusCanceledWithRefund, session.LessonStatus)

	// The freed slot can be booked by another customer.
	other, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	_, _, err = svc.Decide(ctx, other.ID, lifecycle.ActionApprove, "9:00 AM", false)
	assert.NoError(t, err)
}

func TestCancelKeepsSlotWhenPolicyOff(t *testing.T) {
	svc, _ := newBookingFixture(t, false)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	_, _, err = svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)

	_, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionCancel, "", false)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, model.LessonStatusBooked, session.LessonStatus, "session is left for manual handling")

	available, err := svc.SlotAvailable(ctx, lessonDate, "9:00 AM")
	require.NoError(t, err)
	assert.False(t, available, "slot stays held until the session is dealt with")
}

func TestCancelUnapprovedRequest(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)

	req, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionCancel, "", false)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, model.RequestStatusCanceled, req.Status)

	_, _, err = svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
}

func TestConcurrentDecisions(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)

	const workers = 6
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, _, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
			errs <- err
		}()
	}

	wins := 0
	for i := 0; i < workers; i++ {
		if err := <-errs; err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, wins)

	sessions, err := svc.ListSessions(ctx, lessonDate, lessonDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestCompleteSessionKeepsSlot(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	_, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)

	completed, err := svc.CompleteSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LessonStatusCompleted, completed.LessonStatus)

	available, err := svc.SlotAvailable(ctx, lessonDate, "9:00 AM")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestDeleteSessionFreesSlot(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	_, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	available, err := svc.SlotAvailable(ctx, lessonDate, "9:00 AM")
	require.NoError(t, err)
	assert.True(t, available)

	listed, err := svc.ListSessions(ctx, lessonDate, lessonDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPurgeSessions(t *testing.T) {
	svc, _ := newBookingFixture(t, true)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, intakeInput())
	require.NoError(t, err)
	_, session, err := svc.Decide(ctx, created.ID, lifecycle.ActionApprove, "9:00 AM", false)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	purged, err := svc.PurgeSessions(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSlotAvailableRejectsBadLabel(t *testing.T) {
	svc, _ := newBookingFixture(t, true)

	_, err := svc.SlotAvailable(context.Background(), lessonDate, "half past nine")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}
