package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

var lessonDate = time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

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

func approveParams(date time.Time, clock string, names ...string) repository.DecideParams {
	return repository.DecideParams{
		Action:        lifecycle.ActionApprove,
		SelectedClock: &clock,
		Session: &model.SessionDraft{
			ClientNames:  names,
			SessionDate:  date,
			SessionClock: clock,
			SessionTime:  date.Add(9 * time.Hour),
			GroupSize:    len(names),
		},
	}
}

func TestCreateForcesPending(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	req, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Nil(t, req.ApprovedSessionID)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestGetUnknownRequest(t *testing.T) {
	store := NewStore(nil)

	_, err := store.Requests().Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApproveReservesSlotAndCreatesSession(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)

	req, session, err := store.Requests().Decide(ctx, created.ID, approveParams(lessonDate, "09:00:00", "Kai", "Nalu"))
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, model.RequestStatusApproved, req.Status)
	require.NotNil(t, req.ApprovedSessionID)
	assert.Equal(t, session.ID, *req.ApprovedSessionID)
	require.NotNil(t, req.SelectedTimeSlot)
	assert.Equal(t, "09:00:00", *req.SelectedTimeSlot)

	assert.Equal(t, model.LessonStatusBooked, session.LessonStatus)
	assert.Equal(t, "09:00:00", session.SessionClock)
	assert.Equal(t, []string{"Kai", "Nalu"}, session.ClientNames)

	available, err := store.Ledger().IsAvailable(ctx, lessonDate, "09:00:00")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestSlotUniqueness(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	second, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)

	_, _, err = store.Requests().Decide(ctx, first.ID, approveParams(lessonDate, "09:00:00", "Kai"))
	require.NoError(t, err)

	_, _, err = store.Requests().Decide(ctx, second.ID, approveParams(lessonDate, "09:00:00", "Noa"))
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

	got, err := store.Requests().Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, got.Status, "a failed reservation must not move the request")

	// A different slot on the same day is still open.
	_, _, err = store.Requests().Decide(ctx, second.ID, approveParams(lessonDate, "09:30:00", "Noa"))
	assert.NoError(t, err)
}

func TestApproveUsesStoredDate(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)

	// Draft carries a stale date, as if an edit landed after the
	// caller snapshotted the request. The stored record wins.
	staleDate := lessonDate.AddDate(0, 0, -7)
	params := approveParams(staleDate, "09:00:00", "Kai")

	_, session, err := store.Requests().Decide(ctx, created.ID, params)
	require.NoError(t, err)

	assert.Equal(t, lessonDate, session.SessionDate)
	assert.Equal(t, lessonDate.Add(9*time.Hour), session.SessionTime)

	reserved, err := store.Ledger().IsAvailable(ctx, lessonDate, "09:00:00")
	require.NoError(t, err)
	assert.False(t, reserved, "reservation and session sit on the same date")

	stale, err := store.Ledger().IsAvailable(ctx, staleDate, "09:00:00")
	require.NoError(t, err)
	assert.True(t, stale, "the stale date holds nothing")
}

func TestDecideIsTerminal(t *testing.T) {
	ctx := context.Background()

	t.Run("deny then approve fails", func(t *testing.T) {
		store := NewStore(nil)
		created, err := store.Requests().Create(ctx, intakeInput())
		require.NoError(t, err)

		_, _, err = store.Requests().Decide(ctx, created.ID, repository.DecideParams{Action: lifecycle.ActionDeny})
		require.NoError(t, err)

		_, _, err = store.Requests().Decide(ctx, created.ID, approveParams(lessonDate, "09:00:00", "Kai"))
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})

	t.Run("cancel approved succeeds and returns the session", func(t *testing.T) {
		store := NewStore(nil)
		created, err := store.Requests().Create(ctx, intakeInput())
		require.NoError(t, err)

		_, approvedSession, err := store.Requests().Decide(ctx, created.ID, approveParams(lessonDate, "09:00:00", "Kai"))
		require.NoError(t, err)

		req, session, err := store.Requests().Decide(ctx, created.ID, repository.DecideParams{Action: lifecycle.ActionCancel})
		require.NoError(t, err)
		assert.Equal(t, model.RequestStatusCanceled, req.Status)
		require.NotNil(t, session)
		assert.Equal(t, approvedSession.ID, session.ID)
	})

	t.Run("cancel denied fails", func(t *testing.T) {
		store := NewStore(nil)
		created, err := store.Requests().Create(ctx, intakeInput())
		require.NoError(t, err)

		_, _, err = store.Requests().Decide(ctx, created.ID, repository.DecideParams{Action: lifecycle.ActionDeny})
		require.NoError(t, err)

		_, _, err = store.Requests().Decide(ctx, created.ID, repository.DecideParams{Action: lifecycle.ActionCancel})
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	})
}

func TestConcurrentApprove(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)

	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, _, err := store.Requests().Decide(ctx, created.ID, approveParams(lessonDate, "09:00:00", "Kai"))
			errs <- err
		}()
	}

	wins := 0
	for i := 0; i < workers; i++ {
		err := <-errs
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	}
	assert.Equal(t, 1, wins, "exactly one concurrent approval must win")

	sessions, err := store.Sessions().ListRange(ctx, lessonDate, lessonDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestReleaseIdempotent(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Ledger().Reserve(ctx, lessonDate, "11:00:00"))
	require.NoError(t, store.Ledger().Release(ctx, lessonDate, "11:00:00"))
	require.NoError(t, store.Ledger().Release(ctx, lessonDate, "11:00:00"))

	available, err := store.Ledger().IsAvailable(ctx, lessonDate, "11:00:00")
	require.NoError(t, err)
	assert.True(t, available)
}

type blackoutFunc func(ctx context.Context, date time.Time) (bool, error)

func (f blackoutFunc) Contains(ctx context.Context, date time.Time) (bool, error) {
	return f(ctx, date)
}

func TestBlackoutBlocksReservation(t *testing.T) {
	blocked := blackoutFunc(func(ctx context.Context, date time.Time) (bool, error) {
		return date.Equal(lessonDate), nil
	})
	store := NewStore(blocked)
	ctx := context.Background()

	available, err := store.Ledger().IsAvailable(ctx, lessonDate, "09:00:00")
	require.NoError(t, err)
	assert.False(t, available)

	err = store.Ledger().Reserve(ctx, lessonDate, "09:00:00")
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

	nextDay := lessonDate.AddDate(0, 0, 1)
	assert.NoError(t, store.Ledger().Reserve(ctx, nextDay, "09:00:00"))
}

func TestListFilterDefaultsToPending(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	pending, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	decided, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	_, _, err = store.Requests().Decide(ctx, decided.ID, repository.DecideParams{Action: lifecycle.ActionDeny})
	require.NoError(t, err)

	queue, err := store.Requests().List(ctx, model.ListFilter{})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)

	all, err := store.Requests().List(ctx, model.ListFilter{AllStates: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateCannotChangeStatus(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	_, _, err = store.Requests().Decide(ctx, created.ID, repository.DecideParams{Action: lifecycle.ActionDeny})
	require.NoError(t, err)

	notes := "customer asked about next month"
	updated, err := store.Requests().Update(ctx, created.ID, &model.RequestPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, model.RequestStatusDenied, updated.Status, "editing a decided request must not reopen it")
}

func TestSessionSoftDeleteAndPurge(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	_, session, err := store.Requests().Decide(ctx, created.ID, approveParams(lessonDate, "09:00:00", "Kai"))
	require.NoError(t, err)

	require.NoError(t, store.Sessions().SoftDelete(ctx, session.ID))
	require.NoError(t, store.Sessions().SoftDelete(ctx, session.ID), "soft delete is idempotent")

	listed, err := store.Sessions().ListRange(ctx, lessonDate, lessonDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, listed, "soft-deleted sessions drop out of listings")

	got, err := store.Sessions().Get(ctx, session.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt, "a soft-deleted session stays readable by id")

	purged, err := store.Sessions().PurgeDeletedBefore(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = store.Sessions().Get(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionPayment(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := store.Requests().Create(ctx, intakeInput())
	require.NoError(t, err)
	_, session, err := store.Requests().Decide(ctx, created.ID, approveParams(lessonDate, "09:00:00", "Kai"))
	require.NoError(t, err)

	updated, err := store.Sessions().UpdatePayment(ctx, session.ID, 12000, 2000)
	require.NoError(t, err)
	assert.EqualValues(t, 12000, updated.PaidCents)
	assert.EqualValues(t, 2000, updated.TipCents)

	_, err = store.Sessions().UpdatePayment(ctx, session.ID, -1, 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}
