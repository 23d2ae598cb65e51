package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
	"github.com/driftwoodsurf/booking_server/internal/timelabel"
)

const requestColumns = `
	id, customer_name, customer_email, customer_phone, party_size,
	party_names, lesson_type_id, requested_date, requested_time_labels,
	selected_time_slot, notes, status, manual_pricing, bill_total_cents,
	amount_paid_cents, approved_session_id, created_at, updated_at
`

type RequestRepository struct {
	pool      *pgxpool.Pool
	blackouts repository.BlackoutSource
}

func NewRequestRepository(pool *pgxpool.Pool, blackouts repository.BlackoutSource) *RequestRepository {
	return &RequestRepository{pool: pool, blackouts: blackouts}
}

func (r *RequestRepository) Create(ctx context.Context, input model.CreateRequestInput) (*model.BookingRequest, error) {
	query := `
		INSERT INTO booking_requests (
			id, customer_name, customer_email, customer_phone, party_size,
			party_names, lesson_type_id, requested_date, requested_time_labels, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING status, amount_paid_cents, created_at, updated_at
	`

	req := &model.BookingRequest{
		ID:                  uuid.New().String(),
		Customer:            input.Customer,
		PartySize:           input.PartySize,
		PartyNames:          input.PartyNames,
		LessonTypeID:        input.LessonTypeID,
		RequestedDate:       input.RequestedDate,
		RequestedTimeLabels: input.RequestedTimeLabels,
		Notes:               input.Notes,
	}

	err := r.pool.QueryRow(
		ctx, query,
		req.ID,
		req.Customer.Name,
		req.Customer.Email,
		req.Customer.Phone,
		req.PartySize,
		req.PartyNames,
		req.LessonTypeID,
		req.RequestedDate,
		req.RequestedTimeLabels,
		req.Notes,
	).Scan(&req.Status, &req.AmountPaidCents, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return nil, translate("create request", err)
	}

	return req, nil
}

func (r *RequestRepository) Get(ctx context.Context, id string) (*model.BookingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM booking_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get request", err)
	}
	return req, nil
}

// Update loads the row, applies the patch in Go and writes the result
// back, all inside one transaction with the row locked. The patch type
// cannot express status or the session link, so this path can never
// interfere with decisions.
func (r *RequestRepository) Update(ctx context.Context, id string, patch *model.RequestPatch) (*model.BookingRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, translate("update request: begin", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + requestColumns + ` FROM booking_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("update request: load", err)
	}

	updated, err := patch.Apply(*req)
	if err != nil {
		return nil, err
	}

	write := `
		UPDATE booking_requests
		SET customer_name = $2, customer_email = $3, customer_phone = $4,
		    party_size = $5, party_names = $6, lesson_type_id = $7,
		    requested_date = $8, requested_time_labels = $9,
		    selected_time_slot = $10, notes = $11, manual_pricing = $12,
		    bill_total_cents = $13, amount_paid_cents = $14, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRow(
		ctx, write,
		updated.ID,
		updated.Customer.Name,
		updated.Customer.Email,
		updated.Customer.Phone,
		updated.PartySize,
		updated.PartyNames,
		updated.LessonTypeID,
		updated.RequestedDate,
		updated.RequestedTimeLabels,
		updated.SelectedTimeSlot,
		updated.Notes,
		updated.ManualPricing,
		updated.BillTotalCents,
		updated.AmountPaidCents,
	).Scan(&updated.UpdatedAt)
	if err != nil {
		return nil, translate("update request: write", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translate("update request: commit", err)
	}

	return &updated, nil
}

func (r *RequestRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.BookingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM booking_requests WHERE 1=1`
	var args []interface{}

	if !filter.AllStates {
		statuses := filter.Statuses
		if len(statuses) == 0 {
			statuses = []model.RequestStatus{model.RequestStatusPending}
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND requested_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND requested_date <= $%d", len(args))
	}
	if filter.NameQuery != "" {
		args = append(args, "%"+filter.NameQuery+"%")
		query += fmt.Sprintf(" AND customer_name ILIKE $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list requests", err)
	}
	defer rows.Close()

	var requests []*model.BookingRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, translate("scan request", err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// Decide runs a lifecycle transition in one transaction. The row is
// locked, legality is re-checked against the stored status, and the
// final UPDATE carries a compare-and-swap on status so a concurrent
// decision can never be applied twice. A racing approve on the same
// slot dies on the sessions partial unique index instead.
func (r *RequestRepository) Decide(ctx context.Context, id string, params repository.DecideParams) (*model.BookingRequest, *model.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, translate("decide request: begin", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + requestColumns + ` FROM booking_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, nil, translate("decide request: load", err)
	}
	if err := lifecycle.Validate(req, params.Action); err != nil {
		return nil, nil, err
	}

	var session *model.Session
	switch params.Action {
	case lifecycle.ActionApprove:
		if params.SelectedClock == nil || params.Session == nil {
			return nil, nil, model.Validationf("approve requires a selected time slot")
		}
		if r.blackouts != nil {
			blocked, err := r.blackouts.Contains(ctx, req.RequestedDate)
			if err != nil {
				return nil, nil, fmt.Errorf("consult blackout source: %w", err)
			}
			if blocked {
				return nil, nil, fmt.Errorf("date %s is blacked out: %w",
					req.RequestedDate.Format("2006-01-02"), repository.ErrSlotUnavailable)
			}
		}

		// Rebuild the draft's date and time from the locked row; the
		// service snapshot may predate a concurrent edit, and the slot
		// index keys on the session's own date.
		draft := *params.Session
		draft.SessionDate = req.RequestedDate
		draft.SessionTime, err = timelabel.Combine(req.RequestedDate, *params.SelectedClock)
		if err != nil {
			return nil, nil, model.Validationf("combine session time: %v", err)
		}

		session, err = insertSession(ctx, tx, &draft)
		if err != nil {
			return nil, nil, err
		}
		req.SelectedTimeSlot = params.SelectedClock
		req.ApprovedSessionID = &session.ID

	case lifecycle.ActionCancel:
		if req.ApprovedSessionID != nil {
			session, err = scanSession(tx.QueryRow(ctx,
				`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, *req.ApprovedSessionID))
			if err != nil {
				return nil, nil, translate("decide request: load session", err)
			}
		}
	}

	cas := `
		UPDATE booking_requests
		SET status = $3, selected_time_slot = $4, approved_session_id = $5, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`
	err = tx.QueryRow(
		ctx, cas,
		req.ID,
		req.Status,
		lifecycle.Target(params.Action),
		req.SelectedTimeSlot,
		req.ApprovedSessionID,
	).Scan(&req.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("%w: request %s changed status concurrently", lifecycle.ErrInvalidTransition, id)
		}
		return nil, nil, translate("decide request: transition", err)
	}
	req.Status = lifecycle.Target(params.Action)

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, translate("decide request: commit", err)
	}

	return req, session, nil
}

func scanRequest(row pgx.Row) (*model.BookingRequest, error) {
	var req model.BookingRequest
	err := row.Scan(
		&req.ID,
		&req.Customer.Name,
		&req.Customer.Email,
		&req.Customer.Phone,
		&req.PartySize,
		&req.PartyNames,
		&req.LessonTypeID,
		&req.RequestedDate,
		&req.RequestedTimeLabels,
		&req.SelectedTimeSlot,
		&req.Notes,
		&req.Status,
		&req.ManualPricing,
		&req.BillTotalCents,
		&req.AmountPaidCents,
		&req.ApprovedSessionID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

var _ repository.RequestStore = (*RequestRepository)(nil)
