package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

const sessionColumns = `
	id, client_names, session_date, session_clock, session_time, group_size,
	lesson_status, paid_cents, tip_cents, deleted_at, created_at, updated_at
`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// insertSession materializes a session inside the approve transaction.
// The partial unique index on (session_date, session_clock) is the slot
// reservation: a racing approve for the same slot fails right here.
func insertSession(ctx context.Context, tx pgx.Tx, draft *model.SessionDraft) (*model.Session, error) {
	query := `
		INSERT INTO sessions (id, client_names, session_date, session_clock, session_time, group_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING lesson_status, paid_cents, tip_cents, created_at, updated_at
	`

	session := &model.Session{
		ID:           uuid.New().String(),
		ClientNames:  draft.ClientNames,
		SessionDate:  draft.SessionDate,
		SessionClock: draft.SessionClock,
		SessionTime:  draft.SessionTime,
		GroupSize:    draft.GroupSize,
	}

	err := tx.QueryRow(
		ctx, query,
		session.ID,
		session.ClientNames,
		session.SessionDate,
		session.SessionClock,
		session.SessionTime,
		session.GroupSize,
	).Scan(&session.LessonStatus, &session.PaidCents, &session.TipCents, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return nil, translate("create session", err)
	}

	return session, nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get session", err)
	}
	return session, nil
}

func (r *SessionRepository) ListRange(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE deleted_at IS NULL
		  AND session_time >= $1
		  AND session_time < $2
		ORDER BY session_time
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, translate("list sessions", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, translate("scan session", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (r *SessionRepository) UpdateLessonStatus(ctx context.Context, id string, status model.LessonStatus) (*model.Session, error) {
	query := `
		UPDATE sessions
		SET lesson_status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + sessionColumns + `
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		return nil, translate("update session status", err)
	}
	return session, nil
}

func (r *SessionRepository) UpdatePayment(ctx context.Context, id string, paid, tip money.Cents) (*model.Session, error) {
	if paid.IsNegative() || tip.IsNegative() {
		return nil, model.Validationf("payment amounts must not be negative")
	}

	query := `
		UPDATE sessions
		SET paid_cents = $2, tip_cents = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + sessionColumns + `
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, paid, tip))
	if err != nil {
		return nil, translate("update session payment", err)
	}
	return session, nil
}

func (r *SessionRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE sessions
		SET deleted_at = COALESCE(deleted_at, now()), updated_at = now()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return translate("soft delete session", err)
	}
	if result.RowsAffected() == 0 {
		return translate("soft delete session", pgx.ErrNoRows)
	}
	return nil
}

func (r *SessionRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM sessions WHERE deleted_at IS NOT NULL AND deleted_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, translate("purge sessions", err)
	}
	return int(result.RowsAffected()), nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.ClientNames,
		&session.SessionDate,
		&session.SessionClock,
		&session.SessionTime,
		&session.GroupSize,
		&session.LessonStatus,
		&session.PaidCents,
		&session.TipCents,
		&session.DeletedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

var _ repository.SessionStore = (*SessionRepository)(nil)
