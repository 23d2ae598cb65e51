package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftwoodsurf/booking_server/internal/repository"
)

// LedgerRepository answers availability from the sessions table itself.
// Occupancy is derived: a slot is taken while a non-deleted session in a
// billable status sits on it. The partial unique index over
// (session_date, session_clock) is the authoritative serialization
// point; Reserve here is the advisory pre-check the admin surface uses.
type LedgerRepository struct {
	pool      *pgxpool.Pool
	blackouts repository.BlackoutSource
}

func NewLedgerRepository(pool *pgxpool.Pool, blackouts repository.BlackoutSource) *LedgerRepository {
	return &LedgerRepository{pool: pool, blackouts: blackouts}
}

func (r *LedgerRepository) IsAvailable(ctx context.Context, date time.Time, clock string) (bool, error) {
	if r.blackouts != nil {
		blocked, err := r.blackouts.Contains(ctx, date)
		if err != nil {
			return false, fmt.Errorf("consult blackout source: %w", err)
		}
		if blocked {
			return false, nil
		}
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE session_date = $1
			  AND session_clock = $2
			  AND deleted_at IS NULL
			  AND lesson_status IN ('booked', 'completed')
		)
	`

	var occupied bool
	if err := r.pool.QueryRow(ctx, query, date, clock).Scan(&occupied); err != nil {
		return false, translate("check availability", err)
	}
	return !occupied, nil
}

// Reserve re-checks availability and reports ErrSlotUnavailable when the
// slot is taken or blacked out. Two racing approvals are not decided
// here: the loser dies on the unique index inside the decide
// transaction, which is the only write path that occupies a slot.
func (r *LedgerRepository) Reserve(ctx context.Context, date time.Time, clock string) error {
	available, err := r.IsAvailable(ctx, date, clock)
	if err != nil {
		return err
	}
	if !available {
		return fmt.Errorf("slot %s %s: %w", date.Format("2006-01-02"), clock, repository.ErrSlotUnavailable)
	}
	return nil
}

// Release is a no-op: occupancy is derived from session state, so the
// status update or deletion that made the slot free has already released
// it. Kept for interface symmetry with stores that track slots directly.
func (r *LedgerRepository) Release(ctx context.Context, date time.Time, clock string) error {
	return nil
}

var _ repository.AvailabilityLedger = (*LedgerRepository)(nil)
