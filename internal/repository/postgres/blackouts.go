package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/driftwoodsurf/booking_server/internal/repository"
)

// BlackoutRepository adapts the calendar-rule collaborator's blackout
// windows to the BlackoutSource interface. The windows themselves are
// written by an external system; this side only reads.
type BlackoutRepository struct {
	pool *pgxpool.Pool
}

func NewBlackoutRepository(pool *pgxpool.Pool) *BlackoutRepository {
	return &BlackoutRepository{pool: pool}
}

func (r *BlackoutRepository) Contains(ctx context.Context, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blackout_windows
			WHERE starts_on <= $1 AND ends_on >= $1
		)
	`

	var blocked bool
	if err := r.pool.QueryRow(ctx, query, date).Scan(&blocked); err != nil {
		return false, translate("check blackout", err)
	}
	return blocked, nil
}

var _ repository.BlackoutSource = (*BlackoutRepository)(nil)
