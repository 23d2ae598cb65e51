// Package postgres implements the persistence boundary on pgx. The slot
// uniqueness invariant lives in the schema: a partial unique index over
// (session_date, session_clock) for live sessions makes double-booking a
// constraint violation no matter how many callers race.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/driftwoodsurf/booking_server/internal/repository"
)

// uniqueViolation is the postgres error code raised by the slot index.
const uniqueViolation = "23505"

// translate maps driver-level failures onto the boundary's error kinds.
// Everything that is not a domain condition becomes ErrStorageUnavailable,
// which the caller may retry.
func translate(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, repository.ErrSlotUnavailable)
	}
	return fmt.Errorf("%s: %w: %v", op, repository.ErrStorageUnavailable, err)
}
