package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
	"github.com/driftwoodsurf/booking_server/internal/repository"
)

type sessionStore struct {
	s *Store
}

// Get looks up a session by id, soft-deleted ones included: the admin
// can still inspect a deleted record until the purge runs.
func (v *sessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	session, ok := v.s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, repository.ErrNotFound)
	}
	return copySession(session), nil
}

// ListRange returns non-deleted sessions with a session time inside
// [from, to), ordered by session time.
func (v *sessionStore) ListRange(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []*model.Session
	for _, session := range v.s.sessions {
		if session.DeletedAt != nil {
			continue
		}
		if session.SessionTime.Before(from) || !session.SessionTime.Before(to) {
			continue
		}
		out = append(out, copySession(session))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SessionTime.Before(out[j].SessionTime)
	})
	return out, nil
}

func (v *sessionStore) UpdateLessonStatus(ctx context.Context, id string, status model.LessonStatus) (*model.Session, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	session, ok := v.s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("update session %s: %w", id, repository.ErrNotFound)
	}
	session.LessonStatus = status
	session.UpdatedAt = time.Now().UTC()
	return copySession(session), nil
}

func (v *sessionStore) UpdatePayment(ctx context.Context, id string, paid, tip money.Cents) (*model.Session, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	session, ok := v.s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("update session payment %s: %w", id, repository.ErrNotFound)
	}
	if paid.IsNegative() || tip.IsNegative() {
		return nil, model.Validationf("payment amounts must not be negative")
	}
	session.PaidCents = paid
	session.TipCents = tip
	session.UpdatedAt = time.Now().UTC()
	return copySession(session), nil
}

// SoftDelete marks a session deleted. Idempotent; the slot is freed by
// the caller through the ledger, not here.
func (v *sessionStore) SoftDelete(ctx context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	session, ok := v.s.sessions[id]
	if !ok {
		return fmt.Errorf("soft delete session %s: %w", id, repository.ErrNotFound)
	}
	if session.DeletedAt == nil {
		now := time.Now().UTC()
		session.DeletedAt = &now
		session.UpdatedAt = now
	}
	return nil
}

// PurgeDeletedBefore hard-deletes sessions soft-deleted before the
// cutoff and reports how many were removed. Requests are never purged;
// only sessions and expenses have a hard-deletion path.
func (v *sessionStore) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	purged := 0
	for id, session := range v.s.sessions {
		if session.DeletedAt != nil && session.DeletedAt.Before(cutoff) {
			delete(v.s.sessions, id)
			purged++
		}
	}
	return purged, nil
}
