package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/service"
)

// Janitor runs the retention task in the background: sessions that were
// soft-deleted long enough ago get hard-deleted. Booking requests are
// never touched; they stay in storage indefinitely for audit.
type Janitor struct {
	booking       *service.BookingService
	retentionDays int
	logger        *zap.Logger
	stopChan      chan struct{}
}

func NewJanitor(booking *service.BookingService, retentionDays int, logger *zap.Logger) *Janitor {
	return &Janitor{
		booking:       booking,
		retentionDays: retentionDays,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the purge loop.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("Starting retention janitor", zap.Int("retention_days", j.retentionDays))
	go j.runPurgeTask(ctx)
}

// Stop halts the background loop.
func (j *Janitor) Stop() {
	j.logger.Info("Stopping retention janitor")
	close(j.stopChan)
}

func (j *Janitor) runPurgeTask(ctx context.Context) {
	// First run right away, then daily.
	j.purge(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.purge(ctx)
		case <-j.stopChan:
			j.logger.Info("Purge task stopped")
			return
		case <-ctx.Done():
			j.logger.Info("Purge task cancelled")
			return
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)

	purged, err := j.booking.PurgeSessions(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to purge sessions", zap.Error(err))
		return
	}
	if purged > 0 {
		j.logger.Info("Retention purge completed", zap.Int("purged", purged))
	}
}
