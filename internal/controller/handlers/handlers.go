package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/repository"
	"github.com/driftwoodsurf/booking_server/internal/service"
)

// dateLayout is the wire format for bare calendar dates.
const dateLayout = "2006-01-02"

type Handlers struct {
	booking *service.BookingService
	expense *service.ExpenseService
	finance *service.FinanceService
	pricing *service.Pricing
	logger  *zap.Logger
}

func New(
	booking *service.BookingService,
	expense *service.ExpenseService,
	finance *service.FinanceService,
	pricing *service.Pricing,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		booking: booking,
		expense: expense,
		finance: finance,
		pricing: pricing,
		logger:  logger,
	}
}

// respondError maps domain error kinds onto HTTP statuses. Anything
// unclassified is a 500 and gets logged; classified failures are the
// caller's problem to present.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrImmutableField):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, model.ErrRefundParentRequired),
		errors.Is(err, model.ErrRefundParentForbidden):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, repository.ErrSlotUnavailable):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
		h.logger.Error("Unhandled error", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
