package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/money"
)

// ListSessions returns the calendar view for a date range. Defaults to
// the coming four weeks when no range is given.
func (h *Handlers) ListSessions(c *gin.Context) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 28)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		// inclusive end date
		to = parsed.AddDate(0, 0, 1)
	}

	sessions, err := h.booking.ListSessions(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handlers) GetSession(c *gin.Context) {
	session, err := h.booking.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSessionStatus moves a session through its own lifecycle:
// completed, or canceled with/without refund.
func (h *Handlers) UpdateSessionStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	var (
		session interface{}
		err     error
	)
	switch model.LessonStatus(body.Status) {
	case model.LessonStatusCompleted:
		session, err = h.booking.CompleteSession(c.Request.Context(), c.Param("id"))
	case model.LessonStatusCanceledWithRefund:
		session, err = h.booking.CancelSession(c.Request.Context(), c.Param("id"), true)
	case model.LessonStatusCanceledWithoutRefund:
		session, err = h.booking.CancelSession(c.Request.Context(), c.Param("id"), false)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be completed, canceled_with_refund or canceled_without_refund"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handlers) UpdateSessionPayment(c *gin.Context) {
	var body struct {
		PaidCents money.Cents `json:"paid_cents"`
		TipCents  money.Cents `json:"tip_cents"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session, err := h.booking.SetSessionPayment(c.Request.Context(), c.Param("id"), body.PaidCents, body.TipCents)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession soft-deletes; the janitor hard-deletes later.
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.booking.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
