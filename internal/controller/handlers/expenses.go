package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driftwoodsurf/booking_server/internal/model"
)

func (h *Handlers) CreateExpense(c *gin.Context) {
	var input model.CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	expense, err := h.expense.CreateExpense(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *Handlers) GetExpense(c *gin.Context) {
	expense, err := h.expense.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *Handlers) ListExpenses(c *gin.Context) {
	expenses, err := h.expense.ListExpenses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// AttachReceipt records a stored-file reference against an expense. The
// file itself was already uploaded through the media collaborator.
func (h *Handlers) AttachReceipt(c *gin.Context) {
	var body struct {
		StorageKey string `json:"storage_key"`
		FileName   string `json:"file_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	receipt, err := h.expense.AttachReceipt(c.Request.Context(), c.Param("id"), body.StorageKey, body.FileName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func (h *Handlers) DeleteExpense(c *gin.Context) {
	if err := h.expense.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FinanceSummary aggregates revenue for the reporting dashboard.
func (h *Handlers) FinanceSummary(c *gin.Context) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

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
		to = parsed.AddDate(0, 0, 1)
	}

	summary, err := h.finance.Summary(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
