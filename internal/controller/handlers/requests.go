package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/driftwoodsurf/booking_server/internal/lifecycle"
	"github.com/driftwoodsurf/booking_server/internal/model"
	"github.com/driftwoodsurf/booking_server/internal/timelabel"
)

// CreateRequest is the customer intake endpoint.
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body struct {
		Customer            model.Customer `json:"customer"`
		PartySize           int            `json:"party_size"`
		PartyNames          []string       `json:"party_names"`
		LessonTypeID        string         `json:"lesson_type_id"`
		RequestedDate       string         `json:"requested_date"`
		RequestedTimeLabels []string       `json:"requested_time_labels"`
		Notes               string         `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	date, err := time.Parse(dateLayout, body.RequestedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requested_date must be YYYY-MM-DD"})
		return
	}

	req, err := h.booking.CreateRequest(c.Request.Context(), model.CreateRequestInput{
		Customer:            body.Customer,
		PartySize:           body.PartySize,
		PartyNames:          body.PartyNames,
		LessonTypeID:        body.LessonTypeID,
		RequestedDate:       date,
		RequestedTimeLabels: body.RequestedTimeLabels,
		Notes:               body.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// ListRequests serves the admin review queue. Defaults to pending-only;
// status=all shows everything.
func (h *Handlers) ListRequests(c *gin.Context) {
	var filter model.ListFilter

	switch status := c.Query("status"); status {
	case "", "pending":
		// default queue
	case "all":
		filter.AllStates = true
	default:
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, model.RequestStatus(strings.TrimSpace(s)))
		}
	}

	if from := c.Query("from"); from != "" {
		date, err := time.Parse(dateLayout, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		filter.DateFrom = &date
	}
	if to := c.Query("to"); to != "" {
		date, err := time.Parse(dateLayout, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		filter.DateTo = &date
	}
	filter.NameQuery = c.Query("q")

	requests, err := h.booking.ListRequests(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *Handlers) GetRequest(c *gin.Context) {
	req, err := h.booking.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// UpdateRequest applies an admin edit. The raw body goes through the
// patch decoder so attempts to set status or the session link are
// rejected before anything touches storage.
func (h *Handlers) UpdateRequest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	patch, err := model.DecodePatch(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req, err := h.booking.UpdateRequest(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// DecideRequest runs approve/deny/cancel on a request.
func (h *Handlers) DecideRequest(c *gin.Context) {
	var body struct {
		Action            string `json:"action"`
		SelectedTimeLabel string `json:"selected_time_label"`
		Refund            bool   `json:"refund"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	action, ok := lifecycle.ParseAction(body.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve, deny or cancel"})
		return
	}

	req, session, err := h.booking.Decide(c.Request.Context(), c.Param("id"), action, body.SelectedTimeLabel, body.Refund)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response := gin.H{"request": req}
	if session != nil {
		response["session"] = session
	}
	c.JSON(http.StatusOK, response)
}

// RequestBalance reports resolved total, paid and balance, with credit
// flagged explicitly.
func (h *Handlers) RequestBalance(c *gin.Context) {
	req, err := h.booking.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	view, err := h.pricing.BalanceFor(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SlotAvailability is the admin panel's pre-flight check for the
// approval dialog.
func (h *Handlers) SlotAvailability(c *gin.Context) {
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	available, err := h.booking.SlotAvailable(c.Request.Context(), date, c.Query("label"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

// TimeGrid returns the bookable half-hour labels for pickers.
func (h *Handlers) TimeGrid(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": timelabel.Grid()})
}
