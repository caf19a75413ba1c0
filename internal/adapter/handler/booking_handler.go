package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/services"
)

type BookingHandler struct {
	svc *services.BookingService
	v   *validator.Validate
	log *slog.Logger
}

func NewBookingHandler(svc *services.BookingService, v *validator.Validate, log *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, v: v, log: log}
}

// POST /v1/bookings (ADVERTISER)
func (h *BookingHandler) Create(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	req.AdvertiserID = userID(c).String()

	if err := h.v.Struct(req); err != nil {
		writeBindError(c, err)
		return
	}

	booking, err := h.svc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	booking, err := h.svc.GetBooking(c.Request.Context(), id, userID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// POST /v1/bookings/:id/cancel (ADVERTISER)
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.CancelBooking(c.Request.Context(), id, userID(c)); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /v1/bookings/:id/installation-window
func (h *BookingHandler) Window(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	w, err := h.svc.InstallationWindow(c.Request.Context(), id, userID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// GET /v1/bookings/:id/payout-estimate
func (h *BookingHandler) PayoutEstimate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	b, err := h.svc.PayoutEstimate(c.Request.Context(), id, userID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toPayoutResponse(*b))
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
