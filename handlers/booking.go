package handlers

import (
	"net/http"

	"appointly/models"
	"appointly/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Sessions booking.BookingSessionService
	Bookings booking.BookingService
}

func NewBookingHandler(sessions booking.BookingSessionService, bookings booking.BookingService) *BookingHandler {
	return &BookingHandler{Sessions: sessions, Bookings: bookings}
}

// CreateBookingHandler books one slot in a single call. The client is the caller.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid booking request", err)
		return
	}
	req.ClientID = clientID

	appt, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

func (h *BookingHandler) InitiateSession(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var input struct {
		LocationID        string                   `json:"locationId" binding:"required"`
		AppointmentTypeID string                   `json:"appointmentTypeId"`
		Provider          models.ProviderSelection `json:"provider"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid session request", err)
		return
	}

	session, err := h.Sessions.InitiateSession(c.Request.Context(), clientID, input.LocationID, input.AppointmentTypeID, input.Provider)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *BookingHandler) GetSession(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	session, err := h.Sessions.GetSession(c.Request.Context(), clientID, c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// UpdateSession changes the provider, date or slot and returns the
// recomputed dates and slots.
func (h *BookingHandler) UpdateSession(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var upd models.SessionUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid session update", err)
		return
	}
	session, err := h.Sessions.UpdateSession(c.Request.Context(), clientID, c.Param("sessionID"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var input struct {
		SessionID string                 `json:"sessionId" binding:"required"`
		Payment   *models.BookingPayment `json:"payment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid confirmation request", err)
		return
	}

	appt, err := h.Sessions.ConfirmSession(c.Request.Context(), clientID, input.SessionID, input.Payment)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("booking confirmed", zap.String("sessionId", input.SessionID), zap.String("appointmentId", appt.ID))
	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

func (h *BookingHandler) CancelSession(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.Sessions.CancelSession(c.Request.Context(), clientID, c.Param("sessionID")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking session cancelled"})
}
