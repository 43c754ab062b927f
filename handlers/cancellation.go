package handlers

import (
	"net/http"

	"appointly/models"
	"appointly/services/cancellation"

	"github.com/gin-gonic/gin"
)

type CancellationHandler struct {
	Service cancellation.CancellationService
}

func NewCancellationHandler(svc cancellation.CancellationService) *CancellationHandler {
	return &CancellationHandler{Service: svc}
}

// CancelAppointmentHandler runs either call of the cancel protocol. The
// response mirrors models.CancellationResponse.
func (h *CancellationHandler) CancelAppointmentHandler(c *gin.Context) {
	var req models.CancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid cancellation request", err)
		return
	}
	resp, err := h.Service.Cancel(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CancellationHandler) CancellationStateHandler(c *gin.Context) {
	state, err := h.Service.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointmentId": c.Param("id"), "state": state})
}
