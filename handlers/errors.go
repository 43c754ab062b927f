package handlers

import (
	"errors"
	"net/http"

	"appointly/services/availability"
	"appointly/services/booking"
	"appointly/services/cancellation"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[string]int{
	"validation": http.StatusBadRequest,
	"notFound":   http.StatusNotFound,
	"conflict":   http.StatusConflict,
	"external":   http.StatusBadGateway,
}

// respondError maps service errors to a status and a JSON body. External
// failures only expose a generic message.
func respondError(c *gin.Context, err error) {
	code, message := "internal", "Something went wrong. Please try again."
	var (
		aerr *availability.AvailabilityError
		berr *booking.BookingError
		cerr *cancellation.CancellationError
	)
	switch {
	case errors.As(err, &aerr):
		code, message = aerr.Code, aerr.Message
	case errors.As(err, &berr):
		code, message = berr.Code, berr.Message
	case errors.As(err, &cerr):
		code, message = cerr.Code, cerr.Message
	}

	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		getLogger(c).Error(message, zap.String("code", code), zap.Error(err))
		utils.JSONError(c, status, code, "The request could not be completed. Please retry.", "")
		return
	}
	utils.JSONError(c, status, code, message, "")
}

func badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	utils.JSONError(c, http.StatusBadRequest, "validation", message, details)
}

// callerID is the authenticated caller set by the JWT middleware.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString("callerID")
	if id == "" {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Caller not authenticated", "")
		return "", false
	}
	return id, true
}
