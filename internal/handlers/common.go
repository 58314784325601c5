package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondServiceError maps service errors onto HTTP responses. Admissibility
// failures carry their per-date detail so clients can offer alternatives.
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	if adm, ok := services.IsAdmissibilityError(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "capacity_unavailable",
			"message":   adm.Error(),
			"date":      adm.Date,
			"reason":    adm.Reason,
			"remaining": adm.Remaining,
			"requested": adm.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTourNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrHoldNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrHoldExpired):
		c.JSON(http.StatusGone, ErrorResponse{
			Error:   "hold_expired",
			Message: "Hold has expired, request a new quote",
		})
	case errors.Is(err, services.ErrTourUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "tour_unavailable",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidStartDate):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_start_date",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrCannotCancelCompleted),
		errors.Is(err, services.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_state",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotTourOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		})
	default:
		logger.WithError(err).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
	}
}
