package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/models"
	"github.com/tourvista/tours-backend/internal/services"
	"github.com/tourvista/tours-backend/pkg/gateway"
)

// BookingHandler handles booking lifecycle HTTP requests
type BookingHandler struct {
	bookings *services.BookingService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// Reserve handles POST /api/v1/bookings/reserve
func (h *BookingHandler) Reserve(c *gin.Context) {
	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	holdID, err := uuid.Parse(req.HoldID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid hold ID format",
		})
		return
	}

	booking, err := h.bookings.Reserve(holdID, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	var dueAt time.Time
	if booking.PaymentDueAt != nil {
		dueAt = *booking.PaymentDueAt
	}
	c.JSON(http.StatusCreated, models.ReserveResponse{
		BookingID:     booking.ID,
		BookingStatus: booking.BookingStatus,
		PaymentStatus: booking.PaymentStatus,
		PaymentDueAt:  dueAt,
		TotalAmount:   booking.TotalAmount,
		Currency:      booking.Currency,
	})
}

// Cancel handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking ID format",
		})
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.bookings.Cancel(bookingID, req.Reason)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PaymentStatus handles GET /api/v1/bookings/:id/payment-status
func (h *BookingHandler) PaymentStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking ID format",
		})
		return
	}

	resp, err := h.bookings.GetPaymentStatus(bookingID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Webhook handles POST /api/v1/payments/webhook. The payload is treated as
// a hint only: reconciliation re-queries the gateway, so a forged webhook
// can at worst trigger an extra status check. Always answers 200 so the
// gateway does not retry deliveries for bookings we chose not to update.
func (h *BookingHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to read webhook body",
		})
		return
	}

	payload, err := gateway.ParseWebhook(body)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected malformed webhook")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"tracking_id": payload.TrackingID,
		"status_code": payload.StatusCode,
	}).Info("Webhook received")

	if _, err := h.bookings.Reconcile(payload.TrackingID); err != nil {
		h.logger.WithError(err).WithField("tracking_id", payload.TrackingID).
			Warn("Webhook reconciliation failed")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
