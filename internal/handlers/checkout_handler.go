package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/models"
	"github.com/tourvista/tours-backend/internal/services"
	"github.com/tourvista/tours-backend/internal/utils"
)

// CheckoutHandler handles quote and hold HTTP requests
type CheckoutHandler struct {
	checkout *services.CheckoutService
	holds    *services.HoldService
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *services.CheckoutService, holds *services.HoldService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		holds:    holds,
		logger:   logger,
	}
}

// Quote handles POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	device := utils.ParseUserAgent(c.Request.UserAgent())
	h.logger.WithFields(logrus.Fields{
		"tour_id":     req.TourID,
		"start_date":  req.StartDate,
		"party_size":  req.PartySize(),
		"device_type": device.DeviceType,
		"is_bot":      device.IsBot,
	}).Info("Quote requested")

	resp, err := h.checkout.Quote(&req, nil)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// HoldAction handles POST /api/v1/holds/:id (extend or release)
func (h *CheckoutHandler) HoldAction(c *gin.Context) {
	holdID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid hold ID format",
		})
		return
	}

	var req models.HoldActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	switch req.Action {
	case "extend":
		hold, err := h.holds.ExtendHold(holdID)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, models.HoldActionResponse{
			HoldID:    hold.ID,
			Status:    hold.Status,
			ExpiresAt: &hold.ExpiresAt,
		})
	case "release":
		hold, err := h.holds.ReleaseHold(holdID)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, models.HoldActionResponse{
			HoldID: hold.ID,
			Status: hold.Status,
		})
	}
}
