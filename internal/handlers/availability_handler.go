package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/middleware"
	"github.com/tourvista/tours-backend/internal/models"
	"github.com/tourvista/tours-backend/internal/services"
)

const (
	dateParam        = "2006-01-02"
	maxWindowDays    = 366
	defaultListLimit = 100
)

// AvailabilityHandler handles the public availability view and the agent
// calendar management endpoints
type AvailabilityHandler struct {
	db           database.DB
	tours        services.TourSource
	capacity     *services.CapacityService
	availability *services.AvailabilityService
	logger       *logrus.Logger
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(
	db database.DB,
	tours services.TourSource,
	capacity *services.CapacityService,
	availability *services.AvailabilityService,
	logger *logrus.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		db:           db,
		tours:        tours,
		capacity:     capacity,
		availability: availability,
		logger:       logger,
	}
}

// Window handles GET /api/v1/tours/:id/availability?from=...&to=...
func (h *AvailabilityHandler) Window(c *gin.Context) {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid tour ID format",
		})
		return
	}

	from, err := time.Parse(dateParam, c.DefaultQuery("from", time.Now().Format(dateParam)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_date",
			Message: "from must be formatted as YYYY-MM-DD",
		})
		return
	}
	to, err := time.Parse(dateParam, c.DefaultQuery("to", from.AddDate(0, 1, 0).Format(dateParam)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_date",
			Message: "to must be formatted as YYYY-MM-DD",
		})
		return
	}
	if to.Before(from) || to.Sub(from) > maxWindowDays*24*time.Hour {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_range",
			Message: "requested window is empty or longer than a year",
		})
		return
	}

	tour, err := h.tours.GetByID(tourID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if tour == nil {
		respondServiceError(c, h.logger, services.ErrTourNotFound)
		return
	}

	days, err := h.capacity.AvailabilityWindow(h.db, tour, from, to)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tour_id": tourID,
		"from":    from.Format(dateParam),
		"to":      to.Format(dateParam),
		"days":    days,
	})
}

// Upsert handles PUT /api/v1/tours/:id/availability/:date (agent only)
func (h *AvailabilityHandler) Upsert(c *gin.Context) {
	agentCtx, ok := middleware.GetAgentContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Agent context not found",
		})
		return
	}

	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid tour ID format",
		})
		return
	}

	date, err := time.Parse(dateParam, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_date",
			Message: "date must be formatted as YYYY-MM-DD",
		})
		return
	}

	var req models.UpsertAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	entry, err := h.availability.Upsert(agentCtx.AgentID, tourID, date, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// List handles GET /api/v1/tours/:id/availability-entries (agent only)
func (h *AvailabilityHandler) List(c *gin.Context) {
	agentCtx, ok := middleware.GetAgentContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Agent context not found",
		})
		return
	}

	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid tour ID format",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := h.availability.List(agentCtx.AgentID, tourID, limit, offset)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tour_id": tourID,
		"entries": entries,
		"total":   len(entries),
	})
}
