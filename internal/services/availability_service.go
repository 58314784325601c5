package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/models"
)

// ErrNotTourOwner is returned when an agent edits a calendar they do not own
var ErrNotTourOwner = errors.New("tour belongs to a different agent")

// AvailabilityCalendar persists per-date calendar overrides
type AvailabilityCalendar interface {
	Upsert(entry *models.TourAvailabilityEntry) error
	ListForTour(tourID uuid.UUID, limit, offset int) ([]models.TourAvailabilityEntry, error)
}

// AvailabilityService handles agent calendar management: per-date blocks,
// capacity overrides and notes layered on top of a tour's default capacity.
type AvailabilityService struct {
	calendar AvailabilityCalendar
	tours    TourSource
	logger   *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(calendar AvailabilityCalendar, tours TourSource, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		calendar: calendar,
		tours:    tours,
		logger:   logger,
	}
}

// Upsert writes a calendar entry for one date. Only the owning agent may
// edit a tour's calendar.
func (s *AvailabilityService) Upsert(agentID, tourID uuid.UUID, date time.Time, req *models.UpsertAvailabilityRequest) (*models.TourAvailabilityEntry, error) {
	tour, err := s.tours.GetByID(tourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	if tour.AgentID != agentID {
		return nil, ErrNotTourOwner
	}

	entry := &models.TourAvailabilityEntry{
		ID:             uuid.New(),
		TourID:         tourID,
		Date:           date,
		Type:           req.Type,
		SpotsAvailable: req.SpotsAvailable,
		Note:           req.Note,
	}
	if err := s.calendar.Upsert(entry); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tour_id": tourID,
		"date":    date.Format(dateKey),
		"type":    req.Type,
	}).Info("Availability entry upserted")

	return entry, nil
}

// List returns a tour's calendar entries for its owning agent
func (s *AvailabilityService) List(agentID, tourID uuid.UUID, limit, offset int) ([]models.TourAvailabilityEntry, error) {
	tour, err := s.tours.GetByID(tourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	if tour.AgentID != agentID {
		return nil, ErrNotTourOwner
	}

	return s.calendar.ListForTour(tourID, limit, offset)
}
