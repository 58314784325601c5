package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/models"
)

// HoldStore persists holds
type HoldStore interface {
	AcquireTourDateLock(q database.Queryer, tourID uuid.UUID, date time.Time) error
	Create(q database.Queryer, hold *models.Hold) error
	ReleaseActiveForOwner(q database.Queryer, tourID, ownerID uuid.UUID) (int, error)
	GetByID(q database.Queryer, holdID uuid.UUID) (*models.Hold, error)
	Extend(holdID uuid.UUID, newExpiry, now time.Time) (bool, error)
	Release(holdID uuid.UUID) (bool, error)
}

// HoldService manages the lifecycle of provisional reservations. Creation
// runs the capacity check and the insert inside one transaction, serialized
// per (tour, date) by an advisory lock, so two concurrent checkouts can
// never both take the last spot. Expiry is lazy: capacity reads filter by
// expires_at and no sweeper is required for correctness.
type HoldService struct {
	db       database.DB
	holds    HoldStore
	capacity *CapacityService
	logger   *logrus.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewHoldService creates a new HoldService
func NewHoldService(db database.DB, holds HoldStore, capacity *CapacityService, logger *logrus.Logger, ttl time.Duration) *HoldService {
	return &HoldService{
		db:       db,
		holds:    holds,
		capacity: capacity,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

// CreateHoldInput carries a validated quote request
type CreateHoldInput struct {
	Tour             *models.Tour
	StartDate        time.Time
	Adults           int
	Children         int
	Infants          int
	AccommodationIDs []string
	AddonIDs         []string
	Owner            *uuid.UUID // nil for guest checkout
}

// CreateHold verifies capacity and creates a time-boxed hold for the party,
// releasing any earlier hold the same user has on the tour. Fails with
// ErrTourUnavailable for non-bookable tours and with an AdmissibilityError
// when the party does not fit.
func (s *HoldService) CreateHold(in CreateHoldInput) (*models.Hold, error) {
	if !in.Tour.IsBookable() {
		return nil, ErrTourUnavailable
	}

	partySize := in.Adults + in.Children + in.Infants
	now := s.now()

	hold := &models.Hold{
		ID:               uuid.New(),
		TourID:           in.Tour.ID,
		UserID:           in.Owner,
		StartDate:        in.StartDate,
		EndDate:          in.StartDate.AddDate(0, 0, in.Tour.DurationDays),
		Spots:            partySize,
		Adults:           in.Adults,
		Children:         in.Children,
		Infants:          in.Infants,
		AccommodationIDs: models.UUIDArray(in.AccommodationIDs),
		AddonIDs:         models.UUIDArray(in.AddonIDs),
		Status:           models.HoldStatusActive,
		ExpiresAt:        now.Add(s.ttl),
	}

	var superseded int
	err := s.db.WithTx(func(tx database.Queryer) error {
		// Locks are taken in ascending date order so overlapping multi-day
		// requests cannot deadlock each other.
		for _, day := range TripDays(in.StartDate, in.Tour.DurationDays) {
			if err := s.holds.AcquireTourDateLock(tx, in.Tour.ID, day); err != nil {
				return err
			}
		}

		// A signed-in user re-quoting a tour replaces their earlier hold.
		// Releasing it before the capacity check keeps one live hold per
		// user per tour, so a re-quote can never double-count that user.
		if in.Owner != nil {
			var err error
			superseded, err = s.holds.ReleaseActiveForOwner(tx, in.Tour.ID, *in.Owner)
			if err != nil {
				return err
			}
		}

		if err := s.capacity.CheckRange(tx, in.Tour, in.StartDate, partySize); err != nil {
			return err
		}

		return s.holds.Create(tx, hold)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"hold_id":    hold.ID,
		"tour_id":    hold.TourID,
		"start_date": hold.StartDate.Format(dateKey),
		"spots":      hold.Spots,
		"superseded": superseded,
		"expires_at": hold.ExpiresAt,
	}).Info("Hold created")

	return hold, nil
}

// ExtendHold resets the TTL of an active hold. Expired holds are not
// revivable: the caller must create a fresh hold and pass capacity again.
func (s *HoldService) ExtendHold(holdID uuid.UUID) (*models.Hold, error) {
	hold, err := s.holds.GetByID(s.db, holdID)
	if err != nil {
		return nil, err
	}
	if hold == nil || hold.Status != models.HoldStatusActive {
		return nil, ErrHoldNotFound
	}

	now := s.now()
	if hold.IsExpired(now) {
		return nil, ErrHoldExpired
	}

	newExpiry := now.Add(s.ttl)
	extended, err := s.holds.Extend(holdID, newExpiry, now)
	if err != nil {
		return nil, err
	}
	if !extended {
		// Lost the race against expiry between the read and the update
		return nil, ErrHoldExpired
	}

	hold.ExpiresAt = newExpiry
	return hold, nil
}

// ReleaseHold frees a hold's capacity immediately instead of waiting for
// natural expiry. Releasing an already-dead hold reports ErrHoldNotFound.
func (s *HoldService) ReleaseHold(holdID uuid.UUID) (*models.Hold, error) {
	hold, err := s.holds.GetByID(s.db, holdID)
	if err != nil {
		return nil, err
	}
	if hold == nil {
		return nil, ErrHoldNotFound
	}

	released, err := s.holds.Release(holdID)
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, ErrHoldNotFound
	}

	hold.Status = models.HoldStatusReleased
	s.logger.WithField("hold_id", holdID).Info("Hold released")
	return hold, nil
}

// TTL exposes the configured hold lifetime
func (s *HoldService) TTL() time.Duration {
	return s.ttl
}
